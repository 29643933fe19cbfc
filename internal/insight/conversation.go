package insight

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrConversationClosed = errors.New("conversation is closed")

// Conversation is one thread with an agent. Replies arrive asynchronously.
type Conversation struct {
	name   string
	agent  Agent
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	messages []Message
	pending  int
	idle     chan struct{} // closed while pending is 0
	lastErr  error
	closed   bool
	subs     map[int]chan []Message
	nextSub  int
}

// NewConversation starts an empty conversation. A nil logger is allowed.
func NewConversation(name string, agent Agent, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	return &Conversation{
		name:   name,
		agent:  agent,
		logger: logger.With(zap.String("conversation", name)),
		ctx:    ctx,
		cancel: cancel,
		idle:   idle,
		subs:   make(map[int]chan []Message),
	}
}

func (c *Conversation) Name() string {
	return c.name
}

// Send appends a user message and asks the agent for a reply in the background.
// When the agent fails the reply is FallbackMessage and Err reports the cause.
func (c *Conversation) Send(content string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConversationClosed
	}
	c.messages = append(c.messages, Message{Role: RoleUser, Content: content})
	history := c.snapshotLocked()
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++
	c.wg.Add(1)
	c.publishLocked()
	c.mu.Unlock()

	go c.respond(history)
	return nil
}

func (c *Conversation) respond(history []Message) {
	defer c.wg.Done()

	reply, err := c.agent.Respond(c.ctx, history)
	if err != nil {
		if c.ctx.Err() != nil {
			c.mu.Lock()
			c.replyDoneLocked()
			c.mu.Unlock()
			return
		}
		c.logger.Warn("agent reply failed", zap.String("agent", AgentName), zap.Error(err))
		reply = FallbackMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyDoneLocked()
	c.lastErr = err
	if c.closed {
		return
	}
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: reply})
	c.publishLocked()
}

func (c *Conversation) replyDoneLocked() {
	c.pending--
	if c.pending == 0 {
		close(c.idle)
	}
}

// Subscribe returns a channel that always holds the latest message list, and
// a function to stop receiving. The channel is closed on unsubscribe or Close.
func (c *Conversation) Subscribe() (<-chan []Message, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan []Message, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	if len(c.messages) > 0 {
		ch <- c.snapshotLocked()
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// publishLocked replaces whatever a subscriber has not read yet.
func (c *Conversation) publishLocked() {
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.snapshotLocked()
	}
}

func (c *Conversation) snapshotLocked() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Messages returns every message so far.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Latest returns the most recent assistant reply.
func (c *Conversation) Latest() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LatestReply(c.messages)
}

// LatestReply returns the last assistant message in messages.
func LatestReply(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant {
			return messages[i], true
		}
	}
	return Message{}, false
}

// Pending reports whether a reply is still outstanding.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Err returns the error from the most recent agent call, if any.
func (c *Conversation) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Wait blocks until every outstanding reply has arrived or ctx is done.
func (c *Conversation) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == 0 {
		c.mu.Unlock()
		return nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels outstanding requests, waits for them and closes subscriber channels.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
