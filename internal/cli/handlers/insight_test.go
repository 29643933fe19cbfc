package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xolan/haven/internal/insight"
	"github.com/xolan/haven/internal/service"
)

// scriptedAgent answers with replies in order and repeats the last one.
type scriptedAgent struct {
	mu      sync.Mutex
	replies []string
	err     error
	block   bool
	calls   [][]insight.Message
}

func (a *scriptedAgent) Respond(ctx context.Context, history []insight.Message) (string, error) {
	a.mu.Lock()
	a.calls = append(a.calls, history)
	n := len(a.calls)
	a.mu.Unlock()

	if a.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if a.err != nil {
		return "", a.err
	}
	return a.replies[min(n, len(a.replies))-1], nil
}

func (a *scriptedAgent) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func withAgent(agent insight.Agent) func(*service.Options) {
	return func(o *service.Options) {
		o.Agent = func(context.Context) (insight.Agent, error) { return agent, nil }
	}
}

func TestJournalInsights(t *testing.T) {
	agent := &scriptedAgent{replies: []string{"You sound rested and thankful."}}
	e := newTestEnv(t, withAgent(agent))
	e.seedJournal(t, "Long walk", "Walked along the river")

	JournalInsights(context.Background(), e.deps, "1", false)

	e.requireSuccess(t)
	e.requireStdout(t, "Analysis: Long walk", "Reflecting on \"Long walk\"...", "rested and thankful")
	if strings.Contains(e.stdout.String(), "If you need support") {
		t.Errorf("crisis resources shown for a calm reply:\n%s", e.stdout.String())
	}
	if got := agent.callCount(); got != 1 {
		t.Errorf("agent calls = %d, want 1", got)
	}
}

func TestJournalInsights_Chat(t *testing.T) {
	agent := &scriptedAgent{replies: []string{"First thoughts on the walk.", "Try a short walk tomorrow."}}
	e := newTestEnv(t, withAgent(agent))
	e.seedJournal(t, "Long walk", "Walked along the river")
	e.deps.Stdin = strings.NewReader("What should I do next?\n\nignored\n")

	JournalInsights(context.Background(), e.deps, "1", true)

	e.requireSuccess(t)
	e.requireStdout(t, "First thoughts", "You (empty line to finish): ", "Try a short walk tomorrow")
	if got := agent.callCount(); got != 2 {
		t.Fatalf("agent calls = %d, want 2", got)
	}
	followUp := agent.calls[1]
	if len(followUp) != 3 || followUp[2].Content != "What should I do next?" {
		t.Errorf("follow-up history = %+v", followUp)
	}
}

func TestJournalInsights_CrisisResources(t *testing.T) {
	agent := &scriptedAgent{replies: []string{"Please reach out to the 988 lifeline."}}
	e := newTestEnv(t, withAgent(agent))
	e.seedJournal(t, "Hard night", "Could not sleep")

	JournalInsights(context.Background(), e.deps, "1", false)

	e.requireSuccess(t)
	e.requireStdout(t, "If you need support right now:", "Crisis Text Line: Text HOME to 741741")
}

func TestJournalInsights_AgentFailureFallsBack(t *testing.T) {
	agent := &scriptedAgent{err: errors.New("quota exceeded")}
	e := newTestEnv(t, withAgent(agent))
	e.seedJournal(t, "Long walk", "Walked along the river")

	JournalInsights(context.Background(), e.deps, "1", false)

	e.requireSuccess(t)
	e.requireStdout(t, "having trouble connecting", "988 Suicide & Crisis Lifeline: Call or text 988")
}

func TestJournalInsights_Timeout(t *testing.T) {
	orig := ReplyTimeout
	ReplyTimeout = 20 * time.Millisecond
	t.Cleanup(func() { ReplyTimeout = orig })

	e := newTestEnv(t, withAgent(&scriptedAgent{block: true}))
	e.seedJournal(t, "Long walk", "Walked along the river")

	JournalInsights(context.Background(), e.deps, "1", false)

	e.requireFailure(t, "Error: no reply from the journal analyzer")
}

func TestJournalInsights_Errors(t *testing.T) {
	t.Run("no api key", func(t *testing.T) {
		e := newTestEnv(t)
		e.seedJournal(t, "Long walk", "Walked along the river")
		JournalInsights(context.Background(), e.deps, "1", false)
		e.requireFailure(t, "Error: insights are unavailable", "Hint: Set GEMINI_API_KEY")
	})

	t.Run("index out of range", func(t *testing.T) {
		e := newTestEnv(t, withAgent(&scriptedAgent{replies: []string{"unused"}}))
		JournalInsights(context.Background(), e.deps, "1", false)
		e.requireFailure(t, "index out of range", "Hint: Run 'haven journal list'")
	})

	t.Run("invalid index", func(t *testing.T) {
		e := newTestEnv(t)
		JournalInsights(context.Background(), e.deps, "first", false)
		e.requireFailure(t, "Invalid index 'first'")
	})
}
