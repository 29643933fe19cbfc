package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xolan/haven/internal/insight"
	"github.com/xolan/haven/internal/journal"
)

type echoAgent struct {
	mu      sync.Mutex
	prompts []string
}

func (a *echoAgent) Respond(ctx context.Context, history []insight.Message) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = append(a.prompts, history[len(history)-1].Content)
	return "You showed up for yourself today.", nil
}

func TestInsightService_Analyze(t *testing.T) {
	f := newFixture(t)
	agent := &echoAgent{}
	calls := 0
	svc := f.services("a@example.com")
	svc.Insight.factory = func(context.Context) (insight.Agent, error) {
		calls++
		return agent, nil
	}
	ctx := context.Background()
	seedJournal(t, svc, journal.Entry{Title: "Rough week", Content: "Too many deadlines"})

	for i := 0; i < 2; i++ {
		conv, entry, err := svc.Insight.Analyze(ctx, 1)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if entry.Title != "Rough week" || conv.Name() != "Analysis: Rough week" {
			t.Errorf("entry = %q, conversation = %q", entry.Title, conv.Name())
		}

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := conv.Wait(waitCtx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		cancel()
		if reply, ok := conv.Latest(); !ok || !strings.Contains(reply.Content, "showed up") {
			t.Errorf("Latest() = %+v, %v", reply, ok)
		}
		conv.Close()
	}

	if calls != 1 {
		t.Errorf("agent factory called %d times, want 1", calls)
	}
	if len(agent.prompts) != 2 || !strings.Contains(agent.prompts[0], "Title: Rough week") {
		t.Errorf("prompts = %q", agent.prompts)
	}
}

func TestInsightService_Errors(t *testing.T) {
	svc := newFixture(t).services("")
	ctx := context.Background()

	if _, _, err := svc.Insight.Analyze(ctx, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Analyze() with no entries error = %v", err)
	}

	seedJournal(t, svc, journal.Entry{Title: "x", Content: "y"})
	if _, _, err := svc.Insight.Analyze(ctx, 1); !errors.Is(err, insight.ErrAgentUnavailable) {
		t.Errorf("Analyze() without agent error = %v", err)
	}

	svc.Insight.factory = GenAIFactory("", "")
	if _, _, err := svc.Insight.Analyze(ctx, 1); !errors.Is(err, insight.ErrAgentUnavailable) {
		t.Errorf("Analyze() without API key error = %v", err)
	}
}
