package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xolan/haven/internal/insight"
	"github.com/xolan/haven/internal/journal"
)

// AgentFactory creates the insight agent on first use.
type AgentFactory func(ctx context.Context) (insight.Agent, error)

// InsightService starts AI reflections on journal entries
type InsightService struct {
	*env
	journal *JournalService
	factory AgentFactory

	mu    sync.Mutex
	agent insight.Agent
}

// GenAIFactory returns a factory for the Gemini agent configured with apiKey and model.
func GenAIFactory(apiKey, model string) AgentFactory {
	return func(ctx context.Context) (insight.Agent, error) {
		return insight.NewGenAIAgent(ctx, apiKey, model)
	}
}

func (s *InsightService) getAgent(ctx context.Context) (insight.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agent != nil {
		return s.agent, nil
	}
	if s.factory == nil {
		return nil, insight.ErrAgentUnavailable
	}
	agent, err := s.factory(ctx)
	if err != nil {
		return nil, err
	}
	s.agent = agent
	return agent, nil
}

// Analyze opens a conversation about the journal entry at the 1-based index
// and sends the analysis request. The reply arrives asynchronously; callers
// Subscribe or Wait on the returned conversation and must Close it.
func (s *InsightService) Analyze(ctx context.Context, index int) (*insight.Conversation, *journal.Entry, error) {
	e, err := s.journal.Get(ctx, index)
	if err != nil {
		return nil, nil, err
	}
	agent, err := s.getAgent(ctx)
	if err != nil {
		s.logger.Warn("insight agent unavailable", zap.Error(err))
		return nil, nil, err
	}

	conv := insight.NewConversation(insight.ConversationName(*e), agent, s.logger)
	if err := conv.Send(insight.JournalPrompt(*e, s.config.Location())); err != nil {
		conv.Close()
		return nil, nil, fmt.Errorf("failed to start analysis: %w", err)
	}
	s.logger.Info("journal analysis started", zap.String("entry", e.ID))
	return conv, e, nil
}
