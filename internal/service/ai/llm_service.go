package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/config"
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// Service wraps the chat model in two compiled chains: an in-character chain
// (system + query) and a raw single-prompt chain.
type Service struct {
	cfg config.AIConfig
	log *zap.Logger

	personaChain compose.Runnable[map[string]any, *schema.Message]
	promptChain  compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the chat model from cfg and compiles the chains.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg, logger)
}

// NewServiceWithModel compiles the chains around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("ai: chat model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	personaChain, err := compile(ctx, chatModel, prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to compile persona chain: %w", err)
	}

	promptChain, err := compile(ctx, chatModel, prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to compile prompt chain: %w", err)
	}

	return &Service{
		cfg:          cfg,
		log:          logger,
		personaChain: personaChain,
		promptChain:  promptChain,
	}, nil
}

func compile(ctx context.Context, chatModel model.ChatModel, tpl prompt.ChatTemplate) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(tpl)
	chain.AppendChatModel(chatModel)
	return chain.Compile(ctx)
}

// Complete asks the model to answer query under the given system prompt.
func (s *Service) Complete(ctx context.Context, system, query string) (string, error) {
	return s.invoke(ctx, s.personaChain, map[string]any{
		"system": system,
		"query":  query,
	})
}

// Prompt sends a single user-role prompt.
func (s *Service) Prompt(ctx context.Context, prompt string) (string, error) {
	return s.invoke(ctx, s.promptChain, map[string]any{"prompt": prompt})
}

func (s *Service) invoke(ctx context.Context, chain compose.Runnable[map[string]any, *schema.Message], input map[string]any) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	msg, err := chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}

	s.log.Debug("completion",
		zap.String("model", s.cfg.Model),
		zap.Int("length", len(msg.Content)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return msg.Content, nil
}
