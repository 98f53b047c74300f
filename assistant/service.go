// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/nitchau/handyman-sub001/metrics"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const provider = "gemini"

// Chat roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxMessages bounds the conversation history sent to the model.
const MaxMessages = 50

const chatInstruction = `You are the Handyman assistant, helping homeowners plan home improvement projects.
Give practical, safety conscious advice, estimate effort honestly and recommend hiring
a licensed contractor for electrical, gas, structural or permitted work.`

// Models hands out the generators used by the service.
type Models interface {
	ChatModel(ctx context.Context) (Generator, error)
	StructuredModel(ctx context.Context) (Generator, error)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the assistant's answer to a conversation.
type Reply struct {
	Message Message `json:"message"`
}

// Service implements the chat and bill of materials features.
type Service struct {
	models  Models
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a new assistant service. logger and m may be nil.
func NewService(models Models, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{models: models, logger: logger, metrics: m}
}

// Chat answers the last user message of a conversation.
func (s *Service) Chat(ctx context.Context, messages []Message) (*Reply, error) {
	contents, err := toContents(messages)
	if err != nil {
		return nil, err
	}

	model, err := s.models.ChatModel(ctx)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, model, contents)
	if err != nil {
		return nil, err
	}

	return &Reply{Message: Message{Role: RoleAssistant, Content: strings.TrimSpace(text)}}, nil
}

func (s *Service) generate(ctx context.Context, model Generator, contents []*genai.Content) (string, error) {
	text, err := model.Generate(ctx, contents)
	if err != nil {
		s.metrics.Upstream(provider, metrics.OutcomeError)
		s.logger.Warn("generation failed", zap.Error(err))

		return "", err
	}

	s.metrics.Upstream(provider, metrics.OutcomeOK)

	return text, nil
}

func toContents(messages []Message) ([]*genai.Content, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("at least one message is required: %w", apperr.ErrInvalidInput)
	}

	if len(messages) > MaxMessages {
		return nil, fmt.Errorf("at most %d messages are allowed: %w", MaxMessages, apperr.ErrInvalidInput)
	}

	contents := make([]*genai.Content, 0, len(messages))

	for i, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return nil, fmt.Errorf("message %d is empty: %w", i, apperr.ErrInvalidInput)
		}

		var role genai.Role

		switch m.Role {
		case RoleUser:
			role = genai.RoleUser
		case RoleAssistant:
			role = genai.RoleModel
		default:
			return nil, fmt.Errorf("message %d has unknown role %q: %w", i, m.Role, apperr.ErrInvalidInput)
		}

		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	if messages[len(messages)-1].Role != RoleUser {
		return nil, fmt.Errorf("the last message must come from the user: %w", apperr.ErrInvalidInput)
	}

	return contents, nil
}
