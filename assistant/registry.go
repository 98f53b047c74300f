// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Generator produces text from a conversation.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content) (string, error)
}

// Handle is a configured client bound to one model and one generation
// configuration. It is safe for concurrent use.
type Handle struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// Model returns the model name the handle generates with.
func (h *Handle) Model() string {
	return h.model
}

// Generate sends contents to the model and returns the response text.
func (h *Handle) Generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := h.client.Models.GenerateContent(ctx, h.model, contents, h.config)
	if err != nil {
		return "", &GenerationError{Model: h.model, Message: "generate content", Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Model: h.model, Message: "empty response"}
	}

	return text, nil
}

// Registry builds the chat and structured handles on first use and keeps
// them for the lifetime of the process. A failed build stores nothing, so a
// later call can succeed once the key is available.
type Registry struct {
	chatSettings       Settings
	structuredSettings Settings
	baseURL            string
	logger             *zap.Logger

	lookupKey func(string) (string, bool)
	newClient func(context.Context, *genai.ClientConfig) (*genai.Client, error)

	mu         sync.Mutex
	chat       *Handle
	structured *Handle
}

// NewRegistry creates a registry. baseURL overrides the Gemini endpoint when
// not empty.
func NewRegistry(chat, structured Settings, baseURL string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		chatSettings:       chat,
		structuredSettings: structured,
		baseURL:            baseURL,
		logger:             logger,
		lookupKey:          os.LookupEnv,
		newClient:          genai.NewClient,
	}
}

// ChatModel returns the chat handle, building it if needed.
func (r *Registry) ChatModel(ctx context.Context) (Generator, error) {
	return r.get(ctx, &r.chat, r.chatSettings)
}

// StructuredModel returns the JSON handle, building it if needed.
func (r *Registry) StructuredModel(ctx context.Context) (Generator, error) {
	return r.get(ctx, &r.structured, r.structuredSettings)
}

func (r *Registry) get(ctx context.Context, slot **Handle, settings Settings) (Generator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if *slot != nil {
		return *slot, nil
	}

	key, ok := r.lookupKey(APIKeyEnv)
	if !ok || strings.TrimSpace(key) == "" {
		r.logger.Error("generative model unavailable", zap.String("model", settings.Model), zap.Error(ErrMissingAPIKey))
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if r.baseURL != "" {
		cc.HTTPOptions.BaseURL = r.baseURL
	}

	client, err := r.newClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	*slot = &Handle{client: client, model: settings.Model, config: settings.generateConfig()}
	r.logger.Info("generative model ready",
		zap.String("model", settings.Model),
		zap.Float32("temperature", settings.Temperature),
		zap.Int32("max_output_tokens", settings.MaxOutputTokens),
	)

	return *slot, nil
}
