// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package assistant talks to the Gemini generative models: a chat model for
// the homeowner assistant and a structured model that answers in JSON.
package assistant

import (
	"github.com/nitchau/handyman-sub001/config"
	"google.golang.org/genai"
)

const (
	// APIKeyEnv names the environment variable holding the Gemini API key.
	APIKeyEnv = "GEMINI_API_KEY"

	DefaultModel = "gemini-2.0-flash"
	mimeJSON     = "application/json"
)

// Settings is the fixed generation configuration of a handle.
type Settings struct {
	Model             string
	Temperature       float32
	MaxOutputTokens   int32
	ResponseMIMEType  string
	SystemInstruction string
	ResponseSchema    *genai.Schema
}

// DefaultChatSettings is tuned for conversational answers.
func DefaultChatSettings() Settings {
	return Settings{
		Model:             DefaultModel,
		Temperature:       0.7,
		MaxOutputTokens:   2048,
		SystemInstruction: chatInstruction,
	}
}

// DefaultStructuredSettings is tuned for deterministic JSON output.
func DefaultStructuredSettings() Settings {
	return Settings{
		Model:             DefaultModel,
		Temperature:       0.2,
		MaxOutputTokens:   8192,
		ResponseMIMEType:  mimeJSON,
		SystemInstruction: bomInstruction,
		ResponseSchema:    bomSchema,
	}
}

// SettingsFromConfig overlays the configured model parameters on the defaults.
func SettingsFromConfig(cfg config.AssistantConfig) (chat, structured Settings) {
	chat = DefaultChatSettings()
	structured = DefaultStructuredSettings()

	apply := func(s *Settings, m config.ModelConfig) {
		if m.Model != "" {
			s.Model = m.Model
		}

		if m.Temperature != nil {
			s.Temperature = *m.Temperature
		}

		if m.MaxOutputTokens > 0 {
			s.MaxOutputTokens = m.MaxOutputTokens
		}
	}

	apply(&chat, cfg.Chat)
	apply(&structured, cfg.Structured)

	return chat, structured
}

func (s Settings) generateConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.Temperature),
		MaxOutputTokens:  s.MaxOutputTokens,
		ResponseMIMEType: s.ResponseMIMEType,
		ResponseSchema:   s.ResponseSchema,
	}

	if s.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(s.SystemInstruction, genai.RoleUser)
	}

	return gc
}
