// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		want    zapcore.Level
		wantErr bool
	}{
		{level: "debug", format: "json", want: zapcore.DebugLevel},
		{level: "info", format: "console", want: zapcore.InfoLevel},
		{level: "warn", format: "auto", want: zapcore.WarnLevel},
		{level: "verbose", format: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}

func TestInstallRedirectsStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	restore := Install(zap.New(core))
	defer restore()

	log.Print("legacy message")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "legacy message", logs.All()[0].Message)
}
