// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides round trippers for outbound provider calls.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"regexp"
	"strings"
	"time"
)

const redacted = "REDACTED"

// LoggingRoundTripper dumps requests and responses to Writer. Values of the
// query parameters and headers listed in Redact never reach the dump.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
	Redact    []string
}

// reduce the content of the lines.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 2048, 512

	for i, line := range lines {
		if i < maxLines {
			lines[i] = fmt.Sprintf("%c %s", prefix, line)
		} else {
			break
		}
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "…")
	}

	for i, line := range lines {
		if len(line) > maxChars {
			lines[i] = line[0:maxChars] + "…"
		}
	}

	return lines
}

func (t *LoggingRoundTripper) redact(dump string) string {
	for _, name := range t.Redact {
		q := regexp.QuoteMeta(name)
		param := regexp.MustCompile(`([?&]` + q + `=)[^&\s]*`)
		dump = param.ReplaceAllString(dump, "${1}"+redacted)
		header := regexp.MustCompile(`(?im)^(` + q + `:\s*).*$`)
		dump = header.ReplaceAllString(dump, "${1}"+redacted)
	}

	return dump
}

func (t *LoggingRoundTripper) write(dump string, prefix rune) error {
	lines := abbreviate(strings.Split(t.redact(dump), "\n"), prefix)
	lines = append(lines, "")
	_, err := fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	return t.write(string(dump), '>')
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration); err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	return t.write(string(dump), '<')
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// NewClient builds an http.Client with default headers and, when trace is
// not nil, request/response dumps with the given names redacted.
func NewClient(timeout time.Duration, headers map[string]string, trace io.Writer, redact ...string) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	if trace != nil {
		transport = &LoggingRoundTripper{
			Transport: transport,
			Writer:    trace,
			Redact:    redact,
		}
	}

	if len(headers) > 0 {
		transport = &AppendRequestHeadersRoundTripper{
			Transport: transport,
			Headers:   headers,
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
