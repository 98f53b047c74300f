// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutil provides unicode helpers for user supplied text.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NFC returns s in Unicode normalization form C, so that composed and
// decomposed spellings of the same text have the same length.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// CharCount returns the number of characters (code points) in the NFC form of s.
func CharCount(s string) int {
	return utf8.RuneCountInString(NFC(s))
}

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}
