// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Variant is an A/B test arm.
type Variant string

// Variants.
const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

const (
	sessionPrefix     = "session"
	sessionRandLength = 9

	// MaxSessionIDLength bounds client supplied session ids.
	MaxSessionIDLength = 128
)

// NewSessionID returns session_<unix ms>_<9 random base36 chars>.
func NewSessionID(now time.Time) string {
	id := uuid.New()
	r := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	if len(r) < sessionRandLength {
		r = strings.Repeat("0", sessionRandLength-len(r)) + r
	}
	r = r[len(r)-sessionRandLength:]

	return sessionPrefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + r
}

// ValidSessionID reports whether id is usable as a client session id:
// non-empty, at most MaxSessionIDLength bytes, valid UTF-8, and free of
// spaces and control characters.
func ValidSessionID(id string) bool {
	if id == "" || len(id) > MaxSessionIDLength || !utf8.ValidString(id) {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) < 0
}

// VariantFor buckets a session id. The first UTF-16 code unit of each "_"
// segment is summed; an even sum is A, odd is B. A rune outside the Basic
// Multilingual Plane counts as its high surrogate. Any empty segment
// (including an empty id) leaves the sum undefined and buckets to B.
func VariantFor(sessionID string) Variant {
	sum := 0
	for _, part := range strings.Split(sessionID, "_") {
		if part == "" {
			return VariantB
		}
		sum += firstCodeUnit(part)
	}
	if sum%2 == 0 {
		return VariantA
	}
	return VariantB
}

func firstCodeUnit(s string) int {
	r, _ := utf8.DecodeRuneInString(s)
	if hi, _ := utf16.EncodeRune(r); hi != utf8.RuneError {
		return int(hi)
	}
	return int(r)
}
