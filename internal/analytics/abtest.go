// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package analytics

import (
	"context"
	"sort"
)

// Rankable is an item that can be reordered by the A/B test.
type Rankable interface {
	PartnerOrInternal() bool
	Total() float64
}

// RunABTest reorders items for the variant of the session carried by ctx.
func RunABTest[T Rankable](ctx context.Context, t *Tracker, items []T) []T {
	_, variant := t.Session(ctx)
	return Reorder(variant, items)
}

// Reorder applies variant to items. Variant A returns items unchanged.
// Variant B returns a copy with partner or internal items first, each group
// ordered by descending total, stable on ties.
func Reorder[T Rankable](variant Variant, items []T) []T {
	if variant != VariantB {
		return items
	}

	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].PartnerOrInternal(), out[j].PartnerOrInternal()
		if pi != pj {
			return pi
		}
		return out[i].Total() > out[j].Total()
	})
	return out
}
