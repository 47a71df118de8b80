// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package personalize

import (
	"sort"
)

// segmentSet is an insertion-ordered set of segment names.
type segmentSet struct {
	order []string
	index map[string]struct{}
}

func newSegmentSet(initial []string) *segmentSet {
	s := &segmentSet{index: make(map[string]struct{}, len(initial))}
	for _, seg := range initial {
		s.add(seg)
	}
	return s
}

func (s *segmentSet) add(seg string) {
	if _, ok := s.index[seg]; ok {
		return
	}
	s.index[seg] = struct{}{}
	s.order = append(s.order, seg)
}

func (s *segmentSet) remove(seg string) {
	if _, ok := s.index[seg]; !ok {
		return
	}
	delete(s.index, seg)
	for i, v := range s.order {
		if v == seg {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *segmentSet) list() []string {
	return append([]string{}, s.order...)
}

func applyGroupSegment(segs *segmentSet, p *UserProfile) {
	if p.Preferences.Travel.GroupDynamics == "family" {
		segs.add(SegmentFamilyFocused)
	}
}

// dedupe drops repeated values, keeping first-seen order.
func dedupe(values []string) []string {
	return newSegmentSet(values).list()
}

// topByCount returns the n most frequent values. Ties keep first-seen order.
func topByCount(values []string, n int) []string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
