// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// GenerateSearchKey derives a deterministic key from search parameters:
// search_<type>_ followed by the base64 of the sorted name:value pairs joined
// by "|", with non-alphanumeric characters stripped. The result does not
// depend on map order. Nil values are left out.
//
//	GenerateSearchKey(map[string]interface{}{"type": "hotels", "city": "Paris"})
func GenerateSearchKey(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name, v := range params {
		if v == nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + ":" + fmt.Sprint(params[name])
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(pairs, "|")))

	searchType := "general"
	if t, ok := params["type"]; ok && t != nil {
		searchType = fmt.Sprint(t)
	}
	return "search_" + searchType + "_" + stripNonAlnum(encoded)
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
