// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package knowledge

import (
	"fmt"

	"github.com/primeedutech/counsellor/services/counsellor/datatypes"
)

// FormatSnippet renders one search result as a prompt-ready snippet:
//
//	**{title}**
//	{content} (Relevance: {score*100:.1f}%)
func FormatSnippet(r datatypes.SearchResult) string {
	return fmt.Sprintf("**%s**\n%s (Relevance: %.1f%%)", r.Title, r.Content, r.Score*100)
}

// FormatSnippets renders search results in order.
func FormatSnippets(results []datatypes.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = FormatSnippet(r)
	}
	return out
}
