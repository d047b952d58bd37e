// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agiloft

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultSearchLimit caps search results when the caller does not.
const DefaultSearchLimit = 50

// structuredQueryPatterns detect the backend's structured query syntax:
// comparison operators and boolean keywords. Classification depends on the
// query string alone, never on the entity.
var structuredQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\w+\s*[=<>!~]+`),
	regexp.MustCompile(`(?i)\bAND\b`),
	regexp.MustCompile(`(?i)\bOR\b`),
	regexp.MustCompile(`(?i)\bLIKE\b`),
	regexp.MustCompile(`(?i)\bIN\b`),
	regexp.MustCompile(`(?i)\bNOT\b`),
	regexp.MustCompile(`(?i)\bBETWEEN\b`),
	regexp.MustCompile(`(?i)\bIS\s+NULL\b`),
}

// IsStructuredQuery reports whether the query uses structured syntax and
// should be passed through to the backend verbatim.
func IsStructuredQuery(query string) bool {
	for _, p := range structuredQueryPatterns {
		if p.MatchString(query) {
			return true
		}
	}
	return false
}

// sanitizeQueryValue escapes special characters in free-text values before
// they are embedded in a partial-match query.
func sanitizeQueryValue(value string) string {
	value = strings.ReplaceAll(value, "'", "''")
	value = strings.ReplaceAll(value, "--", "")
	value = strings.ReplaceAll(value, ";", "")
	return value
}

// SearchQuery is one search invocation: a raw query string plus optional
// projection and limit.
type SearchQuery struct {
	Query  string
	Fields []string
	Limit  int
}

// SearchEngine executes entity searches. Structured queries go to the
// backend as-is. Free-text queries are fanned out into one partial-match
// sub-query per search field (the backend cannot OR the partial-match
// operator across fields) and merged by record ID.
type SearchEngine struct {
	client *Client
	logger *slog.Logger
}

// NewSearchEngine creates a search engine on top of the transport client.
func NewSearchEngine(client *Client) *SearchEngine {
	return &SearchEngine{
		client: client,
		logger: slog.Default().With("component", "search"),
	}
}

// Search runs the query against the entity and returns the merged,
// projected, limit-capped results.
func (s *SearchEngine) Search(ctx context.Context, e *Entity, q SearchQuery) ([]Record, error) {
	fields := q.Fields
	if len(fields) == 0 {
		fields = e.DefaultFields
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	trimmed := strings.TrimSpace(q.Query)
	if IsStructuredQuery(q.Query) || len(e.SearchFields) == 0 || trimmed == "" {
		query := q.Query
		if trimmed == "" {
			// Whitespace-only collapses to the match-everything query.
			query = ""
		}
		records, err := s.runQuery(ctx, e, query, fields)
		if err != nil {
			return nil, err
		}
		return truncate(records, limit), nil
	}

	records, err := s.fanOut(ctx, e, trimmed, fields)
	if err != nil {
		return nil, err
	}
	return truncate(records, limit), nil
}

// fanOut issues one partial-match sub-query per search field, concurrently,
// and merges the results. Sub-results are buffered in declared field order
// so the merged output order is deterministic regardless of completion
// order. Any sub-query failure aborts the whole search; a partial result
// set must never masquerade as a complete one.
func (s *SearchEngine) fanOut(ctx context.Context, e *Entity, text string, fields []string) ([]Record, error) {
	sanitized := sanitizeQueryValue(text)
	results := make([][]Record, len(e.SearchFields))

	g, ctx := errgroup.WithContext(ctx)
	for i, field := range e.SearchFields {
		g.Go(func() error {
			query := fmt.Sprintf("%s~='%s'", field, sanitized)
			records, err := s.runQuery(ctx, e, query, fields)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge by record ID, first-seen wins: sub-queries in declared field
	// order, records within each in backend order.
	seen := make(map[int64]bool)
	var merged []Record
	for _, records := range results {
		for _, rec := range records {
			id := rec.ID()
			if seen[id] {
				continue
			}
			seen[id] = true
			merged = append(merged, rec)
		}
	}

	s.logger.Debug("Search fan-out merged",
		"entity", e.Key,
		"sub_queries", len(e.SearchFields),
		"merged", len(merged),
	)
	return merged, nil
}

func (s *SearchEngine) runQuery(ctx context.Context, e *Entity, query string, fields []string) ([]Record, error) {
	req, err := BuildRequest(e, OpSearch, Args{Query: query, Fields: fields})
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.ResultList(), nil
}

func truncate(records []Record, limit int) []Record {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}
