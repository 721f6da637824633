// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ingest extracts plain text from admin-supplied knowledge sources:
// scraped web pages and uploaded PDF files.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultFetchTimeout = 10 * time.Second
	scraperUserAgent    = "Mozilla/5.0 (compatible; Prime Edutech Bot/1.0)"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// URLFetcher fetches a web page and extracts its visible text.
type URLFetcher struct {
	client *http.Client
}

// NewURLFetcher creates a fetcher. A nil client gets a default with a
// 10 second timeout.
func NewURLFetcher(client *http.Client) *URLFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &URLFetcher{client: client}
}

// Fetch retrieves the page at url and returns its visible body text.
//
// # Description
//
//	Script, style, nav, footer and header elements are stripped before
//	extraction, and whitespace runs are collapsed to single spaces.
//
// # Outputs
//
//   - string: The extracted text, trimmed.
//   - error: Non-nil on transport failure, non-2xx status or parse failure.
func (f *URLFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}

	doc.Find("script, style, nav, footer, header").Remove()
	text := doc.Find("body").Text()
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}
