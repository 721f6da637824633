// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFetcher_ExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, scraperUserAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, `<html><head><style>body{color:red}</style></head>
<body>
  <nav>Menu items</nav>
  <script>console.log("tracking")</script>
  <header>Site header</header>
  <p>Study   in
  Canada with us.</p>
  <footer>Copyright</footer>
</body></html>`)
	}))
	defer server.Close()

	fetcher := NewURLFetcher(server.Client())
	text, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Study in Canada with us.", text)
	assert.NotContains(t, text, "Menu items")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "Site header")
	assert.NotContains(t, text, "Copyright")
}

func TestURLFetcher_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewURLFetcher(server.Client())
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestURLFetcher_TransportFailure(t *testing.T) {
	fetcher := NewURLFetcher(nil)
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Error(t, err)
}

func TestExtractPDFText_RejectsGarbage(t *testing.T) {
	_, err := ExtractPDFText([]byte("this is not a pdf"))
	assert.Error(t, err)
}
