package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	lspuri "go.lsp.dev/uri"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

// fetchSchema retrieves raw schema content for http(s), file and bare
// path URIs. Failures surface as plain errors; the store wraps them
// into its unavailable taxonomy.
func fetchSchema(ctx context.Context, uri string) (string, error) {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return "", err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetching %s: %s", uri, resp.Status)
		}
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case strings.HasPrefix(uri, "file://"):
		content, err := os.ReadFile(lspuri.URI(uri).Filename())
		if err != nil {
			return "", err
		}
		return string(content), nil
	default:
		content, err := os.ReadFile(uri)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
}
