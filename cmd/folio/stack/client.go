package stack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/folio/api"
	"github.com/papercomputeco/folio/pkg/document"
)

const clientTimeout = 15 * time.Second

// FetchSuggestions asks a running folio API server at apiTarget for the
// suggestions of ids.
func FetchSuggestions(ctx context.Context, apiTarget string, ids []int64) ([]document.Document, error) {
	target, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = strconv.FormatInt(id, 10)
	}

	target.Path = strings.TrimSuffix(target.Path, "/") + "/books/suggestions"
	q := target.Query()
	q.Set("ids", strings.Join(raw, ","))
	target.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, clientTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating suggestions request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to folio API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("suggestions request failed (HTTP %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("suggestions request failed (HTTP %d)", resp.StatusCode)
	}

	var docs []document.Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions response: %w", err)
	}
	return docs, nil
}
