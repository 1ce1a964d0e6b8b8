// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package mealdb is a thin client for a TheMealDB-style recipe API. It
// hands back raw JSON payloads so the cache can store them opaquely;
// typed views live in meal.go.
package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"
)

// DefaultBaseURL is the free public endpoint.
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

const defaultTimeout = 15 * time.Second

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a client for baseURL, falling back to the public API
// when baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SearchByName queries recipes whose name matches term.
func (c *Client) SearchByName(ctx context.Context, term string) (json.RawMessage, error) {
	return c.get(ctx, "search.php", url.Values{"s": {term}})
}

// LookupByID fetches the full recipe for an id.
func (c *Client) LookupByID(ctx context.Context, id string) (json.RawMessage, error) {
	return c.get(ctx, "lookup.php", url.Values{"i": {id}})
}

// Random fetches one random recipe.
func (c *Client) Random(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "random.php", nil)
}

// FilterByIngredient lists recipes that use the given ingredient.
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) (json.RawMessage, error) {
	return c.get(ctx, "filter.php", url.Values{"i": {ingredient}})
}

// Categories lists all recipe categories.
func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "categories.php", nil)
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (json.RawMessage, error) {
	u := c.BaseURL + "/" + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	log.Debugf("GET %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
