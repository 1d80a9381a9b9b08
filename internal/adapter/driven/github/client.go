// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/jakewray/portfolio/internal/domain/model"
	"github.com/jakewray/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional requests, which do not count against the rate limit)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (REST client; PAT auth when token is non-empty)
//
// The showcase only reads public data, so token may be empty.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPublicRepos lists the repositories owned by username and keeps the
// public ones that are neither forks nor archived. Pagination is handled here.
func (c *Client) FetchPublicRepos(ctx context.Context, username string) ([]model.ShowcaseRepo, error) {
	opts := &gh.RepositoryListByUserOptions{
		Type:      "owner",
		Sort:      "pushed",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var repos []model.ShowcaseRepo

	for {
		page, resp, err := c.gh.Repositories.ListByUser(ctx, username, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %s (page %d): %w", username, opts.Page, err)
		}

		logRateLimit(resp, username, opts.Page, len(page))

		for _, r := range page {
			if r.GetFork() || r.GetArchived() || r.GetPrivate() || r.GetDisabled() {
				continue
			}
			repos = append(repos, mapRepository(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if repos == nil {
		repos = []model.ShowcaseRepo{}
	}

	return repos, nil
}

func logRateLimit(resp *gh.Response, username string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"user", username,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 10 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// mapRepository converts a go-github Repository to a showcase entry.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.ShowcaseRepo {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}

	return model.ShowcaseRepo{
		ID:          r.GetID(),
		FullName:    r.GetFullName(),
		Name:        r.GetName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Topics:      topics,
		PushedAt:    r.GetPushedAt().Time,
	}
}
