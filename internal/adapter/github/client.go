package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 10 * time.Second
	apiVersion     = "2022-11-28"

	// perPage is the page size used for list endpoints. The analyses work
	// on a recent window of activity, not the full history, so a single
	// page is fetched and no pagination is performed.
	perPage = 100
)

// Client is an HTTP client for the GitHub repository metadata endpoints.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new GitHub API client. The token may be empty;
// unauthenticated requests work for public repositories at a reduced
// rate limit.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing or GitHub Enterprise).
// Trailing slashes are trimmed so joined paths never contain "//".
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// GetRepository fetches the repository metadata for owner/name.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	var repo Repository
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, name)
	resource := fmt.Sprintf("repository %s/%s", owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

// ListContributors fetches contributors ordered by contribution count descending.
func (c *Client) ListContributors(ctx context.Context, owner, name string) ([]Contributor, error) {
	var contributors []Contributor
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=%d", c.baseURL, owner, name, perPage)
	resource := fmt.Sprintf("contributors of %s/%s", owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &contributors); err != nil {
		return nil, err
	}
	return contributors, nil
}

// ListCommits fetches the most recent commits, newest first.
func (c *Client) ListCommits(ctx context.Context, owner, name string) ([]Commit, error) {
	var commits []Commit
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d", c.baseURL, owner, name, perPage)
	resource := fmt.Sprintf("commits of %s/%s", owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// GetTree fetches the full recursive file tree at the given ref,
// typically the repository's default branch.
func (c *Client) GetTree(ctx context.Context, owner, name, ref string) (*Tree, error) {
	var tree Tree
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, owner, name, url.PathEscape(ref))
	resource := fmt.Sprintf("tree %s of %s/%s", ref, owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

// ListIssues fetches issues and pull requests in all states, newest first.
func (c *Client) ListIssues(ctx context.Context, owner, name string) ([]Issue, error) {
	var issues []Issue
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues?state=all&per_page=%d", c.baseURL, owner, name, perPage)
	resource := fmt.Sprintf("issues of %s/%s", owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// ListLanguages fetches the byte counts per language.
func (c *Client) ListLanguages(ctx context.Context, owner, name string) (map[string]int64, error) {
	languages := make(map[string]int64)
	endpoint := fmt.Sprintf("%s/repos/%s/%s/languages", c.baseURL, owner, name)
	resource := fmt.Sprintf("languages of %s/%s", owner, name)
	if err := c.getJSON(ctx, endpoint, resource, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// getJSON performs a single GET request and decodes the JSON response into out.
// Requests are not retried; failures surface to the caller immediately.
func (c *Client) getJSON(ctx context.Context, endpoint, resource string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &llmhttp.Error{
			Type:      llmhttp.ErrTypeUnknown,
			Message:   err.Error(),
			Retryable: false,
			Service:   serviceName,
		}
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Could be timeout or network error
		return &llmhttp.Error{
			Type:      llmhttp.ErrTypeTimeout,
			Message:   fmt.Sprintf("fetch %s: %v", resource, err),
			Retryable: true,
			Service:   serviceName,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &llmhttp.Error{
				Type:       llmhttp.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
				Retryable:  resp.StatusCode >= 500,
				Service:    serviceName,
			}
		}
		mapped := MapHTTPError(resp.StatusCode, bodyBytes)
		mapped.Message = fmt.Sprintf("%s: %s", resource, mapped.Message)
		return mapped
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", resource, err)
	}

	return nil
}
