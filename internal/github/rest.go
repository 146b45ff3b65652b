// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

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

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/giterror"
	"github.com/sirseerhq/sirseer-artifact/pkg/version"
)

// maxListResponseBytes bounds the size of a single JSON listing response.
// Artifact archives are streamed separately and are not subject to it.
const maxListResponseBytes = 10 * 1024 * 1024

// RESTClient implements the GitHub Client interface against the REST API.
// It handles authentication, the Actions media-type headers, Link-header
// pagination, and mapping of HTTP failures to domain errors.
type RESTClient struct {
	endpoint   string
	token      string
	httpClient *http.Client

	// dlClient has no auth transport. Download requests carry their headers
	// explicitly so that http.Client can strip Authorization when the
	// archive URL redirects to external blob storage.
	dlClient *http.Client

	pageSize  int
	inspector giterror.Inspector
}

// NewRESTClient creates a new GitHub REST client with the provided token and
// endpoint. The endpoint is the API root, e.g. "https://api.github.com" or a
// GitHub Enterprise equivalent. pageSize controls the per_page parameter of
// list requests; values outside 1..100 fall back to the default of 50.
func NewRESTClient(token, endpoint string, pageSize int) *RESTClient {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	}

	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	return &RESTClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		httpClient: httpClient,
		dlClient:   &http.Client{Transport: transport},
		pageSize:   pageSize,
		inspector:  giterror.NewErrorChainInspector(giterror.NewInspector()),
	}
}

// ListWorkflows retrieves every workflow defined in the repository.
func (c *RESTClient) ListWorkflows(ctx context.Context, owner, repo string) ([]Workflow, error) {
	var workflows []Workflow
	path := fmt.Sprintf("repos/%s/%s/actions/workflows", owner, repo)

	err := c.getPaged(ctx, c.listURL(path, nil), func(body io.Reader) error {
		var page workflowsPage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return fmt.Errorf("failed to decode workflows response: %w", err)
		}
		workflows = append(workflows, page.Workflows...)
		return nil
	})
	if err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	return workflows, nil
}

// ListWorkflowRuns retrieves the runs of a specific workflow. Filters are
// applied server-side via query parameters.
func (c *RESTClient) ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, filter RunFilter) ([]WorkflowRun, error) {
	var runs []WorkflowRun
	path := fmt.Sprintf("repos/%s/%s/actions/workflows/%d/runs", owner, repo, workflowID)

	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.Branch != "" {
		params.Set("branch", filter.Branch)
	}

	err := c.getPaged(ctx, c.listURL(path, params), func(body io.Reader) error {
		var page runsPage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return fmt.Errorf("failed to decode workflow runs response: %w", err)
		}
		runs = append(runs, page.WorkflowRuns...)
		return nil
	})
	if err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	return runs, nil
}

// ListRepoArtifacts retrieves all artifacts in the repository.
func (c *RESTClient) ListRepoArtifacts(ctx context.Context, owner, repo string) ([]Artifact, error) {
	path := fmt.Sprintf("repos/%s/%s/actions/artifacts", owner, repo)
	return c.listArtifacts(ctx, owner, repo, path)
}

// ListRunArtifacts retrieves the artifacts produced by a single workflow run.
func (c *RESTClient) ListRunArtifacts(ctx context.Context, owner, repo string, runID int64) ([]Artifact, error) {
	path := fmt.Sprintf("repos/%s/%s/actions/runs/%d/artifacts", owner, repo, runID)
	return c.listArtifacts(ctx, owner, repo, path)
}

func (c *RESTClient) listArtifacts(ctx context.Context, owner, repo, path string) ([]Artifact, error) {
	var artifacts []Artifact

	err := c.getPaged(ctx, c.listURL(path, nil), func(body io.Reader) error {
		var page artifactsPage
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return fmt.Errorf("failed to decode artifacts response: %w", err)
		}
		artifacts = append(artifacts, page.Artifacts...)
		return nil
	})
	if err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	return artifacts, nil
}

// listURL builds the absolute URL for a list endpoint, attaching per_page
// and any extra query parameters.
func (c *RESTClient) listURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("per_page", strconv.Itoa(c.pageSize))
	return c.endpoint + "/" + path + "?" + params.Encode()
}

// getPaged issues GET requests starting at pageURL and follows the
// Link rel="next" header until the listing is exhausted, invoking decode
// for each page body.
func (c *RESTClient) getPaged(ctx context.Context, pageURL string, decode func(io.Reader) error) error {
	for pageURL != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			err := newStatusError(resp)
			resp.Body.Close()
			return err
		}

		decodeErr := decode(io.LimitReader(resp.Body, maxListResponseBytes))
		resp.Body.Close()
		if decodeErr != nil {
			return decodeErr
		}

		pageURL = nextPageURL(resp.Header.Get("Link"))
	}

	return nil
}

// nextPageURL extracts the rel="next" target from an RFC 5988 Link header.
// Returns an empty string when there is no next page.
func nextPageURL(linkHeader string) string {
	for _, link := range strings.Split(linkHeader, ",") {
		sections := strings.Split(link, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// newStatusError turns a non-200 response into an error carrying the status
// and a snippet of the body, which the inspector later classifies.
func newStatusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("GET %s returned %s", resp.Request.URL.Path, resp.Status)
	}
	return fmt.Errorf("GET %s returned %s: %s", resp.Request.URL.Path, resp.Status, msg)
}

// mapError maps raw HTTP errors to our domain errors with actionable messages.
// Rate limit is checked first, as 403 can be both auth and rate limit.
func (c *RESTClient) mapError(err error, owner, repo string) error {
	if err == nil {
		return nil
	}

	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", arterrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", arterrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("repository '%s/%s' not found. Please check the repository name and your access permissions: %w", owner, repo, arterrors.ErrNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w", arterrors.ErrNetworkFailure)
	}

	return fmt.Errorf("github api request failed: %w", err)
}

// authTransport adds authentication and the Actions media-type headers to
// every request.
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-artifact/%s", version.Version))

	return t.base.RoundTrip(req)
}
