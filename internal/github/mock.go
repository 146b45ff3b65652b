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
	"fmt"
	"os"

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
type MockClient struct {
	// Data to return
	Workflows     []Workflow
	Runs          []WorkflowRun
	RepoArtifacts []Artifact
	RunArtifacts  map[int64][]Artifact

	// Content written by DownloadArtifact
	ArchiveContent []byte

	// Error to return from any call
	Error error

	// Behavior flags
	ShouldFailAuth     bool
	ShouldFailNetwork  bool
	ShouldFailDownload bool

	// Track calls for verification
	WorkflowCalls  int
	RunCalls       int
	ArtifactCalls  int
	DownloadCalls  int
	LastRunFilter  RunFilter
	LastWorkflowID int64
	LastRunID      int64
	LastURL        string
}

// NewMockClient creates a new mock client with empty test data.
func NewMockClient() *MockClient {
	return &MockClient{
		RunArtifacts:   make(map[int64][]Artifact),
		ArchiveContent: []byte("PK\x03\x04mock"),
	}
}

func (m *MockClient) commonErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", arterrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", arterrors.ErrNetworkFailure)
	}
	return m.Error
}

// ListWorkflows implements the Client interface
func (m *MockClient) ListWorkflows(ctx context.Context, owner, repo string) ([]Workflow, error) {
	m.WorkflowCalls++
	if err := m.commonErr(ctx); err != nil {
		return nil, err
	}
	return m.Workflows, nil
}

// ListWorkflowRuns implements the Client interface
func (m *MockClient) ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, filter RunFilter) ([]WorkflowRun, error) {
	m.RunCalls++
	m.LastWorkflowID = workflowID
	m.LastRunFilter = filter
	if err := m.commonErr(ctx); err != nil {
		return nil, err
	}

	var runs []WorkflowRun
	for _, run := range m.Runs {
		if filter.Status != "" && run.Conclusion != filter.Status {
			continue
		}
		if filter.Branch != "" && run.HeadBranch != filter.Branch {
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ListRepoArtifacts implements the Client interface
func (m *MockClient) ListRepoArtifacts(ctx context.Context, owner, repo string) ([]Artifact, error) {
	m.ArtifactCalls++
	if err := m.commonErr(ctx); err != nil {
		return nil, err
	}
	return m.RepoArtifacts, nil
}

// ListRunArtifacts implements the Client interface
func (m *MockClient) ListRunArtifacts(ctx context.Context, owner, repo string, runID int64) ([]Artifact, error) {
	m.ArtifactCalls++
	m.LastRunID = runID
	if err := m.commonErr(ctx); err != nil {
		return nil, err
	}
	return m.RunArtifacts[runID], nil
}

// DownloadArtifact implements the Client interface
func (m *MockClient) DownloadArtifact(ctx context.Context, url, dest string) error {
	m.DownloadCalls++
	m.LastURL = url
	if err := m.commonErr(ctx); err != nil {
		return err
	}
	if m.ShouldFailDownload {
		return fmt.Errorf("archive request returned 410 Gone: %w", arterrors.ErrDownloadFailed)
	}
	return os.WriteFile(dest, m.ArchiveContent, 0o644)
}

// Reset clears all call tracking counters.
func (m *MockClient) Reset() {
	m.WorkflowCalls = 0
	m.RunCalls = 0
	m.ArtifactCalls = 0
	m.DownloadCalls = 0
	m.LastRunFilter = RunFilter{}
	m.LastWorkflowID = 0
	m.LastRunID = 0
	m.LastURL = ""
}

// Verify MockClient satisfies the Client interface.
var _ Client = (*MockClient)(nil)
