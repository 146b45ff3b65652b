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

import "time"

// Workflow represents a workflow definition in a repository.
// Field names mirror the REST API response.
type Workflow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	State string `json:"state"`
}

// WorkflowRun represents a single execution of a workflow. Conclusion is
// empty while the run is still in progress and becomes a terminal value
// such as "success" or "failure" once the run completes.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	HeadBranch string    `json:"head_branch"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
}

// Artifact represents a named binary bundle produced by a workflow run.
// Expired artifacts remain in listings but their archive is no longer
// downloadable.
type Artifact struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	SizeInBytes        int64     `json:"size_in_bytes"`
	ArchiveDownloadURL string    `json:"archive_download_url"`
	Expired            bool      `json:"expired"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at"`
}

// RunFilter narrows a workflow-runs listing. Both filters are applied
// server-side as query parameters; empty values are omitted.
type RunFilter struct {
	// Branch restricts results to runs triggered on the given branch.
	Branch string

	// Status restricts results by run status or conclusion,
	// e.g. "success" or "completed".
	Status string
}

// ConclusionSuccess is the terminal conclusion of a run that finished cleanly.
const ConclusionSuccess = "success"

// List response envelopes as returned by the REST API.
type workflowsPage struct {
	TotalCount int        `json:"total_count"`
	Workflows  []Workflow `json:"workflows"`
}

type runsPage struct {
	TotalCount   int           `json:"total_count"`
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

type artifactsPage struct {
	TotalCount int        `json:"total_count"`
	Artifacts  []Artifact `json:"artifacts"`
}

// Default values for list operations
const (
	defaultPageSize = 50
	maxPageSize     = 100
)
