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

import "context"

// Client defines the interface for interacting with the GitHub Actions API.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListWorkflows retrieves every workflow defined in the repository,
	// following pagination until the listing is exhausted.
	ListWorkflows(ctx context.Context, owner, repo string) ([]Workflow, error)

	// ListWorkflowRuns retrieves the runs of a specific workflow, optionally
	// narrowed by the filter. Results are returned in the API's order,
	// newest first.
	ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, filter RunFilter) ([]WorkflowRun, error)

	// ListRepoArtifacts retrieves all artifacts in the repository across
	// every workflow run.
	ListRepoArtifacts(ctx context.Context, owner, repo string) ([]Artifact, error)

	// ListRunArtifacts retrieves the artifacts produced by a single
	// workflow run.
	ListRunArtifacts(ctx context.Context, owner, repo string, runID int64) ([]Artifact, error)

	// DownloadArtifact streams the artifact archive at url to the dest path.
	// The file is written to a temporary path and renamed into place, so a
	// failed download never leaves a partial file at dest.
	DownloadArtifact(ctx context.Context, url, dest string) error
}
