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

// Package resolve selects the workflow run and artifact a download request
// refers to. It contains the pure selection logic on top of the github
// client: newest successful run for a workflow, and newest non-expired
// artifact matching a name.
package resolve

import (
	"context"
	"fmt"

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/github"
)

// LatestSuccessfulRun finds the most recent run of the named workflow whose
// conclusion is "success", optionally restricted to a branch. The workflow
// name must match a workflow's display name exactly; case matters, mirroring
// the API's own naming semantics.
//
// Returns an error wrapping ErrNotFound when the workflow does not exist or
// no successful run matches. The workflow lookup failure happens before any
// run listing request is made.
func LatestSuccessfulRun(ctx context.Context, client github.Client, owner, repo, workflowName, branch string) (*github.WorkflowRun, error) {
	workflows, err := client.ListWorkflows(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	var workflow *github.Workflow
	for i := range workflows {
		if workflows[i].Name == workflowName {
			workflow = &workflows[i]
			break
		}
	}
	if workflow == nil {
		return nil, fmt.Errorf("workflow '%s' not found in %s/%s: %w", workflowName, owner, repo, arterrors.ErrNotFound)
	}

	runs, err := client.ListWorkflowRuns(ctx, owner, repo, workflow.ID, github.RunFilter{
		Branch: branch,
		Status: github.ConclusionSuccess,
	})
	if err != nil {
		return nil, err
	}

	var latest *github.WorkflowRun
	for i := range runs {
		run := &runs[i]
		// The status filter is applied server-side; keep the conclusion
		// check for APIs that ignore unknown status values.
		if run.Conclusion != github.ConclusionSuccess {
			continue
		}
		if branch != "" && run.HeadBranch != branch {
			continue
		}
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no successful run of workflow '%s' found in %s/%s: %w", workflowName, owner, repo, arterrors.ErrNotFound)
	}

	return latest, nil
}
