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

package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/github"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestLatestArtifact_PicksNewestAmongDuplicateNames(t *testing.T) {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{
		{ID: 1, Name: "docs", CreatedAt: day(1)},
		{ID: 3, Name: "docs", CreatedAt: day(9)},
		{ID: 2, Name: "docs", CreatedAt: day(5)},
		{ID: 4, Name: "other", CreatedAt: day(20)},
	}

	artifact, err := LatestArtifact(context.Background(), client, "octo", "hello", "docs", 0)
	if err != nil {
		t.Fatalf("LatestArtifact failed: %v", err)
	}
	if artifact.ID != 3 {
		t.Errorf("selected artifact ID = %d, want 3 (newest 'docs')", artifact.ID)
	}
}

func TestLatestArtifact_NeverSelectsExpired(t *testing.T) {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{
		{ID: 1, Name: "docs", CreatedAt: day(1)},
		{ID: 2, Name: "docs", CreatedAt: day(9), Expired: true},
	}

	artifact, err := LatestArtifact(context.Background(), client, "octo", "hello", "docs", 0)
	if err != nil {
		t.Fatalf("LatestArtifact failed: %v", err)
	}
	if artifact.ID != 1 {
		t.Errorf("selected artifact ID = %d, want 1 (newest non-expired)", artifact.ID)
	}
}

func TestLatestArtifact_AllExpiredIsNotFound(t *testing.T) {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{
		{ID: 1, Name: "docs", CreatedAt: day(1), Expired: true},
	}

	_, err := LatestArtifact(context.Background(), client, "octo", "hello", "docs", 0)
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Errorf("error = %v, want wrapped ErrNotFound", err)
	}
}

func TestLatestArtifact_NameMatchIsExactAndCaseSensitive(t *testing.T) {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{
		{ID: 1, Name: "Docs", CreatedAt: day(1)},
		{ID: 2, Name: "docs-extra", CreatedAt: day(2)},
	}

	_, err := LatestArtifact(context.Background(), client, "octo", "hello", "docs", 0)
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Errorf("error = %v, want wrapped ErrNotFound", err)
	}
}

func TestLatestArtifact_RunScopedMode(t *testing.T) {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{
		{ID: 99, Name: "docs", CreatedAt: day(20)},
	}
	client.RunArtifacts[7] = []github.Artifact{
		{ID: 5, Name: "docs", CreatedAt: day(3)},
	}

	artifact, err := LatestArtifact(context.Background(), client, "octo", "hello", "docs", 7)
	if err != nil {
		t.Fatalf("LatestArtifact failed: %v", err)
	}
	if artifact.ID != 5 {
		t.Errorf("selected artifact ID = %d, want 5 (from run 7, not repo-wide)", artifact.ID)
	}
	if client.LastRunID != 7 {
		t.Errorf("ListRunArtifacts called with run ID %d, want 7", client.LastRunID)
	}
}

func TestLatestSuccessfulRun_PicksNewest(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{
		{ID: 42, Name: "CI", Path: ".github/workflows/ci.yml"},
	}
	client.Runs = []github.WorkflowRun{
		{ID: 1, Conclusion: "success", HeadBranch: "main", CreatedAt: day(1)},
		{ID: 3, Conclusion: "success", HeadBranch: "main", CreatedAt: day(9)},
		{ID: 2, Conclusion: "success", HeadBranch: "main", CreatedAt: day(5)},
	}

	run, err := LatestSuccessfulRun(context.Background(), client, "octo", "hello", "CI", "")
	if err != nil {
		t.Fatalf("LatestSuccessfulRun failed: %v", err)
	}
	if run.ID != 3 {
		t.Errorf("selected run ID = %d, want 3", run.ID)
	}
	if client.LastWorkflowID != 42 {
		t.Errorf("runs listed for workflow %d, want 42", client.LastWorkflowID)
	}
	if client.LastRunFilter.Status != "success" {
		t.Errorf("run filter status = %q, want %q", client.LastRunFilter.Status, "success")
	}
}

func TestLatestSuccessfulRun_BranchFilter(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 42, Name: "CI"}}
	client.Runs = []github.WorkflowRun{
		{ID: 1, Conclusion: "success", HeadBranch: "main", CreatedAt: day(9)},
		{ID: 2, Conclusion: "success", HeadBranch: "release", CreatedAt: day(5)},
	}

	run, err := LatestSuccessfulRun(context.Background(), client, "octo", "hello", "CI", "release")
	if err != nil {
		t.Fatalf("LatestSuccessfulRun failed: %v", err)
	}
	if run.ID != 2 {
		t.Errorf("selected run ID = %d, want 2 (release branch)", run.ID)
	}
	if client.LastRunFilter.Branch != "release" {
		t.Errorf("run filter branch = %q, want %q", client.LastRunFilter.Branch, "release")
	}
}

func TestLatestSuccessfulRun_UnknownWorkflowSkipsRunListing(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 42, Name: "CI"}}

	_, err := LatestSuccessfulRun(context.Background(), client, "octo", "hello", "Deploy", "")
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Fatalf("error = %v, want wrapped ErrNotFound", err)
	}
	if client.RunCalls != 0 {
		t.Errorf("run listing called %d times after workflow lookup failure, want 0", client.RunCalls)
	}
	if client.ArtifactCalls != 0 {
		t.Errorf("artifact listing called %d times after workflow lookup failure, want 0", client.ArtifactCalls)
	}
}

func TestLatestSuccessfulRun_WorkflowNameIsCaseSensitive(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 42, Name: "CI"}}

	_, err := LatestSuccessfulRun(context.Background(), client, "octo", "hello", "ci", "")
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Errorf("error = %v, want wrapped ErrNotFound for case-mismatched name", err)
	}
}

func TestLatestSuccessfulRun_NoSuccessfulRuns(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 42, Name: "CI"}}
	client.Runs = []github.WorkflowRun{
		{ID: 1, Conclusion: "failure", HeadBranch: "main", CreatedAt: day(9)},
	}

	_, err := LatestSuccessfulRun(context.Background(), client, "octo", "hello", "CI", "")
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Errorf("error = %v, want wrapped ErrNotFound", err)
	}
}
