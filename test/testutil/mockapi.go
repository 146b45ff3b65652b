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

// Package testutil provides common test helpers for sirseer-artifact
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// FixtureWorkflow describes a workflow served by the mock API.
type FixtureWorkflow struct {
	ID   int64
	Name string
}

// FixtureRun describes a workflow run served by the mock API.
type FixtureRun struct {
	ID         int64
	WorkflowID int64
	Name       string
	Branch     string
	Event      string
	Conclusion string
	CreatedAt  time.Time
}

// FixtureArtifact describes an artifact served by the mock API.
// ArchiveContent is the body returned by the download endpoint.
type FixtureArtifact struct {
	ID             int64
	RunID          int64
	Name           string
	Expired        bool
	CreatedAt      time.Time
	ArchiveContent []byte
}

// ActionsServer is a mock of the GitHub Actions REST endpoints the tool
// talks to: workflow listing, workflow runs, repo-wide and run-scoped
// artifact listings, and archive downloads.
type ActionsServer struct {
	*httptest.Server

	Workflows []FixtureWorkflow
	Runs      []FixtureRun
	Artifacts []FixtureArtifact

	requestCount  int32
	downloadCount int32
}

// NewActionsServer starts a mock GitHub Actions API server for the given
// fixtures. The server is shut down automatically when the test ends.
func NewActionsServer(t *testing.T, workflows []FixtureWorkflow, runs []FixtureRun, artifacts []FixtureArtifact) *ActionsServer {
	t.Helper()

	s := &ActionsServer{
		Workflows: workflows,
		Runs:      runs,
		Artifacts: artifacts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/workflows", s.handleWorkflows)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/workflows/{id}/runs", s.handleRuns)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/artifacts", s.handleRepoArtifacts)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/runs/{id}/artifacts", s.handleRunArtifacts)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.requestCount, 1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)

	return s
}

// RequestCount returns the total number of API requests served.
func (s *ActionsServer) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

// DownloadCount returns the number of archive download requests served.
func (s *ActionsServer) DownloadCount() int {
	return int(atomic.LoadInt32(&s.downloadCount))
}

func (s *ActionsServer) handleWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows := make([]map[string]any, 0, len(s.Workflows))
	for _, wf := range s.Workflows {
		workflows = append(workflows, map[string]any{
			"id":    wf.ID,
			"name":  wf.Name,
			"path":  fmt.Sprintf(".github/workflows/%d.yml", wf.ID),
			"state": "active",
		})
	}
	writeJSON(w, map[string]any{
		"total_count": len(workflows),
		"workflows":   workflows,
	})
}

func (s *ActionsServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	workflowID := r.PathValue("id")
	status := r.URL.Query().Get("status")
	branch := r.URL.Query().Get("branch")

	runs := make([]map[string]any, 0)
	for _, run := range s.Runs {
		if fmt.Sprint(run.WorkflowID) != workflowID {
			continue
		}
		if status != "" && run.Conclusion != status {
			continue
		}
		if branch != "" && run.Branch != branch {
			continue
		}
		runs = append(runs, map[string]any{
			"id":          run.ID,
			"name":        run.Name,
			"head_branch": run.Branch,
			"event":       run.Event,
			"status":      "completed",
			"conclusion":  run.Conclusion,
			"created_at":  run.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, map[string]any{
		"total_count":   len(runs),
		"workflow_runs": runs,
	})
}

func (s *ActionsServer) handleRepoArtifacts(w http.ResponseWriter, r *http.Request) {
	s.writeArtifacts(w, r, func(FixtureArtifact) bool { return true })
}

func (s *ActionsServer) handleRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	s.writeArtifacts(w, r, func(a FixtureArtifact) bool {
		return fmt.Sprint(a.RunID) == runID
	})
}

func (s *ActionsServer) writeArtifacts(w http.ResponseWriter, r *http.Request, include func(FixtureArtifact) bool) {
	artifacts := make([]map[string]any, 0)
	for _, a := range s.Artifacts {
		if !include(a) {
			continue
		}
		artifacts = append(artifacts, map[string]any{
			"id":                   a.ID,
			"name":                 a.Name,
			"size_in_bytes":        len(a.ArchiveContent),
			"archive_download_url": fmt.Sprintf("http://%s/download/%d", r.Host, a.ID),
			"expired":              a.Expired,
			"created_at":           a.CreatedAt.Format(time.RFC3339),
			"expires_at":           a.CreatedAt.AddDate(0, 3, 0).Format(time.RFC3339),
		})
	}
	writeJSON(w, map[string]any{
		"total_count": len(artifacts),
		"artifacts":   artifacts,
	})
}

func (s *ActionsServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.downloadCount, 1)

	id := r.PathValue("id")
	for _, a := range s.Artifacts {
		if fmt.Sprint(a.ID) != id {
			continue
		}
		if a.Expired {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(a.ArchiveContent)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
