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

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirseerhq/sirseer-artifact/internal/cache"
	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/github"
)

// newTestClient returns a mock client with one repo-wide artifact.
func newTestClient(id int64, name string) *github.MockClient {
	client := github.NewMockClient()
	client.RepoArtifacts = []github.Artifact{{
		ID:                 id,
		Name:               name,
		SizeInBytes:        128,
		ArchiveDownloadURL: "https://api.github.com/download/" + name,
		CreatedAt:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}}
	return client
}

func runPipeline(t *testing.T, client github.Client, owner, repo string, opts *options) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := download(context.Background(), client, &out, &errOut, owner, repo, opts)
	return out.String(), errOut.String(), err
}

func TestDownload_PrintsPathAndWritesFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "docs.zip")
	client := newTestClient(42, "docs")

	stdout, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact: "docs",
		filename: dest,
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if strings.TrimSpace(stdout) != dest {
		t.Errorf("stdout = %q, want path %q", stdout, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("expected downloaded file at %s: %v", dest, err)
	}
	if client.DownloadCalls != 1 {
		t.Errorf("download calls = %d, want 1", client.DownloadCalls)
	}
}

func TestDownload_DefaultFilenameFromArtifactName(t *testing.T) {
	t.Chdir(t.TempDir())
	client := newTestClient(42, "docs")

	stdout, _, err := runPipeline(t, client, "octo", "hello", &options{artifact: "docs"})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if _, err := os.Stat("docs.zip"); err != nil {
		t.Errorf("expected docs.zip in working directory: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(stdout), string(os.PathSeparator)+"docs.zip") {
		t.Errorf("stdout = %q, want absolute path ending in docs.zip", stdout)
	}
}

func TestDownload_CacheHitSkipsDownload(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache")
	if err := cache.Save(cacheFile, 42); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	client := newTestClient(42, "docs")
	stdout, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact:  "docs",
		filename:  filepath.Join(dir, "docs.zip"),
		cacheFile: cacheFile,
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if stdout != "" {
		t.Errorf("stdout = %q, want empty on cache hit", stdout)
	}
	if client.DownloadCalls != 0 {
		t.Errorf("download calls = %d, want 0 on cache hit", client.DownloadCalls)
	}
	if _, err := os.Stat(filepath.Join(dir, "docs.zip")); !os.IsNotExist(err) {
		t.Error("expected no file write on cache hit")
	}
}

func TestDownload_StaleCacheDownloadsAndRewrites(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache")
	if err := cache.Save(cacheFile, 42); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	client := newTestClient(43, "docs")
	_, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact:  "docs",
		filename:  filepath.Join(dir, "docs.zip"),
		cacheFile: cacheFile,
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if client.DownloadCalls != 1 {
		t.Errorf("download calls = %d, want 1", client.DownloadCalls)
	}
	id, err := cache.Load(cacheFile)
	if err != nil {
		t.Fatalf("failed to load cache: %v", err)
	}
	if id != 43 {
		t.Errorf("cache content = %d, want 43", id)
	}
}

func TestDownload_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache")
	opts := &options{
		artifact:  "docs",
		filename:  filepath.Join(dir, "docs.zip"),
		cacheFile: cacheFile,
	}

	client := newTestClient(42, "docs")

	// First invocation downloads and records the id.
	stdout, _, err := runPipeline(t, client, "octo", "hello", opts)
	if err != nil {
		t.Fatalf("first download failed: %v", err)
	}
	if stdout == "" {
		t.Error("first invocation printed nothing")
	}
	if id, _ := cache.Load(cacheFile); id != 42 {
		t.Errorf("cache content after first run = %d, want 42", id)
	}

	// Second invocation with an unchanged artifact skips.
	client.Reset()
	stdout, _, err = runPipeline(t, client, "octo", "hello", opts)
	if err != nil {
		t.Fatalf("second download failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("second invocation stdout = %q, want empty", stdout)
	}
	if client.DownloadCalls != 0 {
		t.Errorf("second invocation download calls = %d, want 0", client.DownloadCalls)
	}
}

func TestDownload_WorkflowScoping(t *testing.T) {
	dir := t.TempDir()
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 9, Name: "CI"}}
	client.Runs = []github.WorkflowRun{
		{ID: 100, Name: "CI", Conclusion: "success", HeadBranch: "main", CreatedAt: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: 99, Name: "CI", Conclusion: "success", HeadBranch: "main", CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	client.RunArtifacts[100] = []github.Artifact{{
		ID: 7, Name: "docs", ArchiveDownloadURL: "https://api.github.com/download/7",
		CreatedAt: time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC),
	}}
	// Repo-wide listing holds a newer decoy that must not be used.
	client.RepoArtifacts = []github.Artifact{{
		ID: 8, Name: "docs", CreatedAt: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
	}}

	_, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact: "docs",
		workflow: "CI",
		filename: filepath.Join(dir, "docs.zip"),
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if client.LastRunID != 100 {
		t.Errorf("artifacts listed for run %d, want 100 (latest successful)", client.LastRunID)
	}
	if client.LastURL != "https://api.github.com/download/7" {
		t.Errorf("downloaded %q, want artifact 7 from run 100", client.LastURL)
	}
}

func TestDownload_UnknownWorkflowMakesNoArtifactCalls(t *testing.T) {
	client := github.NewMockClient()
	client.Workflows = []github.Workflow{{ID: 9, Name: "CI"}}

	_, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact: "docs",
		workflow: "Deploy",
	})
	if !errors.Is(err, arterrors.ErrNotFound) {
		t.Fatalf("error = %v, want wrapped ErrNotFound", err)
	}
	if client.ArtifactCalls != 0 {
		t.Errorf("artifact calls = %d, want 0", client.ArtifactCalls)
	}
	if client.DownloadCalls != 0 {
		t.Errorf("download calls = %d, want 0", client.DownloadCalls)
	}
}

func TestDownload_FailedDownloadLeavesCacheUntouched(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "cache")
	if err := cache.Save(cacheFile, 42); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	client := newTestClient(43, "docs")
	client.ShouldFailDownload = true

	_, _, err := runPipeline(t, client, "octo", "hello", &options{
		artifact:  "docs",
		filename:  filepath.Join(dir, "docs.zip"),
		cacheFile: cacheFile,
	})
	if !errors.Is(err, arterrors.ErrDownloadFailed) {
		t.Fatalf("error = %v, want wrapped ErrDownloadFailed", err)
	}

	if id, _ := cache.Load(cacheFile); id != 42 {
		t.Errorf("cache content = %d, want untouched 42", id)
	}
}

func TestDownload_VerboseOutputGoesToStderr(t *testing.T) {
	dir := t.TempDir()
	client := newTestClient(42, "docs")

	stdout, stderr, err := runPipeline(t, client, "octo", "hello", &options{
		artifact: "docs",
		filename: filepath.Join(dir, "docs.zip"),
		verbose:  true,
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}

	if !strings.Contains(stderr, "Artifact found: docs") {
		t.Errorf("stderr = %q, want artifact diagnostics", stderr)
	}
	// stdout stays machine-readable: the path and nothing else.
	if len(strings.Split(strings.TrimSpace(stdout), "\n")) != 1 {
		t.Errorf("stdout = %q, want exactly one line", stdout)
	}
}

func TestRootCommand_RequiresArtifactFlag(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"octo/hello"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "artifact name is required") {
		t.Errorf("Execute() error = %v, want artifact-name usage error", err)
	}
}

func TestRootCommand_RejectsMalformedRepository(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"not-a-repo", "--artifact", "docs"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid repository format") {
		t.Errorf("Execute() error = %v, want repository format error", err)
	}
}
