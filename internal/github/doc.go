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

// Package github provides a client for the GitHub Actions REST API endpoints
// used to locate and download workflow artifacts. It abstracts authentication,
// Link-header pagination, and error classification behind a simple interface.
//
// The package includes:
//   - A Client interface for listing workflows, runs, and artifacts
//   - A REST implementation with an authenticating http.RoundTripper
//   - A streaming artifact downloader with atomic file placement
//   - Mock client for testing
//
// Basic usage:
//
//	client := github.NewRESTClient("your-github-token", "https://api.github.com", 50)
//	artifacts, err := client.ListRepoArtifacts(ctx, "golang", "go")
//	if err != nil {
//	    // Handle error
//	}
//	for _, a := range artifacts {
//	    // Inspect artifact metadata
//	}
package github
