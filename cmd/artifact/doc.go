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

// Package main implements the sirseer-artifact command-line interface.
// The tool locates the most recent artifact of a given name in a GitHub
// repository's Actions runs and downloads it to local disk, printing the
// resulting path.
//
// The CLI supports:
//   - Repo-wide artifact search, or scoping to the latest successful run
//     of a named workflow (optionally on a specific branch)
//   - An artifact-id cache file that skips unchanged downloads
//   - GitHub Enterprise endpoints via configuration
//
// Exit codes: 0 on success or cache skip, 2 for authentication and lookup
// failures, 3 for network and download failures, 1 otherwise.
package main
