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
	"fmt"

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/github"
)

// LatestArtifact finds the most recently created non-expired artifact with
// the given name. When runID is positive the search is scoped to that run's
// artifacts; otherwise the whole repository is searched. Name matching is
// exact and case-sensitive. Expired artifacts are never selected, even when
// they are the newest match.
//
// Returns an error wrapping ErrNotFound when no artifact qualifies.
func LatestArtifact(ctx context.Context, client github.Client, owner, repo, name string, runID int64) (*github.Artifact, error) {
	var (
		artifacts []github.Artifact
		err       error
	)
	if runID > 0 {
		artifacts, err = client.ListRunArtifacts(ctx, owner, repo, runID)
	} else {
		artifacts, err = client.ListRepoArtifacts(ctx, owner, repo)
	}
	if err != nil {
		return nil, err
	}

	latest := newestMatch(artifacts, name)
	if latest == nil {
		return nil, fmt.Errorf("no artifact named '%s' found in %s/%s: %w", name, owner, repo, arterrors.ErrNotFound)
	}

	return latest, nil
}

// newestMatch returns the non-expired artifact with the given name and the
// greatest creation timestamp, or nil when none matches.
func newestMatch(artifacts []github.Artifact, name string) *github.Artifact {
	var latest *github.Artifact
	for i := range artifacts {
		a := &artifacts[i]
		if a.Name != name || a.Expired {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest
}
