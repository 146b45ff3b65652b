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
	"io"
	"net/http"
	"os"
	"path/filepath"

	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/pkg/version"
)

// DownloadArtifact streams the artifact archive at url to dest, overwriting
// any existing file. The body is written to a temporary file in the
// destination directory and renamed into place once the stream completes,
// so a failed or interrupted download never leaves a partial file at dest.
func (c *RESTClient) DownloadArtifact(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	// Headers go on the initial request rather than the transport so the
	// Authorization header is dropped when GitHub redirects to blob storage.
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-artifact/%s", version.Version))

	resp, err := c.dlClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch artifact archive: %v: %w", err, arterrors.ErrDownloadFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("artifact archive request returned %s: %w", resp.Status, arterrors.ErrDownloadFailed)
	}

	if err := writeAtomic(dest, resp.Body); err != nil {
		return fmt.Errorf("%v: %w", err, arterrors.ErrDownloadFailed)
	}

	return nil
}

// writeAtomic copies r to a temporary file next to dest, syncs it, and
// renames it over dest.
func writeAtomic(dest string, r io.Reader) error {
	dir := filepath.Dir(dest)

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write artifact archive: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to sync artifact archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close artifact archive: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move artifact archive into place: %w", err)
	}

	return nil
}
