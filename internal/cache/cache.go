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

// Package cache persists the id of the last downloaded artifact so repeated
// invocations can skip re-downloading an unchanged artifact. The cache is a
// plain text file holding a single decimal integer. Read failures are never
// fatal: an unreadable or malformed cache degrades to "always download".
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads the artifact id stored in the cache file.
func Load(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache file %s is corrupted (not an integer): %w", path, err)
	}

	return id, nil
}

// ShouldSkip reports whether the artifact with the given id has already been
// downloaded according to the cache file. An empty path disables the cache.
// A missing, unreadable, or malformed cache file counts as a miss.
func ShouldSkip(path string, id int64) bool {
	if path == "" {
		return false
	}

	cached, err := Load(path)
	if err != nil {
		return false
	}

	return cached == id
}

// Save atomically writes the artifact id to the cache file, creating parent
// directories as needed. It uses a write-to-temp-and-rename pattern so the
// cache never holds a partially written value. Call this only after the
// download has completed without error.
func Save(path string, id int64) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}

	if _, err := tmp.WriteString(strconv.FormatInt(id, 10)); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to sync cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}

	return nil
}
