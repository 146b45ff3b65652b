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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirseerhq/sirseer-artifact/internal/cache"
	"github.com/sirseerhq/sirseer-artifact/internal/config"
	arterrors "github.com/sirseerhq/sirseer-artifact/internal/errors"
	"github.com/sirseerhq/sirseer-artifact/internal/github"
	"github.com/sirseerhq/sirseer-artifact/internal/resolve"
	"github.com/sirseerhq/sirseer-artifact/pkg/version"
	"github.com/spf13/cobra"
)

// options collects everything the download pipeline needs from flags.
type options struct {
	artifact   string
	filename   string
	cacheFile  string
	workflow   string
	branch     string
	token      string
	configPath string
	timeout    string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sirseer-artifact <owner>/<repo>",
		Short: "Download the latest GitHub Actions artifact from a repository",
		Long: `sirseer-artifact downloads the most recent artifact of a given name from a
GitHub repository's workflow runs. With --workflow it first resolves the
latest successful run of that workflow (optionally restricted to a branch)
and searches only that run's artifacts.

The repository must be specified in the format: <owner>/<repo>
For example: golang/go, kubernetes/kubernetes

Authentication is required via GitHub token:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN environment variable

On success the local path of the downloaded zip archive is printed to
standard output. With --cache-file, an invocation that resolves to an
already-downloaded artifact exits 0 without downloading or printing.`,
		Version:       version.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.artifact, "artifact", "", "Name of the artifact to download (required)")
	cmd.Flags().StringVar(&opts.filename, "filename", "", "Local filename for the downloaded artifact (default: <artifact name>.zip)")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "File storing the last downloaded artifact id; skips the download when unchanged")
	cmd.Flags().StringVar(&opts.workflow, "workflow", "", "Workflow name to download the artifact from")
	cmd.Flags().StringVar(&opts.branch, "branch", "", "Branch to download the artifact from, only checked if --workflow is also given")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "", "Overall timeout, e.g. 90s or 5m (default from config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Output some debugging information")

	return cmd
}

// runDownload validates arguments and configuration, then drives the
// resolve-cache-download pipeline. Argument validation happens before any
// network request.
func runDownload(cmd *cobra.Command, repoArg string, opts *options) error {
	owner, repo, err := parseRepository(repoArg)
	if err != nil {
		return err
	}

	if opts.artifact == "" {
		return fmt.Errorf("artifact name is required. Use the --artifact flag")
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	token := getToken(opts.token, cfg.GitHub.TokenEnv)
	if token == "" {
		return fmt.Errorf("GitHub token not found. Set %s or use --token flag", cfg.GitHub.TokenEnv)
	}

	timeout, err := resolveTimeout(opts.timeout, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := github.NewRESTClient(token, cfg.GitHub.APIEndpoint, cfg.Defaults.PageSize)

	return download(ctx, client, cmd.OutOrStdout(), cmd.ErrOrStderr(), owner, repo, opts)
}

// download resolves the target artifact, consults the cache gate, and
// fetches the archive. Exactly one line, the local path, is written to out
// on a completed download; a cache hit writes nothing.
func download(ctx context.Context, client github.Client, out, errOut io.Writer, owner, repo string, opts *options) error {
	var runID int64
	if opts.workflow != "" {
		run, err := resolve.LatestSuccessfulRun(ctx, client, owner, repo, opts.workflow, opts.branch)
		if err != nil {
			return err
		}
		runID = run.ID

		if opts.verbose {
			fmt.Fprintf(errOut, "Successful run found: %s on %s, %s started on: %s\n",
				run.Event, run.HeadBranch, run.Name, run.CreatedAt.Format(time.RFC3339))
		}
	}

	artifact, err := resolve.LatestArtifact(ctx, client, owner, repo, opts.artifact, runID)
	if err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintf(errOut, "Artifact found: %s (%d bytes), created on: %s\n",
			artifact.Name, artifact.SizeInBytes, artifact.CreatedAt.Format(time.RFC3339))
	}

	if cache.ShouldSkip(opts.cacheFile, artifact.ID) {
		if opts.verbose {
			fmt.Fprintln(errOut, "Artifact already downloaded, exiting")
		}
		return nil
	}

	dest := opts.filename
	if dest == "" {
		dest = artifact.Name + ".zip"
	}

	if opts.verbose {
		fmt.Fprintf(errOut, "Downloading %s\n", artifact.ArchiveDownloadURL)
	}

	if err := client.DownloadArtifact(ctx, artifact.ArchiveDownloadURL, dest); err != nil {
		return err
	}

	if opts.cacheFile != "" {
		// The artifact is already on disk; a cache write failure only
		// costs a redundant future download.
		if err := cache.Save(opts.cacheFile, artifact.ID); err != nil {
			fmt.Fprintf(errOut, "Warning: failed to update cache file: %v\n", err)
		}
	}

	if opts.verbose {
		fmt.Fprintf(errOut, "File downloaded to %s\n", dest)
	}

	path, err := filepath.Abs(dest)
	if err != nil {
		path = dest
	}
	fmt.Fprintln(out, path)

	return nil
}

// parseRepository parses an owner/repo string into owner and repo components
func parseRepository(repoArg string) (owner, repo string, err error) {
	parts := strings.Split(repoArg, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	return owner, repo, nil
}

// getToken returns the GitHub token from flag or environment variable
func getToken(flagToken, tokenEnv string) string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv(tokenEnv)
}

// resolveTimeout picks the effective timeout: flag over config.
func resolveTimeout(flagTimeout string, cfg *config.Config) (time.Duration, error) {
	if flagTimeout != "" {
		d, err := time.ParseDuration(flagTimeout)
		if err != nil {
			return 0, fmt.Errorf("invalid --timeout '%s': %w", flagTimeout, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("--timeout must be positive, got: %s", flagTimeout)
		}
		return d, nil
	}
	return cfg.RequestTimeout()
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Check for specific error types
	if errors.Is(err, arterrors.ErrInvalidToken) ||
		errors.Is(err, arterrors.ErrNotFound) ||
		errors.Is(err, arterrors.ErrRateLimit) {
		return 2 // Authentication/authorization and lookup errors
	}

	if errors.Is(err, arterrors.ErrNetworkFailure) ||
		errors.Is(err, arterrors.ErrDownloadFailed) {
		return 3 // Network and transfer errors
	}

	return 1 // General error
}
