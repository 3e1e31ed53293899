// Package fetch retrieves missing support files from the remote template
// repository. Downloads are best-effort: a failed fetch is reported to the
// operator and the bootstrap continues without it.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackup-sh/stackup/internal/config"
)

// Result records the outcome of ensuring a single support file.
type Result struct {
	Path    string
	Fetched bool
	Size    int64
	Err     error
}

type Fetcher struct {
	fs      afero.Fs
	client  *http.Client
	baseURL string
	workDir string
	logger  zerolog.Logger
}

func NewFetcher(cfg config.Config, fs afero.Fs, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		fs: fs,
		client: &http.Client{
			Timeout: time.Duration(cfg.Remote.TimeoutSeconds) * time.Second,
		},
		baseURL: cfg.Remote.BaseURL,
		workDir: cfg.Paths.WorkDir,
		logger:  logger,
	}
}

// EnsureAll checks each required file and fetches the ones missing locally.
// Fetch failures never abort the run.
func (f *Fetcher) EnsureAll(ctx context.Context, files []string) []Result {
	results := make([]Result, 0, len(files))
	for _, relPath := range files {
		results = append(results, f.ensure(ctx, relPath))
	}
	return results
}

func (f *Fetcher) ensure(ctx context.Context, relPath string) Result {
	localPath := filepath.Join(f.workDir, filepath.FromSlash(relPath))

	exists, err := afero.Exists(f.fs, localPath)
	if err != nil {
		return Result{Path: relPath, Err: fmt.Errorf("failed to check for file %q: %w", localPath, err)}
	}
	if exists {
		f.logger.Debug().Str("path", relPath).Msg("support file already present")
		return Result{Path: relPath}
	}

	size, err := f.download(ctx, relPath, localPath)
	if err != nil {
		f.logger.Warn().Err(err).Str("path", relPath).Msg("failed to fetch support file, continuing without it")
		return Result{Path: relPath, Err: err}
	}

	f.logger.Info().
		Str("path", relPath).
		Str("size", humanize.Bytes(uint64(size))).
		Msg("fetched support file")
	return Result{Path: relPath, Fetched: true, Size: size}
}

func (f *Fetcher) download(ctx context.Context, relPath, localPath string) (int64, error) {
	remoteURL, err := url.JoinPath(f.baseURL, path.Clean(relPath))
	if err != nil {
		return 0, fmt.Errorf("failed to build remote url for %q: %w", relPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request for %q: %w", remoteURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %q: %w", remoteURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to fetch %q: unexpected status %d", remoteURL, resp.StatusCode)
	}

	if dir := filepath.Dir(localPath); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	out, err := f.fs.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %q: %w", localPath, err)
	}
	defer out.Close()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to write file %q: %w", localPath, err)
	}
	return size, nil
}
