// Package tool acquires the external rcodesign binary for the current
// platform from its upstream release archives.
package tool

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/go-github/v60/github"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	defaultOwner = "indygreg"
	defaultRepo  = "apple-platform-rs"

	// Releases for the signing tool are tagged apple-codesign/<version>
	// in a repository shared with other components.
	tagPrefix = "apple-codesign/"
)

// Fetcher downloads and unpacks rcodesign releases.
type Fetcher struct {
	GitHub *github.Client
	HTTP   *http.Client
	Dir    string
	Log    zerolog.Logger

	Owner string
	Repo  string
}

// NewFetcher returns a Fetcher unpacking into dir. Downloads go through
// a retrying HTTP client; release metadata lookups share it.
func NewFetcher(dir string, log zerolog.Logger) *Fetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	httpClient := rc.StandardClient()
	return &Fetcher{
		GitHub: github.NewClient(httpClient),
		HTTP:   httpClient,
		Dir:    dir,
		Log:    log,
		Owner:  defaultOwner,
		Repo:   defaultRepo,
	}
}

// DefaultCacheDir returns the directory tool archives are unpacked
// into: the runner's temp directory on CI, the system temp otherwise.
func DefaultCacheDir() string {
	if dir := os.Getenv("RUNNER_TEMP"); dir != "" {
		return filepath.Join(dir, "lacquer-tools")
	}
	return filepath.Join(os.TempDir(), "lacquer-tools")
}

// Fetch ensures the rcodesign release for the current platform is
// available locally and returns the absolute executable path.
func (f *Fetcher) Fetch(ctx context.Context, version string) (string, error) {
	build, err := Lookup(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}
	return f.FetchBuild(ctx, version, build)
}

// FetchBuild downloads and unpacks a specific platform build.
func (f *Fetcher) FetchBuild(ctx context.Context, version string, build Build) (string, error) {
	exe := filepath.Join(f.Dir, build.ExtractDir(version), build.Exe)
	if _, err := os.Stat(exe); err == nil {
		// Already unpacked by an earlier step in the same job.
		f.Log.Debug().Str("exe", exe).Msg("rcodesign found in cache")
		return exe, nil
	}

	assetName := build.AssetName(version)
	f.Log.Info().
		Str("version", version).
		Str("asset", assetName).
		Msg("downloading rcodesign")

	release, _, err := f.GitHub.Repositories.GetReleaseByTag(ctx, f.Owner, f.Repo, tagPrefix+version)
	if err != nil {
		return "", fmt.Errorf("resolving rcodesign release %s: %w", version, err)
	}

	var assetURL string
	for _, a := range release.Assets {
		if a.GetName() == assetName {
			assetURL = a.GetBrowserDownloadURL()
			break
		}
	}
	if assetURL == "" {
		return "", fmt.Errorf("release %s has no asset %s", version, assetName)
	}

	archive, err := f.download(ctx, assetURL, assetName)
	if err != nil {
		return "", err
	}
	defer os.Remove(archive)

	if err := f.unpack(archive, build); err != nil {
		return "", err
	}

	if _, err := os.Stat(exe); err != nil {
		return "", fmt.Errorf("archive %s did not contain %s: %w", assetName, exe, err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(exe, 0o755); err != nil {
			return "", fmt.Errorf("marking %s executable: %w", exe, err)
		}
	}
	return exe, nil
}

func (f *Fetcher) download(ctx context.Context, url, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating tool directory: %w", err)
	}

	out, err := os.CreateTemp(f.Dir, name+".*")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	if _, err := out.ReadFrom(resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("writing %s: %w", out.Name(), err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", out.Name(), err)
	}
	return out.Name(), nil
}

func (f *Fetcher) unpack(archive string, build Build) error {
	switch build.Format {
	case TarGz:
		in, err := os.Open(archive)
		if err != nil {
			return fmt.Errorf("opening %s: %w", archive, err)
		}
		defer in.Close()
		return extractTarGz(in, f.Dir)
	case Zip:
		return extractZip(archive, f.Dir)
	default:
		return fmt.Errorf("unknown archive format %q", build.Format)
	}
}
