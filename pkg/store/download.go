package store

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Downloader fetches and extracts toolchain archives into
// tools/<lang>/<version>/. Package-manager/pyenv/nodeenv-specific download
// logic belongs to individual language adapters, out of scope here.
type Downloader struct {
	client *http.Client
}

// NewDownloader returns a Downloader with a conservative default timeout.
func NewDownloader() *Downloader {
	return &Downloader{client: &http.Client{Timeout: 5 * time.Minute}}
}

// NormalizedOS returns the OS component commonly used in toolchain archive
// names (osx/win/linux).
func NormalizedOS() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	case "windows":
		return "win"
	default:
		return runtime.GOOS
	}
}

// NormalizedArch returns the architecture component commonly used in
// toolchain archive names (x64/arm64/x86).
func NormalizedArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "arm64":
		return "arm64"
	case "386":
		return "x86"
	default:
		return runtime.GOARCH
	}
}

// FetchAndExtract downloads the archive at url and extracts it into destDir,
// inferring the archive format from the URL's extension (.tar.gz/.tgz or
// .zip).
func (d *Downloader) FetchAndExtract(ctx context.Context, url, destDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request for %s: %w", url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %s", url, resp.Status)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction directory %s: %w", destDir, err)
	}

	switch {
	case strings.HasSuffix(url, ".tar.gz"), strings.HasSuffix(url, ".tgz"):
		return extractTarGz(resp.Body, destDir)
	case strings.HasSuffix(url, ".zip"):
		return extractZip(resp.Body, destDir)
	default:
		return fmt.Errorf("unsupported archive format for %s", url)
	}
}

func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}
		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeExtractedFile(target, tr, os.FileMode(hdr.Mode)); err != nil { //nolint:gosec // archive mode, not user input
				return err
			}
		}
	}
}

func extractZip(r io.Reader, destDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to buffer zip archive: %w", err)
	}
	tmp, err := os.CreateTemp("", "prek-toolchain-*.zip")
	if err != nil {
		return fmt.Errorf("failed to stage zip archive: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	_ = tmp.Close()

	zr, err := zip.OpenReader(tmp.Name())
	if err != nil {
		return fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeExtractedFile(target, rc, f.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// safeJoin guards against zip-slip: entries escaping destDir via ../ are rejected.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) && target != filepath.Clean(destDir) {
		return "", fmt.Errorf("archive entry %q escapes destination directory", name)
	}
	return target, nil
}

func writeExtractedFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	_, err = io.Copy(out, r) //nolint:gosec // bounded by upstream archive size, not user-controlled
	return err
}
