// Package store implements the process-wide cache root: per-bucket
// directories for cloned repos, installed hook environments, shared
// toolchains, language caches, scratch space, and user-owned patches, plus
// the tracked-configs registry GC walks from. Layout and locking are
// JSON-marker-and-directory based rather than a database (see DESIGN.md).
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Store is the on-disk cache root.
type Store struct {
	root string
	lock *Lock
}

const trackedConfigsFile = "config-tracking.json"

// Open resolves the store root (PREK_HOME, else XDG_CACHE_HOME/prek, else
// ~/.cache/prek on Unix and an OS-appropriate cache dir elsewhere) and
// ensures every bucket directory exists.
func Open(overrideRoot string) (*Store, error) {
	root := overrideRoot
	if root == "" {
		root = resolveDefaultRoot()
	}
	for _, bucket := range []string{"repos", "hooks", "tools", "cache", "scratch", "patches"} {
		if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store bucket %s: %w", bucket, err)
		}
	}
	return &Store{root: root, lock: NewLock(filepath.Join(root, ".lock"))}, nil
}

func resolveDefaultRoot() string {
	if home := os.Getenv("PREK_HOME"); home != "" {
		return home
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "prek")
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "prek")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cache", "prek")
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) ReposDir() string   { return filepath.Join(s.root, "repos") }
func (s *Store) HooksDir() string   { return filepath.Join(s.root, "hooks") }
func (s *Store) ToolsDir() string   { return filepath.Join(s.root, "tools") }
func (s *Store) CacheDir() string   { return filepath.Join(s.root, "cache") }
func (s *Store) ScratchDir() string { return filepath.Join(s.root, "scratch") }
func (s *Store) PatchesDir() string { return filepath.Join(s.root, "patches") }

// Lock returns the store's cross-process lock.
func (s *Store) Lock() *Lock { return s.lock }

// RepoCloneDir returns the deterministic clone directory for (url, rev); the
// directory name is a content hash so CloneRepo is idempotent.
func (s *Store) RepoCloneDir(url, rev string) string {
	return filepath.Join(s.ReposDir(), contentHash(url, rev))
}

// ToolDir returns the shared toolchain directory for (language, version).
// These are never per-hook: multiple environments reference the same path.
func (s *Store) ToolDir(language, version string) string {
	return filepath.Join(s.ToolsDir(), language, version)
}

// LanguageCacheDir returns the shared per-language cache directory (uv,
// cargo, go mod, npm, ...).
func (s *Store) LanguageCacheDir(language string) string {
	return filepath.Join(s.CacheDir(), language)
}

// NewHookEnvDir allocates a fresh, not-yet-persisted hook environment
// directory name under hooks/. Callers build into a sibling tempdir and
// rename it into place only after install succeeds.
func (s *Store) NewHookEnvDir() string {
	return filepath.Join(s.HooksDir(), newRandomSuffix())
}

func contentHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:24]
}

// TrackedConfigsPath returns the GC root-set file path.
func (s *Store) TrackedConfigsPath() string {
	return filepath.Join(s.root, trackedConfigsFile)
}

// TrackedConfigs reads the GC root set: absolute paths of project config
// files seen by any run against this store.
func (s *Store) TrackedConfigs() ([]string, error) {
	data, err := os.ReadFile(s.TrackedConfigsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracked configs: %w", err)
	}
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, fmt.Errorf("failed to parse tracked configs: %w", err)
	}
	return paths, nil
}

// UpdateTrackedConfigs merges newPaths into the tracked set and persists it.
func (s *Store) UpdateTrackedConfigs(newPaths []string) error {
	existing, err := s.TrackedConfigs()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing)+len(newPaths))
	merged := make([]string, 0, len(existing)+len(newPaths))
	for _, p := range append(existing, newPaths...) {
		if !seen[p] {
			seen[p] = true
			merged = append(merged, p)
		}
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracked configs: %w", err)
	}
	return atomicWriteFile(s.TrackedConfigsPath(), data)
}

// InstalledHooks scans hooks/*/ for .prek-hook.json markers in parallel,
// silently skipping entries with a malformed or absent marker.
func (s *Store) InstalledHooks() ([]InstallInfo, error) {
	entries, err := os.ReadDir(s.HooksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list hooks directory: %w", err)
	}

	type result struct {
		info InstallInfo
		ok   bool
	}
	results := make(chan result, len(entries))
	for _, e := range entries {
		e := e
		go func() {
			if !e.IsDir() {
				results <- result{}
				return
			}
			envPath := filepath.Join(s.HooksDir(), e.Name())
			info, err := ReadHookMarker(envPath)
			if err != nil {
				results <- result{}
				return
			}
			results <- result{info: info, ok: true}
		}()
	}

	var out []InstallInfo
	for range entries {
		r := <-results
		if r.ok {
			out = append(out, r.info)
		}
	}
	return out, nil
}

// ClonedRepos lists every repos/*/ directory, plus the .prek-repo.json
// markers that could be read from them (directories without a readable
// marker appear only in the directory list).
func (s *Store) ClonedRepos() ([]RepoMarker, []string, error) {
	entries, err := os.ReadDir(s.ReposDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to list repos directory: %w", err)
	}
	var markers []RepoMarker
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.ReposDir(), e.Name())
		dirs = append(dirs, dir)
		marker, err := ReadRepoMarker(dir)
		if err == nil {
			markers = append(markers, marker)
		}
	}
	return markers, dirs, nil
}

func atomicWriteFile(path string, data []byte) error {
	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
