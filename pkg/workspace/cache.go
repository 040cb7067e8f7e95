package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// cacheVersion is bumped whenever the discovery cache's shape changes
// incompatibly.
const cacheVersion = 1

// cacheTTL is how long a discovery cache entry is trusted before a rescan
// is forced regardless of file metadata.
const cacheTTL = time.Hour

// configFileStat is one tracked config file's identity at cache time.
type configFileStat struct {
	Path  string `json:"path"`
	Mtime int64  `json:"mtime"`
	Size  int64  `json:"size"`
}

// discoveryCache is the persisted shape written to
// cache/prek/workspace/<hash(root)>.
type discoveryCache struct {
	Version      int               `json:"version"`
	WorkspaceRoot string           `json:"workspace_root"`
	CreatedAt    int64             `json:"created_at"`
	ConfigFiles  []configFileStat  `json:"config_files"`
}

// CachePath returns the discovery cache file path for root under the given
// store cache directory (store.CacheDir()/"prek"/"workspace"/<hash>).
func CachePath(storeCacheDir, root string) string {
	h := sha256.Sum256([]byte(root))
	return filepath.Join(storeCacheDir, "prek", "workspace", hex.EncodeToString(h[:])[:24]+".json")
}

// LoadCached returns the cached Workspace for root if the cache is valid:
// every listed config file exists unchanged, root still exists, and the
// entry is younger than cacheTTL. now is injected so callers control the
// freshness clock explicitly rather than this package sampling wall time.
func LoadCached(cachePath, root string, now time.Time) (*Workspace, bool) {
	data, err := os.ReadFile(cachePath) // #nosec G304 -- cache path derived from store root
	if err != nil {
		return nil, false
	}
	var dc discoveryCache
	if err := json.Unmarshal(data, &dc); err != nil {
		return nil, false
	}
	if dc.Version != cacheVersion || dc.WorkspaceRoot != root {
		return nil, false
	}
	if now.Sub(time.Unix(dc.CreatedAt, 0)) >= cacheTTL {
		return nil, false
	}
	if _, err := os.Stat(root); err != nil {
		return nil, false
	}

	var found []*Project
	for i, cf := range dc.ConfigFiles {
		info, err := os.Stat(cf.Path)
		if err != nil || info.ModTime().UnixNano() != cf.Mtime || info.Size() != cf.Size {
			return nil, false
		}
		dir := filepath.Dir(cf.Path)
		proj, err := loadProject(root, dir)
		if err != nil {
			return nil, false
		}
		proj.Idx = i
		found = append(found, proj)
	}

	return &Workspace{Root: root, Projects: found, AllProjects: found}, true
}

// Save persists the discovery as a cache entry at cachePath.
func Save(cachePath string, ws *Workspace, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("failed to create workspace cache directory: %w", err)
	}
	dc := discoveryCache{
		Version:       cacheVersion,
		WorkspaceRoot: ws.Root,
		CreatedAt:     now.Unix(),
	}
	for _, p := range ws.AllProjects {
		info, err := os.Stat(p.ConfigPath)
		if err != nil {
			continue
		}
		dc.ConfigFiles = append(dc.ConfigFiles, configFileStat{
			Path:  p.ConfigPath,
			Mtime: info.ModTime().UnixNano(),
			Size:  info.Size(),
		})
	}
	data, err := json.MarshalIndent(dc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workspace cache: %w", err)
	}
	tmp := cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, cachePath)
}

// DiscoverCached is Discover with the discovery cache layered on top;
// refresh forces a rescan and re-save regardless of cache validity.
func DiscoverCached(storeCacheDir, root string, refresh bool, now time.Time) (*Workspace, error) {
	cachePath := CachePath(storeCacheDir, root)
	if !refresh {
		if ws, ok := LoadCached(cachePath, root, now); ok {
			return ws, nil
		}
	}
	ws, err := Discover(root)
	if err != nil {
		return nil, err
	}
	if err := Save(cachePath, ws, now); err != nil {
		return nil, err
	}
	return ws, nil
}
