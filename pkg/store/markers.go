package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// InstallInfo is the persisted marker of an installed hook environment,
// written as .prek-hook.json at the env path.
type InstallInfo struct {
	Language        string            `json:"language"`
	LanguageVersion string            `json:"language_version"`
	Dependencies    []string          `json:"dependencies"`
	EnvPath         string            `json:"env_path"`
	Toolchain       string            `json:"toolchain,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

const hookMarkerName = ".prek-hook.json"

// WriteHookMarker atomically persists info at envPath/.prek-hook.json.
// Called only after install succeeds.
func WriteHookMarker(envPath string, info InstallInfo) error {
	info.EnvPath = envPath
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode install marker: %w", err)
	}
	return atomicWriteFile(filepath.Join(envPath, hookMarkerName), data)
}

// ReadHookMarker reads and decodes an environment's install marker.
func ReadHookMarker(envPath string) (InstallInfo, error) {
	data, err := os.ReadFile(filepath.Join(envPath, hookMarkerName))
	if err != nil {
		return InstallInfo{}, err
	}
	var info InstallInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return InstallInfo{}, err
	}
	return info, nil
}

// RepoMarker is the persisted marker at a cloned repo's root; GC reads it
// to decide whether a clone is still referenced.
type RepoMarker struct {
	URL string `json:"url"`
	Rev string `json:"rev"`
}

const repoMarkerName = ".prek-repo.json"

// WriteRepoMarker atomically persists a RepoMarker at cloneDir/.prek-repo.json.
func WriteRepoMarker(cloneDir string, marker RepoMarker) error {
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode repo marker: %w", err)
	}
	return atomicWriteFile(filepath.Join(cloneDir, repoMarkerName), data)
}

// ReadRepoMarker reads and decodes a cloned repo's marker.
func ReadRepoMarker(cloneDir string) (RepoMarker, error) {
	data, err := os.ReadFile(filepath.Join(cloneDir, repoMarkerName))
	if err != nil {
		return RepoMarker{}, err
	}
	var marker RepoMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return RepoMarker{}, err
	}
	return marker, nil
}

// Matches reports whether this InstallInfo satisfies a hook's environment
// key: equal language, equal dependency set, and the language request is
// satisfied by this install's recorded version.
func (info InstallInfo) Matches(language string, dependencies []string, requestSatisfied func(version string) bool) bool {
	if info.Language != language {
		return false
	}
	if !sameSet(info.Dependencies, dependencies) {
		return false
	}
	return requestSatisfied(info.LanguageVersion)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

func newRandomSuffix() string {
	return uuid.NewString()
}
