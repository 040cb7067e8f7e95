package language

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ReturnsUnimplementedForUnknownLanguage(t *testing.T) {
	r := NewRegistry()
	a := r.Get("rust")
	res, err := a.Run(context.Background(), InstalledHook{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusUnimplemented, res.Status)
}

func TestRegistry_ResolvesConcreteAdapters(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"system", "script", "fail", "pygrep", "docker", "docker_image"} {
		assert.Equal(t, name, r.Get(name).Name())
	}
}

func TestSystemAdapter_RunSuccess(t *testing.T) {
	a := NewSystemAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: "true"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestSystemAdapter_RunFailure(t *testing.T) {
	a := NewSystemAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: "false"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestFailAdapter_FailsWithEntryMessage(t *testing.T) {
	a := NewFailAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: "do not commit TODOs"}, []string{"a.go"}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, string(res.Output), "do not commit TODOs")
}

func TestFailAdapter_NoFilesIsNoFiles(t *testing.T) {
	a := NewFailAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: "nope"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusNoFiles, res.Status)
}

func TestPygrepAdapter_MatchFailsByDefault(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(f, []byte("import pdb; pdb.set_trace()\n"), 0o644))

	a := NewPygrepAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: `pdb\.set_trace`}, []string{f}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestPygrepAdapter_NegateFlipsOutcome(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(f, []byte("print('clean')\n"), 0o644))

	a := NewPygrepAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: `pdb\.set_trace`, Args: []string{"--negate"}}, []string{f}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestPygrepAdapter_IgnoreCase(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(f, []byte("DEBUG=True\n"), 0o644))

	a := NewPygrepAdapter()
	res, err := a.Run(context.Background(), InstalledHook{Entry: `debug=true`, Args: []string{"-i"}}, []string{f}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Status) // match found, and negate is false -> fail (a "found bad pattern" hook)
}
