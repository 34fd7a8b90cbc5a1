package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipview/internal/classify"
	"go.klb.dev/clipview/internal/settings"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clipview dev\n", out)
}

func TestClassifyArgs(t *testing.T) {
	out, err := execute(t, "", "classify", "--no-color", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a␣b\n", out)
}

func TestClassifyStdinJSON(t *testing.T) {
	out, err := execute(t, "x\r\ny\t", "classify", "--json")
	require.NoError(t, err)

	var runs []classify.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	assert.Equal(t, classify.Classify("x\r\ny\t"), runs)
}

func TestClassifyEmptyJSON(t *testing.T) {
	out, err := execute(t, "", "classify", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestSettingsSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.FileName)

	_, err := execute(t, "", "settings", "--settings", path, "--set", "topmost=true", "--set", "window.width=640")
	require.NoError(t, err)

	got, err := settings.NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, got.Topmost)
	assert.Equal(t, 640, got.Window.Width)

	out, err := execute(t, "", "settings", "--settings", path)
	require.NoError(t, err)
	assert.Contains(t, out, "topmost:")
	assert.Contains(t, out, "true")
	assert.Contains(t, out, path)

	out, err = execute(t, "", "settings", "--settings", path, "--json")
	require.NoError(t, err)
	var s settings.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, got, s)
}

func TestSettingsRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), settings.FileName)

	_, err := execute(t, "", "settings", "--settings", path, "--set", "topmost")
	assert.ErrorContains(t, err, "key=value")

	_, err = execute(t, "", "settings", "--settings", path, "--set", "opacity=0.5")
	assert.ErrorContains(t, err, "unknown key")

	_, err = execute(t, "", "settings", "--settings", path, "--log-level", "loud")
	assert.Error(t, err)
}
