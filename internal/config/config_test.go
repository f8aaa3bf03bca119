package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rberrors "github.com/rebind-dev/rebind/internal/errors"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "index.html", cfg.Document)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, "  ", cfg.Render.Indent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)

	var e *rberrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, rberrors.CategoryConfig, e.Category)
	assert.NotEmpty(t, e.Suggestion)
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := Load(dir)
	require.Error(t, err)

	var e *rberrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "cannot parse rebind.json", e.Message)
	assert.Error(t, e.Unwrap())
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"demo"}`), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "index.html", cfg.Document)
	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadDirectiveOverrides(t *testing.T) {
	dir := t.TempDir()
	raw := `{
  "document": "app.html",
  "directives": {"textAttr": "txt", "pathSep": "/"},
  "snapshot": {"store": "s3", "bucket": "b", "prefix": "snaps/"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(raw), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "app.html", cfg.Document)
	assert.Equal(t, "txt", cfg.Directives.TextAttr)
	assert.Equal(t, "/", cfg.Directives.PathSep)
	assert.Empty(t, cfg.Directives.AttrSuffix)
	assert.Equal(t, "s3", cfg.Snapshot.Store)
	assert.Equal(t, "b", cfg.Snapshot.Bucket)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Name = "demo"
	cfg.Server.Address = ":9090"

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, cfg.SaveTo(path))
	assert.Equal(t, path, cfg.Path())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.Name)
	assert.Equal(t, ":9090", loaded.Server.Address)
}

func TestSaveWithoutPath(t *testing.T) {
	err := New().Save()
	require.Error(t, err)
}

func TestFindProjectRootWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"name":"demo"}`), 0644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
}

func TestFindProjectRootStopsInNestedProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"name":"outer"}`), 0644))
	inner := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(inner, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inner, ConfigFileName), []byte(`{"name":"inner"}`), 0644))

	found, err := FindProjectRoot(inner)
	require.NoError(t, err)
	assert.Equal(t, inner, found)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{}"), 0644))
	assert.True(t, Exists(dir))
}
