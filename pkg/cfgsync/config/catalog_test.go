package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogBuiltin(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)

	for _, id := range []string{"bash", "git", "neovim", "vim", "zsh"} {
		assert.Contains(t, catalog, id)
	}
	assert.Equal(t, "Vim", catalog["vim"].Name)
	assert.Equal(t, []string{".gvimrc", ".vim", ".vimrc"}, catalog["vim"].Files)
	assert.Equal(t, "vim", catalog["vim"].ID)

	ids := catalog.IDs()
	assert.IsNonDecreasing(t, ids)
}

func TestLoadCatalogOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vim.yaml"),
		[]byte("name: Vim (custom)\nfiles:\n  - .vimrc\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "htop.yaml"),
		[]byte("name: htop\nfiles:\n  - .config/htop/htoprc\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	catalog, err := LoadCatalog(dir)
	require.NoError(t, err)

	assert.Equal(t, "Vim (custom)", catalog["vim"].Name)
	assert.Equal(t, []string{".vimrc"}, catalog["vim"].Files)
	assert.Equal(t, []string{".config/htop/htoprc"}, catalog["htop"].Files)
	assert.Contains(t, catalog, "git")
}

func TestLoadCatalogErrors(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
	})

	t.Run("no files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yaml"), []byte("name: Empty\n"), 0o600))
		_, err := LoadCatalog(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lists no files")
	})

	t.Run("bad yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [unterminated\n"), 0o600))
		_, err := LoadCatalog(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.yaml")
	})
}

func TestCatalogSelect(t *testing.T) {
	catalog := Catalog{
		"git": {ID: "git", Name: "Git", Files: []string{".gitconfig"}},
		"vim": {ID: "vim", Name: "Vim", Files: []string{".vimrc"}},
		"zsh": {ID: "zsh", Name: "Zsh", Files: []string{".zshrc"}},
	}

	ids := func(apps []Application) []string {
		out := make([]string, 0, len(apps))
		for _, app := range apps {
			out = append(out, app.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		sync   []string
		ignore []string
		want   []string
	}{
		{name: "everything", want: []string{"git", "vim", "zsh"}},
		{name: "sync list", sync: []string{"zsh", "git", "zsh"}, want: []string{"git", "zsh"}},
		{name: "ignore list", ignore: []string{"vim", "unknown"}, want: []string{"git", "zsh"}},
		{name: "both", sync: []string{"git", "vim"}, ignore: []string{"vim"}, want: []string{"git"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := catalog.Select(tt.sync, tt.ignore)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(apps))
		})
	}

	_, err := catalog.Select([]string{"emacs"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown application: emacs")
}
