package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/coursemark/internal/config"
)

func TestDefault(t *testing.T) {
	assert.NoError(t, config.Default().Validate())
}

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name  string
		src   string
		check func(t *testing.T, cfg config.Config)
		err   string
	}{
		{
			name:  "empty",
			src:   "",
			check: func(t *testing.T, cfg config.Config) { assert.Equal(t, config.Default(), cfg) },
		},
		{
			name: "partial pdf",
			src:  "pdf:\n  page_size: letter\n  page_numbers: false\nworkers: 2\n",
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "letter", cfg.PDF.PageSize)
				assert.False(t, cfg.PDF.PageNumbers)
				assert.Equal(t, config.Default().PDF.FontSize, cfg.PDF.FontSize, "unset keys keep defaults")
				assert.Equal(t, 2, cfg.Workers)
			},
		},
		{
			name: "log and term",
			src:  "log: {level: debug, development: true}\nterm: {width: 40}\n",
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, config.Log{Level: "debug", Development: true}, cfg.Log)
				assert.Equal(t, 40, cfg.Term.Width)
			},
		},
		{name: "unknown key", src: "pdf:\n  paper: a4\n", err: "field paper not found"},
		{name: "bad level", src: "log: {level: loud}\n", err: `log: unknown level "loud"`},
		{name: "bad pdf", src: "pdf: {page_size: scroll}\n", err: `pdf: unknown page size "scroll"`},
		{name: "bad width", src: "term: {width: 0}\n", err: "term: width 0 must be positive"},
		{name: "bad workers", src: "workers: -1\n", err: "workers -1 must be positive"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Decode(strings.NewReader(tc.src))
			if tc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(name, []byte("term: {width: 33}\n"), 0644))

	cfg, path, err := config.Load(name)
	require.NoError(t, err)
	assert.Equal(t, name, path)
	assert.Equal(t, 33, cfg.Term.Width)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("workers: 0\n"), 0644))
	_, _, err = config.Load(bad)
	assert.EqualError(t, err, bad+": workers 0 must be positive")

	_, _, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_discovery(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName),
		[]byte("workers: 7\n"), 0644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, path, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, config.FileName, filepath.Base(path))
}
