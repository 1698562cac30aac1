package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestHelp_EndsWithSingleNewline(t *testing.T) {
	out := captureStdout(t, help)

	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"), "help text ends with a blank line")
	for _, cmd := range []string{"generate", "validate", "diff"} {
		assert.Contains(t, out, "schema-registry "+cmd)
	}
}

func TestGenerateThenDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry", "tables.json")

	n, err := generate(path)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	changes, err := diff(path)
	require.NoError(t, err)
	assert.Empty(t, changes)

	captureStdout(t, func() {
		assert.NoError(t, validate(path))
	})
}
