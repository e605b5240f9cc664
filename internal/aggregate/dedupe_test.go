package aggregate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicateRemovesConsecutiveDuplicates(t *testing.T) {
	in := strings.Join([]string{
		"## terms",
		"",
		"- rent due monthly",
		"- rent due monthly",
		"- security deposit held",
		"",
	}, "\n")

	var out strings.Builder
	require.NoError(t, Deduplicate(strings.NewReader(in), &out))

	want := strings.Join([]string{
		"## terms",
		"",
		"- rent due monthly",
		"- security deposit held",
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestDeduplicateResetsAtSectionBoundary(t *testing.T) {
	in := strings.Join([]string{
		"## a",
		"- shared bullet",
		"## b",
		"- shared bullet",
	}, "\n")

	var out strings.Builder
	require.NoError(t, Deduplicate(strings.NewReader(in), &out))

	// The same bullet in a different section is kept.
	assert.Equal(t, 2, strings.Count(out.String(), "- shared bullet"))
}

func TestDeduplicateKeepsNonConsecutiveDuplicates(t *testing.T) {
	in := strings.Join([]string{
		"## a",
		"- x",
		"- y",
		"- x",
	}, "\n")

	var out strings.Builder
	require.NoError(t, Deduplicate(strings.NewReader(in), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "- x"))
}

func TestDeduplicateFileReplacesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.md")
	require.NoError(t, os.WriteFile(path,
		[]byte("## terms\n- dup\n- dup\n"), 0o644))

	require.NoError(t, DeduplicateFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## terms\n- dup\n", string(data))

	// No temp file left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeduplicateFileMissing(t *testing.T) {
	err := DeduplicateFile(filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}
