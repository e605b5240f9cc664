package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "image.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf.d"), 0o755))

	docs, err := ListDocuments(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// os.ReadDir returns entries sorted by name.
	assert.Equal(t, "a.PDF", docs[0].Name)
	assert.Equal(t, "a", docs[0].Stem)
	assert.Equal(t, filepath.Join(dir, "a.PDF"), docs[0].Path)
	assert.Equal(t, "b.pdf", docs[1].Name)
}

func TestListDocumentsMissingFolder(t *testing.T) {
	_, err := ListDocuments(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadPrompts(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "01_extract.txt"),
		[]byte("# NAME: key-terms\nList every defined term in the lease.\n"),
		0o644,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "parties.md"),
		[]byte("Identify landlord and tenant.\n"),
		0o644,
	))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.json"), []byte("{}"), 0o644))

	prompts, err := LoadPrompts(dir)
	require.NoError(t, err)
	require.Len(t, prompts, 2)

	withDirective := prompts[0]
	assert.Equal(t, "key-terms", withDirective.Label)
	assert.Equal(t, "List every defined term in the lease.", withDirective.Instruction)
	assert.Equal(t, "01_extract.txt", withDirective.SourceFile)

	plain := prompts[1]
	assert.Equal(t, "parties", plain.Label)
	assert.Equal(t, "Identify landlord and tenant.", plain.Instruction)
}

func TestResolvePrompt(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		filename        string
		wantLabel       string
		wantInstruction string
	}{
		{
			name:            "directive first line",
			content:         "# NAME: summary\nSummarize the lease.",
			filename:        "x.txt",
			wantLabel:       "summary",
			wantInstruction: "Summarize the lease.",
		},
		{
			name:            "directive with extra whitespace",
			content:         "# NAME:   risk-flags  \n\nFlag unusual clauses.",
			filename:        "x.txt",
			wantLabel:       "risk-flags",
			wantInstruction: "Flag unusual clauses.",
		},
		{
			name:            "no directive uses filename stem",
			content:         "Extract rent schedule.",
			filename:        "rent_schedule.txt",
			wantLabel:       "rent_schedule",
			wantInstruction: "Extract rent schedule.",
		},
		{
			name:            "directive not on first line is content",
			content:         "Do things.\n# NAME: late",
			filename:        "tasks.md",
			wantLabel:       "tasks",
			wantInstruction: "Do things.\n# NAME: late",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instruction, label := resolvePrompt(tt.content, tt.filename)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantInstruction, instruction)
		})
	}
}
