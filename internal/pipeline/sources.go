package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
	"github.com/jonathanvkeller/lease-analysis/internal/pdf"
)

// nameDirective marks a prompt file's first line as an explicit output label.
const nameDirective = "# NAME:"

// ListDocuments enumerates PDF files in a directory, in listing order.
func ListDocuments(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("list lease folder", err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !pdf.IsPDF(entry.Name()) {
			continue
		}

		name := entry.Name()
		docs = append(docs, domain.Document{
			Name: name,
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
		})
	}

	return docs, nil
}

// LoadPrompts enumerates text/markdown prompt files in a directory and
// resolves each to an instruction + output label. A "# NAME:" first line
// names the label explicitly and is stripped from the instruction; otherwise
// the filename stem is the label and the full content the instruction.
func LoadPrompts(dir string) ([]domain.Prompt, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("list prompt folder", err)
	}

	var prompts []domain.Prompt
	for _, entry := range entries {
		if entry.IsDir() || !isPromptFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.IOError("read prompt file "+entry.Name(), err)
		}

		instruction, label := resolvePrompt(string(data), entry.Name())
		prompts = append(prompts, domain.Prompt{
			Label:       label,
			Instruction: instruction,
			SourceFile:  entry.Name(),
		})
	}

	return prompts, nil
}

// resolvePrompt extracts the output label and instruction text from a prompt
// file's content.
func resolvePrompt(content, filename string) (instruction, label string) {
	content = strings.TrimSpace(content)
	lines := strings.Split(content, "\n")

	if len(lines) > 0 && strings.HasPrefix(lines[0], nameDirective) {
		label = strings.TrimSpace(strings.TrimPrefix(lines[0], nameDirective))
		instruction = strings.TrimSpace(strings.Join(lines[1:], "\n"))
		return instruction, label
	}

	label = strings.TrimSuffix(filename, filepath.Ext(filename))
	return content, label
}

func isPromptFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".md"
}
