package pdf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

// IsPDF reports whether a path has a PDF extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ValidatePath checks that a document path exists, is a regular file, and
// looks like a PDF.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return domain.ValidationError("document file not found", err)
	}
	if err != nil {
		return domain.IOError("stat document file", err)
	}

	if info.IsDir() {
		return domain.ValidationError("document path is a directory", nil)
	}

	if !IsPDF(path) {
		return domain.ValidationError("document is not a PDF", nil)
	}

	return nil
}
