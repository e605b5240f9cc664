package aggregate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Deduplicate removes duplicate consecutive bullet lines within each "## "
// section of a stream. Aggregate files are already lowercased and sorted, so
// adjacent comparison is enough.
func Deduplicate(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lastBullet string
	first := true

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "## "):
			lastBullet = ""
		case strings.HasPrefix(line, "- "):
			if line == lastBullet {
				continue
			}
			lastBullet = line
		}

		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		first = false
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read aggregate content: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// DeduplicateFile rewrites an aggregate file in place, replacing it
// atomically through a sibling temp file.
func DeduplicateFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open aggregate file: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if err := Deduplicate(in, tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace aggregate file: %w", err)
	}

	return nil
}
