// Package postprocess adjusts a materialized project after its files have been
// copied: it strips wrapper blocks that belong to disabled features and writes
// secrets files for enabled ones.
package postprocess

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nullslate/nullslate/pkg/utils/fileutils"
)

// Wrapper names a component that wraps part of a file. Import, Open and Close
// are whole lines, matched exactly.
type Wrapper struct {
	File   string
	Import string
	Open   string
	Close  string
}

// StripWrapper removes the import line and both markers of w from the file
// below root, keeping whatever the markers enclosed. A missing file is not an
// error. It reports whether the file changed.
func StripWrapper(root string, w Wrapper) (bool, error) {
	path := filepath.Join(root, filepath.FromSlash(w.File))

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, removed := stripLines(string(data), w.Import, w.Open, w.Close)
	if removed == 0 {
		return false, nil
	}

	err = fileutils.AtomicEdit(path, info.Mode().Perm(), func(wr io.Writer) error {
		_, err := io.WriteString(wr, out)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("rewriting %s: %w", w.File, err)
	}

	return true, nil
}

// stripLines drops every line equal to one of targets. Line endings of the
// remaining lines are untouched.
func stripLines(content string, targets ...string) (string, int) {
	var b strings.Builder
	b.Grow(len(content))

	removed := 0
	for line := range strings.SplitAfterSeq(content, "\n") {
		if matchesAny(line, targets) {
			removed++
			continue
		}
		b.WriteString(line)
	}

	return b.String(), removed
}

func matchesAny(line string, targets []string) bool {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	for _, t := range targets {
		if t != "" && line == t {
			return true
		}
	}
	return false
}
