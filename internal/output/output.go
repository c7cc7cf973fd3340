// Package output writes rendered CFGs to files.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cfgdot/internal/render"
)

// ErrOpen is the error kind for an output file that could not be opened.
var ErrOpen = errors.New("output: cannot open file")

// OpenError reports an output path that could not be opened for writing.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("output: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() []error { return []error{ErrOpen, e.Err} }

// Filename returns "[prefix_]name.ext".
func Filename(prefix, name, ext string) string {
	name = sanitizeFilename(name) + ext
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// WriteDOT renders nodes as the CFG of function fnName and writes it to
// dir/[prefix_]fnName.dot. The document is rendered before the file is
// opened; on open failure nothing is written and an *OpenError is returned.
func WriteDOT(dir, prefix, fnName string, nodes []*render.Node) (string, error) {
	path := filepath.Join(dir, Filename(prefix, fnName, ".dot"))
	return path, WriteFile(path, render.Digraph(fnName, nodes))
}

// WriteFile writes text to path, creating or truncating it.
func WriteFile(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &OpenError{Path: path, Err: err}
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("output: close %s: %w", path, err)
	}
	return nil
}

// maxNameLen bounds the function-name part of a filename, in bytes.
const maxNameLen = 200

// sanitizeFilename keeps a function name from escaping the output directory.
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s := r.Replace(name)
	if len(s) > maxNameLen {
		cut := maxNameLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
