// Package names normalises model identifiers, paths and artifact file names.
package names

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ChainExt is the extension of generated chain artifacts.
const ChainExt = ".chain"

// en-dash and its common mojibake when a UTF-8 table was read as cp1252.
var dashReplacer = strings.NewReplacer("–", "-", "â€“", "-")

// Normalize applies NFKC normalisation and folds en-dashes to hyphens.
func Normalize(s string) string {
	return dashReplacer.Replace(norm.NFKC.String(s))
}

// ForwardSlashes normalises a Windows path for the 12d file boxes that
// expect forward slashes.
func ForwardSlashes(p string) string {
	return strings.ReplaceAll(Normalize(p), `\`, "/")
}

// ChainFile returns the artifact file name for a model.
func ChainFile(model string) string {
	return model + ChainExt
}

// CheckFileName reports an error when name cannot be used as a single file
// name inside an output directory.
func CheckFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("empty file name")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("file name %q contains a path separator", name)
	case name == "." || name == "..":
		return fmt.Errorf("file name %q refers to a directory", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("file name %q contains a NUL byte", name)
	}
	return nil
}

// Base returns the last element of a Windows or POSIX path.
func Base(p string) string {
	p = strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// IsBlank reports whether a table cell carries no model identifier. Empty
// cells exported through dataframes arrive as "nan".
func IsBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}
