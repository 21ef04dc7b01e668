package codegen

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the target language.
type Format string

const (
	FormatC   Format = "c"
	FormatLua Format = "lua"
)

// ValidFormats lists the supported formats.
var ValidFormats = []Format{FormatC, FormatLua}

// ParseFormat parses a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatC:
		return FormatC, nil
	case FormatLua:
		return FormatLua, nil
	default:
		return "", fmt.Errorf("invalid language %q: must be one of %v", s, ValidFormats)
	}
}

// Extensions returns the file extensions accepted for output in this format.
// The first one is the default.
func (f Format) Extensions() []string {
	switch f {
	case FormatC:
		return []string{".c", ".txt"}
	case FormatLua:
		return []string{".lua", ".txt"}
	default:
		return nil
	}
}

// OutputPath checks that path has an extension allowed for f, appending the
// default extension when path has none.
func (f Format) OutputPath(path string) (string, error) {
	exts := f.Extensions()
	if len(exts) == 0 {
		return "", fmt.Errorf("invalid language %q", f)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return path + exts[0], nil
	}
	for _, e := range exts {
		if ext == e {
			return path, nil
		}
	}
	return "", fmt.Errorf("output file %s: extension must be one of %v for %s", path, exts, f)
}
