package processfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/ir"
)

// Kind is the encoding of a process document.
type Kind string

const (
	KindJSON Kind = "json"
	KindYAML Kind = "yaml"
)

// KindFromPath picks the document kind from a file extension.
func KindFromPath(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return KindJSON, nil
	case ".yaml", ".yml":
		return KindYAML, nil
	default:
		return "", fmt.Errorf("unsupported process file %s: expected .json, .yaml or .yml", path)
	}
}

// Document is a decoded process plus what was learned while decoding it.
type Document struct {
	Process *ir.Process
	Legacy  bool // tags or option values were rewritten from the legacy format
}

// Load reads and decodes the process document at path.
func Load(path string) (*Document, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open process file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode reads one process document of the given kind.
func Decode(r io.Reader, kind Kind) (*Document, error) {
	raw, err := readGeneric(r, kind)
	if err != nil {
		return nil, err
	}

	legacy := normalizeLegacy(raw)
	if err := ValidateDocument(raw); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode document: %w", err)
	}

	var p ir.Process
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p.Steps == nil {
		p.Steps = ir.StepList{}
	}
	return &Document{Process: &p, Legacy: legacy}, nil
}

// readGeneric decodes the document into generic values with JSON numbers
// kept exact.
func readGeneric(r io.Reader, kind Kind) (any, error) {
	switch kind {
	case KindJSON:
		doc, err := jsonschema.UnmarshalJSON(r)
		if err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return doc, nil

	case KindYAML:
		var v any
		if err := yaml.NewDecoder(r).Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("parse YAML: empty document")
			}
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		return jsonschema.UnmarshalJSON(bytes.NewReader(data))

	default:
		return nil, fmt.Errorf("unsupported document kind %q", kind)
	}
}

// Encode writes p as indented JSON.
func Encode(w io.Writer, p *ir.Process) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// Save writes p to path as a JSON document, stamping created_time from now
// and version with the current document version. p itself is not modified.
func Save(path string, p *ir.Process, now func() time.Time) error {
	doc := *p
	doc.CreatedTime = now().Format(time.RFC3339)
	doc.Version = ir.DocumentVersion
	if doc.Steps == nil {
		doc.Steps = ir.StepList{}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, &doc); err != nil {
		return fmt.Errorf("encode process: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteCode writes generated code to path, which must carry an extension
// allowed for format; a missing extension gets the default one. It returns
// the path actually written.
func WriteCode(path string, format codegen.Format, code string) (string, error) {
	out, err := format.OutputPath(path)
	if err != nil {
		return "", err
	}
	if err := writeFile(out, []byte(code)); err != nil {
		return "", err
	}
	return out, nil
}

// writeFile writes via a temp file in the same directory and renames it
// into place, so readers never see a partial file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
