package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/liqgen/internal/ir"
)

// marshalProcess converts a process to JSON TEXT for storage.
// HTML escaping is disabled so stored documents match saved process files.
func marshalProcess(p *ir.Process) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("marshal process: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalProcess parses stored JSON TEXT back into a process.
func unmarshalProcess(data string) (*ir.Process, error) {
	var p ir.Process
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("unmarshal process: %w", err)
	}
	if p.Steps == nil {
		p.Steps = ir.StepList{}
	}
	return &p, nil
}
