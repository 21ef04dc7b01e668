package codegen

import (
	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/ir"
)

// Render renders p in format without validating it. The only error is an
// unknown format.
func Render(p *ir.Process, format Format, opts ...Option) (string, error) {
	r, err := NewRenderer(format, opts...)
	if err != nil {
		return "", err
	}
	return r.Render(p), nil
}

// Generate validates p and renders it in format. Validation failures are
// returned as compiler.ValidationErrors carrying every problem found.
func Generate(p *ir.Process, format Format, opts ...Option) (string, error) {
	r, err := NewRenderer(format, opts...)
	if err != nil {
		return "", err
	}
	if errs := compiler.Validate(p); len(errs) > 0 {
		return "", compiler.ValidationErrors(errs)
	}
	return r.Render(p), nil
}
