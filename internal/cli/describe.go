package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/ir"
)

// DescribedStep is one line of a step listing.
type DescribedStep struct {
	Index       string      `json:"index"` // "3", or "3.2" inside a loop
	Depth       int         `json:"depth"`
	Type        ir.StepKind `json:"type"`
	Description string      `json:"description"`
}

// ProcessDescription is the JSON payload of describe.
type ProcessDescription struct {
	Name        string          `json:"name"`
	Function    string          `json:"function"`
	Description string          `json:"description,omitempty"`
	Steps       []DescribedStep `json:"steps"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "describe <process-file>",
		Short:         "List the steps of a process",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd)
		},
	}
}

func runDescribe(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	doc, err := readProcess(path)
	if err != nil {
		return report(formatter, err)
	}
	desc := describeProcess(doc.Process)

	if formatter.Format == "json" {
		return formatter.Success(desc)
	}

	fmt.Fprintf(formatter.Writer, "%s (%s)\n", codegen.DisplayName(desc.Name), desc.Function)
	if desc.Description != "" {
		for _, l := range strings.Split(desc.Description, "\n") {
			fmt.Fprintf(formatter.Writer, "  %s\n", l)
		}
	}
	fmt.Fprintln(formatter.Writer)
	for _, s := range desc.Steps {
		fmt.Fprintf(formatter.Writer, "%s%s. %s\n", strings.Repeat("  ", s.Depth), s.Index, s.Description)
	}
	return nil
}

// describeProcess lists every step depth first, numbering loop bodies
// relative to their loop.
func describeProcess(p *ir.Process) ProcessDescription {
	desc := ProcessDescription{
		Name:        p.Name,
		Function:    codegen.FunctionName(p.Name),
		Description: strings.TrimSpace(p.Description),
		Steps:       []DescribedStep{},
	}
	var walk func(steps ir.StepList, prefix string, depth int)
	walk = func(steps ir.StepList, prefix string, depth int) {
		for i, s := range steps {
			index := fmt.Sprintf("%s%d", prefix, i+1)
			desc.Steps = append(desc.Steps, DescribedStep{
				Index:       index,
				Depth:       depth,
				Type:        s.Kind(),
				Description: ir.Describe(s),
			})
			if l, ok := s.(ir.Loop); ok {
				walk(l.Steps, index+".", depth+1)
			}
		}
	}
	walk(p.Steps, "", 0)
	return desc
}
