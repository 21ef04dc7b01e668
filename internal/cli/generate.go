package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/ir"
	"github.com/roach88/liqgen/internal/processfile"
	"github.com/roach88/liqgen/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Lang   string // c | lua, default from config
	Output string // output file path, stdout when empty
	Watch  bool
	Save   bool // also record the process and its code in the library
}

// GenerateResult is the JSON payload of a successful generate.
type GenerateResult struct {
	Process  string             `json:"process"`
	Language codegen.Format     `json:"language"`
	Steps    int                `json:"steps"`
	Path     string             `json:"path,omitempty"`
	Code     string             `json:"code,omitempty"`
	Legacy   bool               `json:"legacy,omitempty"`
	Warnings []compiler.Warning `json:"warnings,omitempty"`
}

// watchDebounce batches the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <process-file>",
		Short: "Generate controller code from a process document",
		Long: `Validate a process document (.json, .yaml or .yml) and render it as
C or Lua controller code.

Code goes to stdout unless --output names a file. A file without an
extension gets the language's default one (.c or .lua); .txt is also
accepted. With --watch the file is re-rendered every time it changes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Lang, "lang", "l", "", "target language (c|lua), default from config")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-generate when the process file changes")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "record the process and generated code in the library")

	return cmd
}

func runGenerate(ctx context.Context, opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)
	if ctx == nil {
		ctx = context.Background()
	}

	err := generateOnce(ctx, opts, path, formatter)
	if !opts.Watch {
		return err
	}

	logger := opts.log()
	formatter.VerboseLog("Watching %s", path)
	return watchFile(ctx, path, watchDebounce, logger, func() {
		if err := generateOnce(ctx, opts, path, formatter); err != nil {
			logger.Warn("regenerate failed", zap.String("path", path), zap.Error(err))
		}
	})
}

// generateOnce loads, validates and renders path once.
func generateOnce(ctx context.Context, opts *GenerateOptions, path string, formatter *OutputFormatter) error {
	cfg, err := opts.config()
	if err != nil {
		return report(formatter, err)
	}
	logger := opts.log()

	format := cfg.Format()
	if opts.Lang != "" {
		if format, err = codegen.ParseFormat(opts.Lang); err != nil {
			return report(formatter, &cliFailure{code: ErrCodeUsage, exit: ExitCommandError, err: err})
		}
	}

	doc, err := readProcess(path)
	if err != nil {
		return report(formatter, err)
	}
	p := doc.Process
	if doc.Legacy {
		logger.Info("rewrote legacy step tags", zap.String("path", path))
	}

	reg, err := opts.deviceTable()
	if err != nil {
		return report(formatter, err)
	}
	warnings := compiler.Lint(p, reg)
	for _, w := range lintFindings(warnings) {
		fmt.Fprintf(formatter.Diagnostics(), "warning %s\n", w)
	}

	code, err := codegen.Generate(p, format,
		codegen.WithRegistry(reg),
		codegen.WithFaultPolicy(cfg.Fault),
		codegen.WithLogger(logger),
		codegen.WithClock(opts.clock()),
	)
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) {
		return reportValidation(formatter, verrs)
	}
	if err != nil {
		return report(formatter, err)
	}

	result := GenerateResult{
		Process:  p.Name,
		Language: format,
		Steps:    len(p.Steps),
		Legacy:   doc.Legacy,
		Warnings: warnings,
	}

	if opts.Output != "" {
		out := opts.Output
		if filepath.Dir(out) == "." && cfg.Output.Dir != "" {
			out = filepath.Join(cfg.Output.Dir, out)
		}
		written, err := processfile.WriteCode(out, format, code)
		if err != nil {
			return report(formatter, &cliFailure{code: compiler.ErrCodeWriteFailed, exit: ExitCommandError, err: err})
		}
		result.Path = written
		logger.Debug("wrote generated code", zap.String("path", written), zap.Int("bytes", len(code)))
	}

	if opts.Save {
		if err := saveToLibrary(ctx, opts.RootOptions, p, format, code); err != nil {
			return report(formatter, err)
		}
	}

	switch {
	case formatter.Format == "json":
		if result.Path == "" {
			result.Code = code
		}
		return formatter.Success(result)
	case result.Path == "":
		_, err := fmt.Fprint(formatter.Writer, code)
		return err
	default:
		fmt.Fprintf(formatter.Writer, "✓ Generated %s for %q (%d step(s)) → %s\n",
			format, codegen.DisplayName(p.Name), result.Steps, result.Path)
		return nil
	}
}

// saveToLibrary records p and its generated code.
func saveToLibrary(ctx context.Context, opts *RootOptions, p *ir.Process, format codegen.Format, code string) error {
	lib, err := opts.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	v, inserted, err := lib.SaveProcess(ctx, p)
	if err != nil {
		return &cliFailure{code: ErrCodeLibrary, exit: ExitCommandError, err: err}
	}
	if _, err := lib.SaveArtifact(ctx, v.ID, string(format), code); err != nil {
		return &cliFailure{code: ErrCodeLibrary, exit: ExitCommandError, err: err}
	}
	opts.log().Debug("saved to library",
		zap.String("process", v.Name),
		zap.String("id", v.ID),
		zap.Bool("new_version", inserted))
	return nil
}

// openLibrary opens the library database named by the configuration.
func (o *RootOptions) openLibrary() (*store.Store, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	path := cfg.Library.Path
	if o.LibraryPath != "" {
		path = o.LibraryPath
	}
	lib, err := store.Open(path)
	if err != nil {
		return nil, &cliFailure{code: ErrCodeLibrary, exit: ExitCommandError, err: err}
	}
	return lib, nil
}
