package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/compiler"
	"github.com/roach88/liqgen/internal/processfile"
	"github.com/roach88/liqgen/internal/store"
)

// LibraryEntry is the JSON view of one stored process version.
type LibraryEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentHash string `json:"content_hash"`
	Seq         int64  `json:"seq"`
	Steps       int    `json:"steps"`
	Versions    int    `json:"versions,omitempty"`
	New         bool   `json:"new,omitempty"`
}

// NewLibraryCommand creates the library command and its subcommands.
func NewLibraryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the process library",
		Long: `Store process versions and the code generated from them in a local
SQLite database. Versions are content-addressed: adding an unchanged
process is a no-op, and re-adding an older version makes it the latest.`,
	}

	cmd.PersistentFlags().StringVar(&rootOpts.LibraryPath, "db", "", "library database path (default library.path from config)")

	cmd.AddCommand(newLibraryAddCommand(rootOpts))
	cmd.AddCommand(newLibraryListCommand(rootOpts))
	cmd.AddCommand(newLibraryHistoryCommand(rootOpts))
	cmd.AddCommand(newLibraryGenerateCommand(rootOpts))
	cmd.AddCommand(newLibraryExportCommand(rootOpts))

	return cmd
}

func newLibraryAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <process-file>",
		Short:         "Validate a process document and store it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.newFormatter(cmd)

			doc, err := readProcess(args[0])
			if err != nil {
				return report(formatter, err)
			}
			if errs := compiler.Validate(doc.Process); len(errs) > 0 {
				return reportValidation(formatter, errs)
			}

			return withLibrary(opts, formatter, func(lib *store.Store) error {
				v, inserted, err := lib.SaveProcess(commandContext(cmd), doc.Process)
				if err != nil {
					return libraryFailure(err)
				}
				entry := entryFromVersion(v)
				entry.New = inserted

				if formatter.Format == "json" {
					return formatter.Success(entry)
				}
				state := "unchanged"
				if inserted {
					state = "new version"
				}
				fmt.Fprintf(formatter.Writer, "✓ %s %q (%s) id=%s\n", state, codegen.DisplayName(v.Name), shortHash(v.ContentHash), v.ID)
				return nil
			})
		},
	}
}

func newLibraryListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored processes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.newFormatter(cmd)

			return withLibrary(opts, formatter, func(lib *store.Store) error {
				summaries, err := lib.ListProcesses(commandContext(cmd))
				if err != nil {
					return libraryFailure(err)
				}

				entries := make([]LibraryEntry, 0, len(summaries))
				for _, s := range summaries {
					entries = append(entries, LibraryEntry{
						ID:          s.LatestID,
						Name:        s.Name,
						ContentHash: s.ContentHash,
						Seq:         s.Seq,
						Versions:    s.Versions,
					})
				}
				if formatter.Format == "json" {
					return formatter.Success(entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(formatter.Writer, "library is empty")
					return nil
				}
				tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tVERSIONS\tHASH\tID")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", codegen.DisplayName(e.Name), e.Versions, shortHash(e.ContentHash), e.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newLibraryHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <name>",
		Short:         "List every stored version of a process, oldest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.newFormatter(cmd)
			name := args[0]

			return withLibrary(opts, formatter, func(lib *store.Store) error {
				versions, err := lib.History(commandContext(cmd), name)
				if err != nil {
					return libraryFailure(err)
				}
				if len(versions) == 0 {
					return notInLibrary(name)
				}

				entries := make([]LibraryEntry, 0, len(versions))
				for _, v := range versions {
					entries = append(entries, entryFromVersion(v))
				}
				if formatter.Format == "json" {
					return formatter.Success(entries)
				}
				tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "SEQ\tSTEPS\tHASH\tID")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", e.Seq, e.Steps, shortHash(e.ContentHash), e.ID)
				}
				return tw.Flush()
			})
		},
	}
}

func newLibraryGenerateCommand(opts *RootOptions) *cobra.Command {
	var id, lang, output string

	cmd := &cobra.Command{
		Use:   "generate <name>",
		Short: "Generate code from a stored process",
		Long: `Generate code from the latest stored version of a process, or from the
version named by --id, and record the code next to that version.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.newFormatter(cmd)
			cfg, err := opts.config()
			if err != nil {
				return report(formatter, err)
			}
			format := cfg.Format()
			if lang != "" {
				if format, err = codegen.ParseFormat(lang); err != nil {
					return report(formatter, &cliFailure{code: ErrCodeUsage, exit: ExitCommandError, err: err})
				}
			}
			reg, err := opts.deviceTable()
			if err != nil {
				return report(formatter, err)
			}

			return withLibrary(opts, formatter, func(lib *store.Store) error {
				ctx := commandContext(cmd)
				v, err := lookupVersion(ctx, lib, args[0], id)
				if err != nil {
					return err
				}

				code, err := codegen.Generate(v.Process, format,
					codegen.WithRegistry(reg),
					codegen.WithFaultPolicy(cfg.Fault),
					codegen.WithLogger(opts.log()),
					codegen.WithClock(opts.clock()),
				)
				var verrs compiler.ValidationErrors
				if errors.As(err, &verrs) {
					return reportValidation(formatter, verrs)
				}
				if err != nil {
					return err
				}

				a, err := lib.SaveArtifact(ctx, v.ID, string(format), code)
				if err != nil {
					return libraryFailure(err)
				}
				opts.log().Debug("recorded artifact",
					zap.String("process", v.Name),
					zap.String("format", a.Format),
					zap.String("code_hash", a.CodeHash))

				result := GenerateResult{Process: v.Name, Language: format, Steps: len(v.Process.Steps)}
				if output != "" {
					written, err := processfile.WriteCode(output, format, code)
					if err != nil {
						return &cliFailure{code: compiler.ErrCodeWriteFailed, exit: ExitCommandError, err: err}
					}
					result.Path = written
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
						format, codegen.DisplayName(v.Name), result.Steps, result.Path)
					return nil
				}
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "version ID (default latest)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (c|lua), default from config")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")

	return cmd
}

func newLibraryExportCommand(opts *RootOptions) *cobra.Command {
	var id, output string

	cmd := &cobra.Command{
		Use:           "export <name>",
		Short:         "Write a stored process back out as a JSON document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.newFormatter(cmd)

			return withLibrary(opts, formatter, func(lib *store.Store) error {
				v, err := lookupVersion(commandContext(cmd), lib, args[0], id)
				if err != nil {
					return err
				}
				if output == "" {
					return processfile.Encode(formatter.Writer, v.Process)
				}
				if err := processfile.Save(output, v.Process, opts.clock()); err != nil {
					return &cliFailure{code: compiler.ErrCodeWriteFailed, exit: ExitCommandError, err: err}
				}
				if formatter.Format == "json" {
					return formatter.Success(map[string]string{"id": v.ID, "path": output})
				}
				fmt.Fprintf(formatter.Writer, "✓ Exported %q → %s\n", codegen.DisplayName(v.Name), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "version ID (default latest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default stdout)")

	return cmd
}

// withLibrary opens the library, runs fn and reports whatever it returns.
// Errors that fn already reported as an ExitError pass through untouched.
func withLibrary(opts *RootOptions, formatter *OutputFormatter, fn func(*store.Store) error) error {
	lib, err := opts.openLibrary()
	if err != nil {
		return report(formatter, err)
	}
	defer lib.Close()

	err = fn(lib)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return report(formatter, err)
}

// lookupVersion finds the version with the given ID, or the latest version
// of name when id is empty.
func lookupVersion(ctx context.Context, lib *store.Store, name, id string) (store.ProcessVersion, error) {
	var (
		v   store.ProcessVersion
		err error
	)
	if id != "" {
		v, err = lib.ProcessByID(ctx, id)
		if err == nil && v.Name != name {
			return v, &cliFailure{
				code: ErrCodeUsage,
				exit: ExitCommandError,
				err:  fmt.Errorf("version %s belongs to %q, not %q", id, v.Name, name),
			}
		}
	} else {
		v, err = lib.LatestProcess(ctx, name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return v, notInLibrary(name)
	}
	if err != nil {
		return v, libraryFailure(err)
	}
	return v, nil
}

func notInLibrary(name string) error {
	return &cliFailure{
		code: compiler.ErrCodeNotFound,
		exit: ExitCommandError,
		err:  fmt.Errorf("process %q not found in library", name),
	}
}

func libraryFailure(err error) error {
	return &cliFailure{code: ErrCodeLibrary, exit: ExitCommandError, err: err}
}

func entryFromVersion(v store.ProcessVersion) LibraryEntry {
	e := LibraryEntry{ID: v.ID, Name: v.Name, ContentHash: v.ContentHash, Seq: v.Seq}
	if v.Process != nil {
		e.Steps = len(v.Process.Steps)
	}
	return e
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
