package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/liqgen/internal/devices"
)

// NewDevicesCommand creates the devices command.
func NewDevicesCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Print the effective device table",
		Long: `Print the device table used to resolve step identifiers: the builtin
instrument table merged with the devices section of the config file.
Names not in the table are emitted literally.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(rootOpts, devices.Kind(kind), cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list devices of this kind (valve|pump|motor)")

	return cmd
}

func runDevices(opts *RootOptions, kind devices.Kind, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	if kind != "" && !devices.ValidKinds[kind] {
		return report(formatter, &cliFailure{
			code: ErrCodeUsage,
			exit: ExitCommandError,
			err:  fmt.Errorf("invalid kind %q: must be valve, pump or motor", kind),
		})
	}

	reg, err := opts.deviceTable()
	if err != nil {
		return report(formatter, err)
	}

	list := []devices.Device{}
	for _, d := range reg.All() {
		if kind == "" || d.Kind == kind {
			list = append(list, d)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tC TOKEN\tLUA HANDLE\tFAULT MODULE\tALIASES")
	for _, d := range list {
		fault := d.FaultModule
		if fault == "" {
			fault = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Name, d.Kind, d.CToken, d.LuaHandle, fault, strings.Join(d.Aliases, ","))
	}
	return tw.Flush()
}
