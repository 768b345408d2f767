// Package cli wires configuration, backend selection, topology and the
// scheduler into the stayactive command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stigoleg/stayactive/internal/config"
	"github.com/stigoleg/stayactive/internal/ui"
)

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, version string, deps Deps, args []string) int {
	cmd := NewRootCommand(version, deps)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatError(err))
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string, deps Deps) *cobra.Command {
	deps = deps.withDefaults()
	v := config.New()

	root := &cobra.Command{
		Use:   "stayactive",
		Short: "Keep the session active by simulating small pointer movements and modifier key presses",
		Long: `stayactive keeps a Linux desktop session from going idle. Every interval it
moves the pointer along a short randomized path that returns near where it
started, and taps a modifier key (Shift, Ctrl or Alt).

On Wayland it drives a virtual device through /dev/uinput; on X11, or when
uinput is unavailable, it uses the XTEST extension (also through XWayland).`,
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, v, deps)
		},
	}
	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	root.PersistentFlags().String(config.FlagConfig, "", "config file (default $XDG_CONFIG_HOME/stayactive/config.yaml)")
	config.RegisterFlags(v, root.Flags())
	root.MarkFlagsMutuallyExclusive(config.FlagMouseOnly, config.FlagKeyOnly)

	root.AddCommand(newMonitorsCommand(v, deps))
	root.AddCommand(newMutterHelperCommand())
	return root
}
