package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/logging"
	"github.com/stigoleg/stayactive/internal/topology"
)

// topologyReport is the machine-readable monitors output.
type topologyReport struct {
	Source   string          `json:"source" yaml:"source"`
	Sources  []string        `json:"sources" yaml:"sources"`
	Monitors []geometry.Rect `json:"monitors" yaml:"monitors"`
}

func newMonitorsCommand(v *viper.Viper, deps Deps) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "Print the monitor layout as stayactive sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel).WithPrefix("topology")
			resolver := deps.NewResolver(deps.Session(), cfg, logger)

			monitors, source, err := resolver.Resolve(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w\n\nTried: %v", err, resolver.Sources())
			}
			return writeReport(cmd.OutOrStdout(), output, topologyReport{
				Source:   source,
				Sources:  resolver.Sources(),
				Monitors: monitors,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func writeReport(w io.Writer, format string, r topologyReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(r)
	case "text", "":
		fmt.Fprintf(w, "source: %s\n", r.Source)
		for i, m := range r.Monitors {
			fmt.Fprintf(w, "  %d: %s\n", i, m)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

func newMutterHelperCommand() *cobra.Command {
	return &cobra.Command{
		Use:    MutterHelperCommand,
		Hidden: true,
		Short:  "Internal helper: print GNOME logical monitors as JSON",
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monitors, err := topology.QueryMutter(cmd.Context())
			if err != nil {
				return err
			}
			return topology.WriteMutterJSON(cmd.OutOrStdout(), monitors)
		},
	}
}
