// Package cmd provides the CLI commands for revpulse.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"revpulse/internal/app"
	"revpulse/internal/config"
	"revpulse/internal/infrastructure"
	"revpulse/pkg/contracts/domain"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	mode       string
	dir        string
	verbose    bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "revpulse",
		Short: "Revenue and session reports from point-of-sale exports",
		Long: `revpulse merges transaction exports from several locations and months
into one dataset and reports revenue and session counts over it.

Examples:
  revpulse report
  revpulse report --location Aylesbury --period June
  revpulse export --format xlsx --output june.xlsx --period June
  revpulse sources --dir ./exports
  revpulse serve`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default searches revpulse.yaml, config.yaml, configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.mode, "mode", "", "source mode: static or scan")
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "directory to scan for exports (implies --mode scan)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newReportCmd(opts),
		newExportCmd(opts),
		newSourcesCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig applies the persistent flags on top of the loaded configuration
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	if o.dir != "" {
		cfg.Sources.Mode = config.ModeScan
		cfg.Sources.ScanDir = o.dir
	}
	if o.mode != "" {
		cfg.Sources.Mode = o.mode
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp builds an application for a one-shot command. Logs go to stderr
// and stay at warn level unless --verbose is set.
func (o *globalOptions) newApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if !o.verbose {
		cfg.Logging.Level = "warn"
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return app.New(cfg, logger)
}

// closeApp flushes telemetry of a one-shot application
func closeApp(a *app.Application) {
	_ = a.Close(context.Background())
}

// filterFlags holds the repeatable filter flags of report and export
type filterFlags struct {
	locations []string
	periods   []string
	items     []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.locations, "location", nil, "restrict to a location (repeatable)")
	cmd.Flags().StringArrayVar(&f.periods, "period", nil, "restrict to a period, e.g. June (repeatable)")
	cmd.Flags().StringArrayVar(&f.items, "item", nil, "restrict to an item (repeatable)")
}

// state converts the flags to a filter. An unset flag leaves its dimension
// unrestricted; a flag given only blank values selects nothing.
func (f *filterFlags) state(cmd *cobra.Command) domain.FilterState {
	pick := func(name string, values []string) []string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return domain.FilterState{
		Locations: pick("location", f.locations),
		Periods:   pick("period", f.periods),
		Items:     pick("item", f.items),
	}
}
