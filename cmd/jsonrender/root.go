package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rendis/jsonrender/internal/actions"
	"github.com/rendis/jsonrender/internal/catalog"
	"github.com/rendis/jsonrender/internal/logging"
	"github.com/rendis/jsonrender/internal/metrics"
	"github.com/rendis/jsonrender/internal/textui"
	"github.com/rendis/jsonrender/pkg/session"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Collector
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "jsonrender",
		Short:         "Render and drive json-render element trees from the terminal",
		Long:          `jsonrender validates element trees against a catalog, renders them as plain text, and runs their actions against a data document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Metrics || a.metrics == nil {
				return nil
			}
			return a.metrics.WriteText(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("catalog", "", "Catalog file (JSON or YAML); defaults to the built-in text components")
	flags.String("validation", "", "Catalog validation mode: strict or warn")
	flags.Bool("metrics", false, "Print Prometheus metrics to stderr on exit")

	root.AddCommand(
		newRenderCmd(a),
		newValidateCmd(a),
		newActCmd(a),
		newInspectCmd(a),
		newGraphCmd(a),
		newVersionCmd(),
	)
	return root
}

// configure applies command flags over the layered config.
func (a *app) configure(cmd *cobra.Command) error {
	a.cfg = loadConfig(settingsPath(), os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("catalog") {
		a.cfg.CatalogPath, _ = flags.GetString("catalog")
	}
	if flags.Changed("validation") {
		a.cfg.Validation, _ = flags.GetString("validation")
	}
	if flags.Changed("metrics") {
		a.cfg.Metrics, _ = flags.GetBool("metrics")
	}

	a.logger = logging.New(cmd.ErrOrStderr(), logging.ParseLevel(a.cfg.LogLevel))
	if a.cfg.Metrics {
		a.metrics = metrics.New()
	}
	return nil
}

// catalog loads the configured catalog, or the text component catalog with
// the builtin actions when none is configured.
func (a *app) catalog() (*catalog.Catalog, error) {
	var def catalog.Definition
	if a.cfg.CatalogPath == "" {
		def = textui.Definition()
		defs, err := builtinActionDefs()
		if err != nil {
			return nil, err
		}
		def.Actions = defs
	} else {
		data, err := os.ReadFile(a.cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		def, err = catalog.DecodeDefinition(data, catalog.FormatFromPath(a.cfg.CatalogPath))
		if err != nil {
			return nil, err
		}
	}
	if a.cfg.Validation != "" {
		def.Validation = catalog.ValidationMode(a.cfg.Validation)
	}
	return catalog.New(def)
}

func builtinActionDefs() (map[string]catalog.ActionDef, error) {
	reg := actions.NewRegistry()
	if err := actions.RegisterBuiltins(reg, nil); err != nil {
		return nil, fmt.Errorf("register builtin actions: %w", err)
	}
	defs := make(map[string]catalog.ActionDef, reg.Count())
	for _, info := range reg.List() {
		defs[info.Name] = catalog.ActionDef{Description: info.Description}
	}
	return defs, nil
}

// session builds a session over data with the builtin handlers.
func (a *app) session(data map[string]any, opts ...session.Option) (*session.Session, error) {
	cat, err := a.catalog()
	if err != nil {
		return nil, err
	}
	reg := actions.NewRegistry()
	if err := actions.RegisterBuiltins(reg, a.logger); err != nil {
		return nil, err
	}
	base := []session.Option{
		session.WithLogger(a.logger),
		session.WithCatalog(cat),
		session.WithRegistry(reg),
		session.WithMetrics(a.metrics),
	}
	return session.New(data, append(base, opts...)...), nil
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
