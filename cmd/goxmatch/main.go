// Command goxmatch tests strings against XPath regular expressions and runs
// matches queries over JSON documents.
//
//	goxmatch match "Hello World" "^hello" --flags i
//	goxmatch translate '\p{IsBasicLatin}+'
//	goxmatch query '//book[matches(title, "^A")]' --docs 'data/**/*.json' \
//	    --index sqlite --index-path '**/title=string'
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/config"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	engine     string
	logLevel   string
	logFormat  string
	profile    bool
	metrics    bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "goxmatch",
		Short:         "XPath regular expression matching over document trees",
		Version:       goxmatch.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&a.engine, "engine", "", "regex engine: coregex or re2")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	pf.BoolVar(&a.profile, "profile", false, "log evaluation profiling events")
	pf.BoolVar(&a.metrics, "metrics", false, "collect evaluation metrics and log them on exit")

	root.AddCommand(
		newMatchCmd(a),
		newTranslateCmd(),
		newQueryCmd(a),
		newFunctionsCmd(),
	)
	return root
}

// setup loads the configuration and applies the flags set on the command line.
func (a *app) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(a.configPath, "")
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = a.engine
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("profile") {
		cfg.Profiling = a.profile
	}
	if flags.Changed("metrics") {
		cfg.Metrics = a.metrics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Log, stderr)
	a.registry = prometheus.NewRegistry()
	return nil
}

// logMetrics writes the collected counters and histogram counts at debug
// level. It is a no-op unless metrics are enabled.
func (a *app) logMetrics() {
	if !a.cfg.Metrics {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"metric", mf.GetName()}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				attrs = append(attrs, "count", m.GetHistogram().GetSampleCount(), "sum", m.GetHistogram().GetSampleSum())
			}
			a.logger.Info("metric", attrs...)
		}
	}
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
