package main

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/store"
	"github.com/sandrolain/goxmatch/pkg/types"
)

func newMatchCmd(a *app) *cobra.Command {
	var flags string
	cmd := &cobra.Command{
		Use:   "match <subject> <pattern>",
		Short: "Test a string against an XPath regular expression",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := goxmatch.Matches(args[0], args[1], flags, a.cfg.EvalOptions(a.logger, a.registry)...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			a.logMetrics()
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "regex flags (s, m, i, x, q)")
	return cmd
}

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <pattern>",
		Short: "Print the host-engine form of an XPath regular expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := goxmatch.Translate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), host)
			return nil
		},
	}
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the built-in functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, sig := range evaluator.Builtins() {
				fmt.Fprintln(cmd.OutOrStdout(), sig.String())
			}
			return nil
		},
	}
}

// record is one output line of the query command.
type record struct {
	Query string      `json:"query,omitempty"`
	Doc   string      `json:"doc,omitempty"`
	Path  string      `json:"path,omitempty"`
	Value interface{} `json:"value"`
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		docsGlob   string
		driver     string
		dsn        string
		indexPaths map[string]string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "query <expr> [expr...]",
		Short: "Evaluate queries over JSON documents and print one JSON line per result item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			flags := cmd.Flags()
			if flags.Changed("index") {
				cfg.Index.Driver = driver
			}
			if flags.Changed("dsn") {
				cfg.Index.DSN = dsn
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if len(indexPaths) > 0 {
				paths := make(map[string]string, len(cfg.Index.Paths)+len(indexPaths))
				maps.Copy(paths, cfg.Index.Paths)
				maps.Copy(paths, indexPaths)
				cfg.Index.Paths = paths
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			idx, closeIndex, err := cfg.OpenIndex()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeIndex(); err != nil {
					a.logger.Warn("failed to close index", "error", err)
				}
			}()

			st, err := store.New(cfg.StoreConfig(), idx)
			if err != nil {
				return err
			}
			loaded, err := st.LoadGlob(cmd.Context(), docsGlob)
			if err != nil {
				return err
			}
			if len(loaded) == 0 {
				return fmt.Errorf("no documents match %q", docsGlob)
			}
			a.logger.Debug("documents loaded", "count", len(loaded), "index", cfg.Index.Driver)

			opts := cfg.EvalOptions(a.logger, a.registry)
			if idx != nil {
				opts = append(opts, evaluator.WithIndex(idx))
			}
			results, err := goxmatch.EvalMany(cmd.Context(), args, st.Documents(), cfg.Workers, opts...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, seq := range results {
				for j := 0; j < seq.Len(); j++ {
					rec := toRecord(seq.ItemAt(j))
					if len(args) > 1 {
						rec.Query = args[i]
					}
					if err := enc.Encode(rec); err != nil {
						return err
					}
				}
			}
			a.logMetrics()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&docsGlob, "docs", "", "glob of JSON documents to load, e.g. 'data/**/*.json'")
	f.StringVar(&driver, "index", "", "value index: memory or sqlite")
	f.StringVar(&dsn, "dsn", "", "sqlite data source for --index sqlite")
	f.StringToStringVar(&indexPaths, "index-path", nil, "declare an index type, e.g. '**/title=string' (repeatable)")
	f.IntVar(&workers, "workers", 0, "number of queries evaluated concurrently")
	_ = cmd.MarkFlagRequired("docs")
	return cmd
}

func toRecord(it types.Item) record {
	switch v := it.(type) {
	case *types.Node:
		return record{Doc: v.Document().URI(), Path: v.Path(), Value: v.StringValue()}
	case types.Boolean:
		return record{Value: bool(v)}
	case types.Integer:
		return record{Value: int64(v)}
	case types.Double:
		return record{Value: float64(v)}
	default:
		return record{Value: it.StringValue()}
	}
}
