package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/prefixindex"
	"github.com/hupe1980/prefixindex/codec"
	"github.com/hupe1980/prefixindex/internal/config"
	"github.com/hupe1980/prefixindex/kv"
)

type app struct {
	configPath string
	cfg        *config.Config
	store      kv.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "prefixindex",
		Short: "Inspect and administer prefix indexes",
		Long: `prefixindex works with indexes written by the prefixindex library.

Entities are printed as stored, one JSON document per line. The store,
codec and term bounds are read from the config file (--config) and
PREFIXINDEX_* environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to the YAML config file")

	cmd.AddCommand(
		a.termsCmd(),
		a.findCmd(),
		a.countCmd(),
		a.dumpCmd(),
		a.dropCmd(),
	)
	return cmd
}

// load reads the config and, if withStore is set, opens the store.
func (a *app) load(ctx context.Context, withStore bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if withStore {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		a.store = store
	}
	return nil
}

// index opens a read-only view of the named index. Entities are kept as raw
// JSON; the row key accessor is never called by the read paths.
func (a *app) index(name string) (*prefixindex.Single[json.RawMessage], error) {
	c, _ := codec.ByName(a.cfg.Codec)

	level, err := a.cfg.Level()
	if err != nil {
		return nil, err
	}

	return prefixindex.NewSingle(name, a.store,
		func(json.RawMessage) string { return "" },
		prefixindex.WithIndexOptions(a.cfg.IndexOptions()),
		prefixindex.WithCodec(c),
		prefixindex.WithLogLevel(level),
	)
}

func (a *app) termsCmd() *cobra.Command {
	var forDelete bool

	cmd := &cobra.Command{
		Use:   "terms <searchable string>",
		Short: "Print the terms a string is indexed under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context(), false); err != nil {
				return err
			}

			terms, err := prefixindex.GenerateTerms(args[0], a.cfg.IndexOptions(), !forDelete)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, k := range terms.Keys {
				fmt.Fprintln(out, k)
			}
			switch {
			case terms.BelowMin:
				fmt.Fprintf(cmd.ErrOrStderr(), "length %d is below min_length %d: not indexed\n", terms.Length, a.cfg.Index.MinLength)
			case terms.Exceeded:
				fmt.Fprintf(cmd.ErrOrStderr(), "length %d exceeds max_length %d: truncated\n", terms.Length, a.cfg.Index.MaxLength)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forDelete, "delete", false, "Print the uncapped terms a delete would remove")
	return cmd
}

func (a *app) findCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <index> <term>",
		Short: "Print the entities indexed under a term",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context(), true); err != nil {
				return err
			}
			idx, err := a.index(args[0])
			if err != nil {
				return err
			}

			found, err := idx.Find(cmd.Context(), args[1], limit)
			if err != nil {
				return err
			}
			for _, v := range found {
				fmt.Fprintln(cmd.OutOrStdout(), string(v))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <index>",
		Short: "Print the number of entries of an index (full scan)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context(), true); err != nil {
				return err
			}
			idx, err := a.index(args[0])
			if err != nil {
				return err
			}

			n, err := idx.Size(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func (a *app) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <index>",
		Short: "Print every entry of an index (full scan)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context(), true); err != nil {
				return err
			}
			idx, err := a.index(args[0])
			if err != nil {
				return err
			}

			entries, err := idx.Entries(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := enc.Encode(struct {
					Term   string          `json:"term"`
					RowKey string          `json:"row_key"`
					Value  json.RawMessage `json:"value"`
				}{e.Term, e.RowKey, e.Value}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) dropCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop <index>",
		Short: "Delete an index and every entry in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Drop index %s? Type the index name to confirm: ", args[0])
				answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && answer == "" {
					return err
				}
				if strings.TrimSpace(answer) != args[0] {
					return errors.New("aborted")
				}
			}

			if err := a.load(cmd.Context(), true); err != nil {
				return err
			}
			idx, err := a.index(args[0])
			if err != nil {
				return err
			}
			return idx.Drop(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
