package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghosh9691/mmelParser/internal/store"
)

func familiesCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List recognized document families and their dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tDIALECT")
			for _, f := range e.parser.Registry().Families() {
				fmt.Fprintf(tw, "%s\t%s\n", f.Family, f.Dialect)
			}
			return tw.Flush()
		},
	}
}

func migrateCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema in MMEL_DATABASE_URL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoreVersion(cmd, load, func(st *store.Store) error { return st.MigrateUp() })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoreVersion(cmd, load, func(st *store.Store) error { return st.MigrateDown() })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoreVersion(cmd, load, func(*store.Store) error { return nil })
		},
	})
	return cmd
}

func summaryCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "summary FAMILY",
		Short: "Print statistics over the stored entries of one family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, e)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := st.Summary(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		},
	}
}

// withStoreVersion runs fn against the configured database and prints the
// resulting schema version.
func withStoreVersion(cmd *cobra.Command, load loader, fn func(*store.Store) error) error {
	e, err := load()
	if err != nil {
		return err
	}
	st, err := store.Open(cmd.Context(), e.cfg.DatabaseURL, e.log)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := fn(st); err != nil {
		return err
	}
	v, err := st.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d (dirty: %t)\n", st.Driver(), v.Version, v.Dirty)
	return nil
}
