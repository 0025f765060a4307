package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jrm-intake-api/internal/auth"
	"jrm-intake-api/internal/db"
	"jrm-intake-api/internal/esx"
	"jrm-intake-api/internal/intake"
)

// openStore opens and, when asked, migrates the configured database.
func (c *cli) openStore(ctx context.Context, migrate bool) (*intake.Store, func(), error) {
	drv, closeDB, err := db.Open(c.config())
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := db.Migrate(ctx, drv); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	return intake.NewStore(drv), closeDB, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the jrm and metrics tables if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			_, closeDB, err := c.openStore(ctx, true)
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every intake and metric row as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			store, closeDB, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer closeDB()

			jrm, err := store.ListIntakes(ctx)
			if err != nil {
				return err
			}
			metrics, err := store.ListMetrics(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(map[string]any{"jrm": jrm, "metrics": metrics})
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent output")
	return cmd
}

func (c *cli) reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Push every intake into the search index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.config()
			es, _, err := esx.Open(cfg)
			if err != nil {
				return err
			}
			if es == nil {
				return errors.New("ES_ADDRS is not set")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			store, closeDB, err := c.openStore(ctx, false)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := esx.NewIndexer(es, cfg.ES.Index, store).Reindex(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d intakes into %s\n", n, cfg.ES.Index)
			return err
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		sub, kind string
		roles     []string
		minutes   int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for the write routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sub == "" {
				return errors.New("--sub is required")
			}
			cfg := c.config()
			if minutes > 0 {
				cfg.JWT.AccessMin = minutes
			}
			token, _, err := auth.SignAccess(cfg, sub, kind, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "token subject")
	cmd.Flags().StringVar(&kind, "kind", auth.KindUser, "token kind (user or service)")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "comma separated roles")
	cmd.Flags().IntVar(&minutes, "ttl-min", 0, "lifetime in minutes (default JWT_ACCESS_MIN)")
	return cmd
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <id>...",
		Short: "Print the canonical ENT-<n> form of intake ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bad []string
			for _, a := range args {
				id, err := intake.NormalizeID(a)
				if err != nil {
					bad = append(bad, fmt.Sprintf("%q", a))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			if len(bad) > 0 {
				return fmt.Errorf("invalid intake ids: %s", strings.Join(bad, ", "))
			}
			return nil
		},
	}
}
