package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"expired/internal/importer"
	"expired/internal/listview"
	"expired/internal/model"
	"expired/internal/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active products, soonest expiry first",
		Example: `  expired list
  expired list --filter "expiring soon"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}

			products, err := a.service.List(cmd.Context(), f)
			if err != nil {
				return err
			}

			return printProducts(cmd.OutOrStdout(), products, a.policy)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(model.FilterAll), "All, Expired, Expiring Soon or Good")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var req model.ProductRequest

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a product",
		Example: `  expired add --title Milk --expires 2026-03-12 --memo "top shelf"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.service.Create(cmd.Context(), &req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s), %s\n",
				product.Title, product.ID, a.policy.Status(*product))
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Product title")
	cmd.Flags().StringVarP(&req.ExpiryDate, "expires", "e", "", "Expiry date, YYYY-MM-DD or RFC 3339")
	cmd.Flags().StringVarP(&req.Memo, "memo", "m", "", "Free-text note")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}

func newArchiveCmd(a *app) *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "archive [id]",
		Short: "Archive a product, or every product expired for longer than --older-than days",
		Example: `  expired archive 7d0c4f5e-3a4b-4c1e-9a55-0f1f9d3b2a10
  expired archive --older-than 14`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if olderThan < 0 {
					return fmt.Errorf("either a product ID or --older-than is required")
				}
				count, err := a.service.ArchiveExpired(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Archived %d products\n", count)
				return nil
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product ID %q: %w", args[0], err)
			}

			product, err := a.service.Archive(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Archived %s (%s)\n", product.Title, product.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", -1, "Archive products expired more than this many days ago")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import products from gzipped JSON-lines files",
		Long: `Each line of a file is one product: {"title": "...", "expiryDate": "YYYY-MM-DD", "memo": "..."}.
Files are read from S3 first when S3_ENABLED is set, then from the local file system.
Either every record is imported or none is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := importer.NewLoader(cmd.Context(), a.cfg.S3, a.logger)
			count, err := importer.NewImporter(a.service, loader, a.logger).Import(cmd.Context(), args)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products\n", count)
			return nil
		},
	}
}

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Browse and manage products in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := listview.New(a.store, a.policy, a.logger)
			return tui.Run(cmd.Context(), view, a.service)
		},
	}
}

// printProducts writes the list as aligned columns, or the empty-state message.
func printProducts(w io.Writer, products []model.Product, policy model.ExpiryPolicy) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, listview.EmptyMessage)
		return err
	}

	now := policy.CurrentTime()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tEXPIRES\tDAYS LEFT\tSTATUS\tMEMO")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.Title, p.ExpiryDate.Format(model.DateLayout), p.DaysLeft(now), policy.Status(p), p.Memo)
	}
	return tw.Flush()
}
