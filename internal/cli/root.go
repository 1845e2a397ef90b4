// Package cli implements thryftctl, a command line front end to the catalog
// filter that works directly on a seed file.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"thryft-club/internal/catalog"

	"github.com/spf13/cobra"
)

type options struct {
	seedPath string
}

func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "thryftctl",
		Short:         "Query the Thryft Club catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.seedPath, "seed", "", "catalog seed YAML (defaults to the built-in catalog)")

	root.AddCommand(
		newSearchCommand(opts),
		newCategoriesCommand(opts),
		newValidateCommand(opts),
	)
	return root
}

func (o *options) openStore() (*catalog.Store, error) {
	seed, err := catalog.LoadSeed(o.seedPath)
	if err != nil {
		return nil, err
	}
	return seed.Open()
}

func newSearchCommand(opts *options) *cobra.Command {
	var (
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Filter the catalog by text and category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			results, err := store.Search(query, category)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return printProducts(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "exact category name, or All")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func newCategoriesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List browse categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tITEMS")
			for _, c := range store.Categories() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.ID, c.Name, c.Count)
			}
			return w.Flush()
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a seed file against the catalog invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d products, %d categories, version %s\n",
				store.Len(), len(store.Categories()), store.Version())
			return nil
		},
	}
}

func printProducts(out io.Writer, products []catalog.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(out, "no results")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY\tCONDITION\tLOCATION")
	for _, p := range products {
		price := p.Price.StringFixed(2)
		if p.OriginalPrice != nil {
			price += " (was " + p.OriginalPrice.StringFixed(2) + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, price, p.Category, p.Condition, strings.TrimSpace(p.Location))
	}
	fmt.Fprintf(w, "\n%d results\n", len(products))
	return w.Flush()
}
