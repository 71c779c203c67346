package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/migrations"
	"github.com/Simplici0/menucost/internal/seed"
	"github.com/Simplici0/menucost/internal/units"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(database); err != nil {
				return err
			}
			v, err := migrations.Version(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(database); err != nil {
				return err
			}
			stats, err := seed.Run(ctx, database)
			if err != nil {
				return err
			}
			if err := a.service(database).Recost(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows\n", stats.Inserts)
			return nil
		},
	}
}

func convertCmd(a *app) *cobra.Command {
	var density string
	var ingredient string

	cmd := &cobra.Command{
		Use:   "convert QTY FROM TO",
		Short: "Convert a quantity between units",
		Example: "  menucost convert 2 lb oz\n" +
			"  menucost convert 1 cup g --density 0.53\n" +
			"  menucost convert 3 ea g --ingredient <id>",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("quantity %q is not a number", args[0])
			}
			from, err := units.Parse(args[1])
			if err != nil {
				return err
			}
			to, err := units.Parse(args[2])
			if err != nil {
				return err
			}

			var value decimal.Decimal
			if ingredient != "" {
				database, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				defer database.Close()
				value, err = a.service(database).Convert(cmd.Context(), ingredient, qty, from, to)
				if err != nil {
					return err
				}
			} else {
				var ing *costing.Ingredient
				if density != "" {
					d, err := decimal.NewFromString(density)
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("density %q must be a positive number", density)
					}
					ing = &costing.Ingredient{DensityFactor: &d}
				}
				value, err = costing.Resolve(ing, qty, from, to)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", qty, from, value.Round(4), to)
			return nil
		},
	}

	cmd.Flags().StringVar(&density, "density", "", "density in g/ml for mass and volume conversion")
	cmd.Flags().StringVar(&ingredient, "ingredient", "", "use a stored ingredient's conversions")
	return cmd
}

func costCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "cost",
		Short: "Show the cost breakdown of a recipe or entree",
	}

	c.AddCommand(&cobra.Command{
		Use:   "recipe ID",
		Short: "Cost a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			rc, err := a.service(database).RecipeCost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (yields %s %s)\n\n", rc.Name, rc.YieldAmount, rc.YieldUnit)
			printLines(out, rc.Lines)
			fmt.Fprintf(out, "\ntotal:          %s\n", money(rc.Total))
			fmt.Fprintf(out, "per %-11s %s\n", rc.YieldUnit+":", money(rc.PerYieldUnit))
			return nil
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "entree ID",
		Short: "Cost an entree and show its food-cost metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			ec, err := a.service(database).EntreeCost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			an := ec.Analysis
			fmt.Fprintf(out, "%s (%s servings)\n\n", ec.Name, ec.Servings)
			printLines(out, ec.Lines)
			fmt.Fprintf(out, "\ntotal:            %s\n", money(an.TotalCost))
			fmt.Fprintf(out, "cost per serving: %s\n", money(an.CostPerServing))
			if an.FoodCostPercent != nil {
				fmt.Fprintf(out, "menu price:       %s\n", money(*an.MenuPrice))
				fmt.Fprintf(out, "food cost:        %s%% (%s)\n", an.FoodCostPercent.Round(2), an.Band)
				fmt.Fprintf(out, "gross profit:     %s\n", money(*an.GrossProfit))
			}
			if ec.SuggestedPrice != nil {
				fmt.Fprintf(out, "suggested price:  %s\n", money(*ec.SuggestedPrice))
			}
			if ec.MetricErr != nil {
				fmt.Fprintf(out, "note: %v\n", ec.MetricErr)
			}
			return nil
		},
	})
	return c
}

func reportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Food-cost report for every entree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			rows, err := a.service(database).FoodCostReport(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTREE\tCOST/SERVING\tPRICE\tFOOD COST\tBAND")
			for _, row := range rows {
				if row.Err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t-\t%s\n", row.Name, describe(row.Err))
					continue
				}
				an := row.Cost.Analysis
				price, pct := "-", "-"
				if an.MenuPrice != nil {
					price = money(*an.MenuPrice)
				}
				if an.FoodCostPercent != nil {
					pct = an.FoodCostPercent.Round(2).String() + "%"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Name, money(an.CostPerServing), price, pct, an.Band)
			}
			return tw.Flush()
		},
	}
}

func printLines(w io.Writer, lines []costing.LineCost) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMPONENT\tQTY\tCOST")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\n", l.Index, l.Name, l.Quantity, l.Unit, money(l.Cost))
	}
	_ = tw.Flush()
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func describe(err error) string {
	var ce *costing.CostError
	if errors.As(err, &ce) {
		return "error: " + string(ce.Kind)
	}
	return "error"
}
