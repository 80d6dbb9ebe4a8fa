package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/engine"
	"spendwise/internal/store"
)

var (
	addCategory string
	addDate     string

	listCategory string

	editAmount      string
	editDescription string
	editCategory    string
	editDate        string

	clearYes bool
)

var rootCmd = &cobra.Command{
	Use:   "spendwise",
	Short: "Track expenses from the command line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var addCmd = &cobra.Command{
	Use:   "add <amount> <description>",
	Short: "Record a new expense",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cents, err := core.ParseDecimalToCents(args[0])
		if err != nil {
			return err
		}

		date := time.Now()
		if addDate != "" {
			if date, err = parseDate(addDate); err != nil {
				return err
			}
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		exp, err := st.Add(cmd.Context(), core.Draft{
			Amount:      core.Money{Cents: cents},
			Description: args[1],
			Category:    core.Category(addCategory),
			Date:        date,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s  %s (%s) [%s]\n",
			exp.Amount, exp.Description, exp.Category, exp.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		expenses, err := st.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
		for _, e := range expenses {
			if listCategory != "" && e.Category != core.Category(listCategory) {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.Date.Format("2006-01-02"), e.Amount, e.Category, e.Description, e.ID)
		}
		return w.Flush()
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := st.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch core.Patch

		if editAmount != "" {
			cents, err := core.ParseDecimalToCents(editAmount)
			if err != nil {
				return err
			}
			patch.Amount = &core.Money{Cents: cents}
		}
		if editDescription != "" {
			patch.Description = &editDescription
		}
		if editCategory != "" {
			c := core.Category(editCategory)
			patch.Category = &c
		}
		if editDate != "" {
			d, err := parseDate(editDate)
			if err != nil {
				return err
			}
			patch.Date = &d
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		exp, err := st.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s  %s (%s)\n", exp.Amount, exp.Description, exp.Category)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every expense",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to delete all expenses without --yes")
		}

		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := st.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("All expenses cleared")
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show spending totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		expenses, err := st.List(cmd.Context())
		if err != nil {
			return err
		}

		now := time.Now()
		fmt.Printf("Today:      %s\n", engine.TodayTotal(now, expenses))
		fmt.Printf("This week:  %s\n", engine.WeekTotal(now, expenses))
		fmt.Printf("This month: %s\n", engine.MonthTotal(now, expenses))
		fmt.Printf("All time:   %s\n", engine.Total(expenses))

		byCategory := engine.CategoryTotals(expenses)
		if len(byCategory) == 0 {
			return nil
		}
		fmt.Println("\nBy category:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range core.Categories() {
			if total, ok := byCategory[c]; ok {
				fmt.Fprintf(w, "  %s\t%s\n", c, total)
			}
		}
		return w.Flush()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category catalog",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR")
		for _, c := range core.CategoryCatalog() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Color)
		}
		return w.Flush()
	},
}

// openStore loads configuration and opens the configured backend.
func openStore() (store.Store, func(), error) {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	res, err := backend.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Cleanup failed", "error", err)
			}
		}
	}
	return res.Store, cleanup, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", core.ErrInvalidDate, s)
	}
	return t, nil
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", string(core.CategoryOther), "Expense category")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Expense date (YYYY-MM-DD, default today)")

	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only show this category")

	editCmd.Flags().StringVar(&editAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&editDescription, "description", "", "New description")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category")
	editCmd.Flags().StringVar(&editDate, "date", "", "New date (YYYY-MM-DD)")

	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting every expense")

	rootCmd.AddCommand(addCmd, listCmd, rmCmd, editCmd, clearCmd, summaryCmd, categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
