package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/coverscan/coverscan/internal/store"
)

var (
	plansSource string
	plansMinCSR float64
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List stored plans, best claim settlement ratio first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		plans, err := st.ListPlans(ctx, store.PlanFilter{
			Source: plansSource,
			MinCSR: plansMinCSR,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	},
}

func init() {
	plansCmd.Flags().StringVar(&plansSource, "source", "", "filter by source label")
	plansCmd.Flags().Float64Var(&plansMinCSR, "min-csr", 0, "minimum claim settlement ratio")
	rootCmd.AddCommand(plansCmd)
}
