package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/coverscan/coverscan/internal/model"
)

var recommendProfile model.UserProfile

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank stored plans for a user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// A fresh database still answers, via the seed dataset.
		if err := env.Runner.EnsureSeeded(ctx); err != nil {
			return eris.Wrap(err, "seed store")
		}

		if recommendProfile.MinCSR == 0 {
			recommendProfile.MinCSR = model.DefaultMinCSR
		}

		rec, err := env.Engine.Recommend(ctx, recommendProfile)
		if err != nil {
			return eris.Wrap(err, "recommend")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	recommendCmd.Flags().IntVar(&recommendProfile.Age, "age", 0, "age in years (required)")
	recommendCmd.Flags().Float64Var(&recommendProfile.SumAssured, "sum-assured", 0, "desired cover in lakhs (required)")
	recommendCmd.Flags().Float64Var(&recommendProfile.PremiumBudget, "budget", 0, "maximum annual premium in INR (required)")
	recommendCmd.Flags().IntVar(&recommendProfile.PolicyTerm, "term", 0, "desired policy term in years (required)")
	recommendCmd.Flags().Float64Var(&recommendProfile.MinCSR, "min-csr", 0, "minimum claim settlement ratio (default 95)")
	_ = recommendCmd.MarkFlagRequired("age")
	_ = recommendCmd.MarkFlagRequired("sum-assured")
	_ = recommendCmd.MarkFlagRequired("budget")
	_ = recommendCmd.MarkFlagRequired("term")
	rootCmd.AddCommand(recommendCmd)
}
