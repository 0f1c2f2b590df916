package main

import (
	"github.com/spf13/cobra"

	"nucleval/internal/quantity"
)

func newFormatCmd() *cobra.Command {
	var flags struct {
		value      float64
		upper      float64
		lower      float64
		errorLimit int
		smallError float64
		output     string
	}

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Render a numeric value with its uncertainty",
		Example: `  nucleval format --value 10 --upper 1.2 --lower 0.8
  nucleval format --value 2.5e8 --upper 3e6 --error-limit 35`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			opts := quantity.FormatOptions{
				ErrorLimit: cfg.Evaluation.ErrorLimit,
				SmallError: cfg.Evaluation.SmallErrorThreshold,
			}
			if cmd.Flags().Changed("error-limit") {
				opts.ErrorLimit = flags.errorLimit
			}
			if cmd.Flags().Changed("small-error") {
				opts.SmallError = flags.smallError
			}

			var upper, lower *float64
			if cmd.Flags().Changed("upper") {
				upper = &flags.upper
			}
			if cmd.Flags().Changed("lower") {
				lower = &flags.lower
			}
			if upper != nil && lower == nil && !cmd.Flags().Changed("asymmetric") {
				lower = upper
			}

			q := quantity.FromNumeric(flags.value, upper, lower)
			return writeQuantity(cmd, flags.output, q, q.FormatWith(opts))
		},
	}

	f := cmd.Flags()
	f.Float64Var(&flags.value, "value", 0, "central value (required)")
	f.Float64Var(&flags.upper, "upper", 0, "upper uncertainty; also used as the lower one unless --lower or --asymmetric is given")
	f.Float64Var(&flags.lower, "lower", 0, "lower uncertainty")
	f.Bool("asymmetric", false, "keep a lone --upper one-sided")
	f.IntVar(&flags.errorLimit, "error-limit", quantity.DefaultErrorLimit, "asymmetry percentage above which both sides are shown")
	f.Float64Var(&flags.smallError, "small-error", 0, "relative uncertainty below which it is omitted")
	f.StringVarP(&flags.output, "output", "o", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
