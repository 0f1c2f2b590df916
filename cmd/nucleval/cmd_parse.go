package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"nucleval/internal/quantity"
)

func newParseCmd() *cobra.Command {
	var flags struct {
		output     string
		errorLimit int
	}

	cmd := &cobra.Command{
		Use:   "parse VALUE [UNCERTAINTY]",
		Short: "Parse a value and its uncertainty",
		Example: `  nucleval parse 123.45 12
  nucleval parse 1.2E3 +3-2
  nucleval parse "<5"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unc := ""
			if len(args) == 2 {
				unc = args[1]
			}
			q, err := quantity.Parse(args[0], unc)
			if err != nil {
				return err
			}

			cfg := getConfig(cmd)
			limit := cfg.Evaluation.ErrorLimit
			if cmd.Flags().Changed("error-limit") {
				limit = flags.errorLimit
			}
			rendered := q.FormatWith(quantity.FormatOptions{
				ErrorLimit: limit,
				SmallError: cfg.Evaluation.SmallErrorThreshold,
			})
			return writeQuantity(cmd, flags.output, q, rendered)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", outputTable, "output format: table or json")
	f.IntVar(&flags.errorLimit, "error-limit", quantity.DefaultErrorLimit, "asymmetry percentage above which both sides are shown")
	return cmd
}

func writeQuantity(cmd *cobra.Command, output string, q quantity.Quantity, r quantity.Rendered) error {
	out := cmd.OutOrStdout()
	switch output {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Quantity quantity.Quantity `json:"quantity"`
			Rendered quantity.Rendered `json:"rendered"`
		}{q, r})
	case outputTable:
		n := q.ToNumeric()
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"Kind", q.Kind().String()})
		t.AppendRow(table.Row{"Value", n.Value})
		t.AppendRow(table.Row{"Upper", side(n.Upper, n.HasUpper)})
		t.AppendRow(table.Row{"Lower", side(n.Lower, n.HasLower)})
		t.AppendRow(table.Row{"Rendered", joinRendered(r)})
		t.Render()
		return nil
	default:
		return unsupportedOutput(output, outputTable, outputJSON)
	}
}

func side(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}

func joinRendered(r quantity.Rendered) string {
	if r.Uncertainty == "" {
		return r.Value
	}
	return r.Value + " " + r.Uncertainty
}
