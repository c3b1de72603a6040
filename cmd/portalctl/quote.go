package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"rbx/logicore/internal/model"
	"rbx/logicore/internal/rate/setup"
)

func newQuoteCmd(c *cli) *cobra.Command {
	var (
		req      model.QuoteRequest
		declared string
		dims     model.Dimensions
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote every configured rate card for a shipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if declared != "" {
				v, err := decimal.NewFromString(declared)
				if err != nil {
					return fmt.Errorf("invalid --declared: %w", err)
				}
				req.DeclaredValue = v
			}
			if dims != (model.Dimensions{}) {
				req.Dimensions = &dims
			}

			svc, cleanup, err := setup.QuoteService(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Quote(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, res)
			}

			fmt.Fprintf(out, "zone: %s  status: %s\n", res.Zone, res.Status)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tCOURIER\tWEIGHT\tBASE\tADDL\tCOD\tGST\tTOTAL\tTAGS")
			for _, r := range res.Rates {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
					r.Mode, r.Courier, r.ChargeableWeight, r.BaseCharge, r.AdditionalWeightCharge,
					r.CODCharge, r.GST, r.Total, r.Tags)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, f := range res.Failed {
				fmt.Fprintf(out, "skipped %s: %s\n", f.Mode, f.Reason)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.SourcePincode, "from", "", "发件 pincode")
	f.StringVar(&req.DestinationPincode, "to", "", "收件 pincode")
	f.Float64Var(&req.WeightKg, "weight", 0, "实际重量（kg）")
	f.BoolVar(&req.IsCOD, "cod", false, "货到付款")
	f.StringVar(&declared, "declared", "", "申报价值")
	f.StringSliceVar(&req.Modes, "modes", nil, "只计算指定 mode")
	f.Float64Var(&dims.LengthCm, "length", 0, "长（cm）")
	f.Float64Var(&dims.WidthCm, "width", 0, "宽（cm）")
	f.Float64Var(&dims.HeightCm, "height", 0, "高（cm）")
	f.Float64Var(&req.VolumetricDivisor, "divisor", 0, "体积重除数（默认 5000）")
	f.BoolVar(&asJSON, "json", false, "输出 JSON")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("weight")

	return cmd
}

func newZoneCmd(c *cli) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Determine the shipping zone between two pincodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := setup.QuoteService(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			z, err := svc.Zone(from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), z)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "发件 pincode")
	cmd.Flags().StringVar(&to, "to", "", "收件 pincode")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
