package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/freefloat/internal/modules/analytics"
	"github.com/aristath/freefloat/internal/modules/portfolio"
)

type buildOutput struct {
	*portfolio.BuildResult
	Analytics *analytics.Report `json:"analytics,omitempty"`
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		start, end    string
		initial       float64
		field         string
		noAdjust      bool
		universePath  string
		withAnalytics bool
	)

	cmd := &cobra.Command{
		Use:   "build [TICKER...]",
		Short: "Build a free-float weighted portfolio and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var u *Universe
			if universePath != "" {
				var err error
				if u, err = LoadUniverse(universePath); err != nil {
					return err
				}
			}

			tickers := buildTickers(u, args)

			from, to, err := period(start, end, u, time.Now())
			if err != nil {
				return err
			}

			req := portfolio.NewRequest(tickers, from, to)
			req.InitialInvestment = a.container.Defaults.InitialInvestment
			req.PriceField = a.container.Defaults.PriceField
			if cmd.Flags().Changed("initial") {
				req.InitialInvestment = initial
			}
			if field != "" {
				req.PriceField = field
			}
			req.AutoAdjust = !noAdjust

			result, err := a.container.Builder.Build(cmd.Context(), req)
			if err != nil {
				return err
			}
			if result.Degraded() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no valid free-float data for %v, portfolio held constant\n", tickers)
			}

			out := buildOutput{BuildResult: result}
			if withAnalytics {
				report := analytics.Analyze(result.Prices, &result.Series)
				out.Analytics = &report
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (default: one year before end)")
	cmd.Flags().StringVar(&end, "end", "", "end date YYYY-MM-DD, exclusive (default: today)")
	cmd.Flags().Float64Var(&initial, "initial", portfolio.DefaultInitialInvestment, "initial investment")
	cmd.Flags().StringVar(&field, "field", "", "price field (Open, High, Low, Close, Adj Close, Volume)")
	cmd.Flags().BoolVar(&noAdjust, "no-adjust", false, "use unadjusted prices")
	cmd.Flags().StringVar(&universePath, "universe", "", "YAML file with tickers, start and end")
	cmd.Flags().BoolVar(&withAnalytics, "analytics", false, "include correlations and volatility")
	return cmd
}
