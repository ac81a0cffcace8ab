package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/utils"
)

func newTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table TICKER...",
		Short: "Print the free-float table and normalized weights",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tickers := utils.NormalizeTickers(args)
			if len(tickers) == 0 {
				return fmt.Errorf("%w: no tickers", domain.ErrInvalidRequest)
			}

			table := a.container.Resolver.Resolve(cmd.Context(), tickers)
			return writeJSON(cmd.OutOrStdout(), struct {
				FreeFloat domain.FreeFloatTable `json:"free_float"`
				Weights   domain.WeightMap      `json:"weights"`
			}{table, freefloat.Normalize(table)})
		},
	}
}
