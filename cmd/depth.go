package main

import (
	"encoding/json"
	"io"

	"github.com/Yusufzhafir/go-orderbook/replay/internal/config"
	"github.com/Yusufzhafir/go-orderbook/replay/pkg/model"
	"github.com/spf13/cobra"
)

type depthReport struct {
	TopOfBook *model.TopOfBook   `json:"topOfBook"`
	Depth     *model.MarketDepth `json:"depth"`
}

func newDepthCmd(cfg *config.Config) *cobra.Command {
	depthCmd := &cobra.Command{
		Use:   "depth",
		Short: "Replays the command log and prints the final book as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, replayUseCase, err := setup(*cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			// query results are not needed here, only the final state
			if err := replayFile(cmd.Context(), logger, replayUseCase, cfg.InputPath, io.Discard); err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(depthReport{
				TopOfBook: replayUseCase.GetTopOfBook(),
				Depth:     replayUseCase.GetMarketDepth(cfg.DepthLevels),
			})
		},
	}
	depthCmd.Flags().IntVar(&cfg.DepthLevels, "levels", cfg.DepthLevels, "levels per side to print")
	return depthCmd
}
