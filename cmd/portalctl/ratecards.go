package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rbx/logicore/internal/rate/setup"
	"rbx/logicore/internal/rate/source"
	"rbx/logicore/pkg/infra/mysql"
)

func newRateCardsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratecards",
		Short: "Inspect and import rate cards",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List rate cards from the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := setup.QuoteService(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			cards, err := svc.Cards(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cards)
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert the rate cards in the config file into MySQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			static, err := source.FromConfig(c.cfg.Rates.Cards)
			if err != nil {
				return err
			}
			cards, _ := static.List(cmd.Context())

			db, err := mysql.Open(c.cfg.MySQL)
			if err != nil {
				return err
			}
			dao := mysql.NewRateCardDAO(db)
			defer dao.Close()

			for _, card := range cards {
				row, err := source.EntityFromCard(card)
				if err != nil {
					return fmt.Errorf("rate card %s: %w", card.Mode, err)
				}
				if err := dao.UpsertRateCard(cmd.Context(), row); err != nil {
					return fmt.Errorf("rate card %s: %w", card.Mode, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", card.Mode)
			}
			return nil
		},
	}

	cmd.AddCommand(list, importCmd)
	return cmd
}
