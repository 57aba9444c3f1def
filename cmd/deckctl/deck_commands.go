package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/deckpack/internal/service"
	"github.com/spf13/cobra"
)

func newDeckCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect stored decks",
	}
	cmd.AddCommand(newDeckListCommand(ctx))
	cmd.AddCommand(newDeckDumpCommand(ctx))
	return cmd
}

func newDeckListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with card counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				decks := svc.Decks()
				if len(decks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No decks")
					return nil
				}
				rows := make([][]string, 0, len(decks))
				for _, d := range decks {
					rows = append(rows, []string{
						d.Topic,
						strconv.Itoa(len(d.Cards)),
						strconv.Itoa(d.ImageCount()),
						humanize.Time(d.Modified.Time),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Topic", "Cards", "Images", "Modified"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newDeckDumpCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <topic>",
		Short: "Print a deck as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				deck, ok := svc.Deck(args[0])
				if !ok {
					return fmt.Errorf("deck %q not found", args[0])
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(deck)
			})
		},
	}
}
