package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/deckpack/internal/service"
	"github.com/spf13/cobra"
)

func newCardCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Generate, update and delete cards",
	}
	cmd.AddCommand(newCardGenerateCommand(ctx))
	cmd.AddCommand(newCardUpdateCommand(ctx))
	cmd.AddCommand(newCardDeleteCommand(ctx))
	cmd.AddCommand(newCardBulkCommand(ctx))
	cmd.AddCommand(newCardThemedCommand(ctx))
	return cmd
}

func newCardGenerateCommand(ctx *commandContext) *cobra.Command {
	var details string
	cmd := &cobra.Command{
		Use:   "generate <category>",
		Short: "Generate one card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.GenerateCard(cmd.Context(), service.GenerateCardRequest{
					Category: args[0],
					Details:  details,
				}))
			})
		},
	}
	cmd.Flags().StringVarP(&details, "details", "d", "", "Extra prompt details")
	return cmd
}

func newCardUpdateCommand(ctx *commandContext) *cobra.Command {
	var details string
	cmd := &cobra.Command{
		Use:   "update <category> <index>",
		Short: "Regenerate a card's image and replace its description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid card index %q", args[1])
			}
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.UpdateCard(cmd.Context(), service.UpdateCardRequest{
					Category:  args[0],
					Details:   details,
					CardIndex: index,
				}))
			})
		},
	}
	cmd.Flags().StringVarP(&details, "details", "d", "", "New description and prompt details")
	return cmd
}

func newCardDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category> <index>",
		Short: "Delete a card by index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid card index %q", args[1])
			}
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.DeleteCard(cmd.Context(), service.DeleteCardRequest{
					Category: args[0],
					Index:    index,
				}))
			})
		},
	}
}

func newCardBulkCommand(ctx *commandContext) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "bulk [category]",
		Short: "Generate several cards for one category, or for all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				var report service.BulkReport
				if len(args) == 1 {
					report = svc.BulkGenerate(cmd.Context(), service.BulkGenerateRequest{Category: args[0], Count: count})
				} else {
					report = svc.BulkGenerateAll(cmd.Context(), service.BulkGenerateAllRequest{Count: count})
				}
				if len(report.Items) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), renderBulkReport(report))
				}
				return printOutcome(cmd, report.Outcome)
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Cards to generate per category")
	return cmd
}

func renderBulkReport(report service.BulkReport) string {
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		status := "ok"
		if !item.Success {
			status = "failed: " + truncate(item.Error, 60)
		}
		rows = append(rows, []string{item.Category, strconv.Itoa(item.Index), item.Prompt, status})
	}
	return renderTable(
		[]string{"Category", "#", "Prompt", "Result"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func newCardThemedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "themed <category> <theme>",
		Short: "Generate a card in a style (" + strings.Join(service.Themes(), ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.ThemedGenerate(cmd.Context(), service.ThemedGenerateRequest{
					Category: args[0],
					Theme:    args[1],
				}))
			})
		},
	}
}
