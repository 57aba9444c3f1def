package main

import (
	"github.com/phrazzld/deckpack/internal/service"
	"github.com/spf13/cobra"
)

func newCategoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Create or delete categories",
	}
	cmd.AddCommand(newCategoryCreateCommand(ctx))
	cmd.AddCommand(newCategoryDeleteCommand(ctx))
	return cmd
}

func newCategoryCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.CreateCategory(cmd.Context(), service.CreateCategoryRequest{Name: args[0]}))
			})
		},
	}
}

func newCategoryDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *service.DeckService) error {
				return printOutcome(cmd, svc.DeleteCategory(cmd.Context(), service.DeleteCategoryRequest{
					Category:  args[0],
					Confirmed: yes,
				}))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete even if the category has cards")
	return cmd
}
