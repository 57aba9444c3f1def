package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/deckpack/internal/deckstore"
	"github.com/phrazzld/deckpack/internal/domain"
	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var out, input string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an Anki package of stored decks or a decks JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			a, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}

			var decks []domain.Deck
			if input != "" {
				doc, err := readInput(input)
				if err != nil {
					return fmt.Errorf("read %s: %w", input, err)
				}
				if decks, err = deckstore.Decode(doc); err != nil {
					return fmt.Errorf("parse %s: %w", input, err)
				}
			} else {
				decks = a.Decks.Snapshot()
			}

			pkg, err := a.Exporter.Export(cmd.Context(), decks)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, pkg, 0o644); err != nil {
				return fmt.Errorf("write package: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, humanize.Bytes(uint64(len(pkg))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "export.apkg", "Package file to write")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Decks JSON file to export instead of the stored decks (- for stdin)")
	return cmd
}
