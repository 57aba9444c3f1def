package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/deckpack/internal/apkg"
	"github.com/spf13/cobra"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.apkg>",
		Short: "Summarize the notes and media inside a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pkg, err := apkg.Read(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("read package: %w", err)
			}

			deckNames := make([]string, 0, len(pkg.Decks))
			for _, name := range pkg.Decks {
				deckNames = append(deckNames, name)
			}
			slices.Sort(deckNames)

			var mediaBytes int
			for _, m := range pkg.Media {
				mediaBytes += len(m)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Decks: %s\n", strings.Join(deckNames, ", "))
			fmt.Fprintf(w, "Notes: %d  Cards: %d  Media: %d (%s)\n",
				len(pkg.Notes), pkg.Cards, len(pkg.Media), humanize.Bytes(uint64(mediaBytes)))

			rows := make([][]string, 0, len(pkg.Notes))
			for i, n := range pkg.Notes {
				media := strings.Join(apkg.MediaNames(n.Front), " ")
				size := "missing"
				if m, ok := pkg.Media[media]; ok {
					size = humanize.Bytes(uint64(len(m)))
				}
				rows = append(rows, []string{strconv.Itoa(i + 1), media, size, truncate(n.Back, 50)})
			}
			fmt.Fprintln(w, renderTable(
				[]string{"#", "Media", "Size", "Back"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
