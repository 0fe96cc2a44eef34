package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go.klb.dev/clipstash/internal/message"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [query]",
		Short: "List the clipboard history, most recent first",
		Long: `history lists every item the daemon holds. With a query argument only
text and url items whose content contains the query (case-insensitively)
are shown; images never match text search.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			resp, err := request(&message.Message{Type: message.TypeHistory, Query: query})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAGE\tKIND\tCONTENT")
			for _, rec := range resp.Records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					rec.ID, ageOf(rec), rec.Kind, previewOf(rec, 60))
			}
			return w.Flush()
		},
	}
}

func newRecallCmd() *cobra.Command {
	var noPaste bool
	cmd := &cobra.Command{
		Use:   "recall <id>",
		Short: "Copy a history item back to the clipboard and paste it",
		Long: `recall puts the chosen item back on the system clipboard, moves it to
the front of the history, restores focus to the previously active
application, and injects a paste keystroke. --no-paste skips the focus and
paste step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{
				Type:  message.TypeRecall,
				ID:    args[0],
				Paste: !noPaste,
			})
			return err
		},
	}
	cmd.Flags().BoolVar(&noPaste, "no-paste", false, "copy to the clipboard without focus-restore or paste")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete one item from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeRemove, ID: args[0]})
			return err
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire history and its files on disk",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := request(&message.Message{Type: message.TypeClear})
			return err
		},
	}
}

func newExtractCmd() *cobra.Command {
	var barcode bool
	cmd := &cobra.Command{
		Use:   "extract <id>",
		Short: "Extract text (or a barcode payload) from an image item",
		Long: `extract runs the classifier over an image item, caches the result on the
item, copies the extracted text to the clipboard, and adds it to the
history. Re-running extract on the same image serves the cached result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			field := message.FieldText
			if barcode {
				field = message.FieldBarcode
			}
			resp, err := request(&message.Message{
				Type:  message.TypeExtract,
				ID:    args[0],
				Field: field,
			})
			if err != nil {
				return err
			}
			fmt.Println(resp.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&barcode, "barcode", false, "extract a barcode payload instead of text")
	return cmd
}
