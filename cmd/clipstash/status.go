package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go.klb.dev/clipstash/internal/ipc"
	"go.klb.dev/clipstash/internal/message"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := request(&message.Message{Type: message.TypeStatus})
			if err != nil {
				return err
			}
			fmt.Printf("daemon:   running on %s\n", ipc.SocketPath())
			fmt.Printf("backend:  %s\n", resp.Backend)
			fmt.Printf("items:    %d\n", resp.Items)
			return nil
		},
	}
}

// ageOf renders a record's age in a compact human form.
func ageOf(rec message.Record) string {
	d := time.Since(rec.Time)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
