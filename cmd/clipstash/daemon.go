package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipstash/internal/classifier"
	"go.klb.dev/clipstash/internal/clip"
	"go.klb.dev/clipstash/internal/focus"
	"go.klb.dev/clipstash/internal/history"
	"go.klb.dev/clipstash/internal/ipc"
	"go.klb.dev/clipstash/internal/monitor"
	"go.klb.dev/clipstash/internal/service"
	"go.klb.dev/clipstash/internal/store"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard history daemon",
		Long: `daemon watches the system clipboard, maintains the persistent history,
and serves the local socket the other sub-commands talk to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := bindViper(cmd, v); err != nil {
				return err
			}
			setupLogging(v, slog.LevelInfo)
			return runDaemon(v)
		},
	}
	addDaemonFlags(cmd)
	return cmd
}

// runDaemon is the composition root: it owns the lifetime of every service
// and wires them together explicitly.
func runDaemon(v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir := v.GetString("data-dir")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	repo, err := store.New(dataDir)
	if err != nil {
		return err
	}
	defer repo.Close()

	engine := history.New(repo, history.Options{
		MaxItems:  v.GetInt("max-items"),
		AutoClean: v.GetBool("auto-clean"),
	})

	board := clip.New()
	defer board.Close()

	mon := monitor.New(board, v.GetDuration("poll-interval"))
	coord := focus.NewCoordinator(focus.NewRobot())
	extract := classifier.NewService(engine, classifier.NewOCR())

	go mon.Run(ctx)
	go func() {
		// Single consumer: candidates reach the engine in emission order.
		for it := range mon.Items() {
			engine.Insert(it)
		}
	}()

	ln, err := ipc.Listen()
	if err != nil {
		return err
	}
	slog.Info("clipstash daemon ready",
		"socket", ipc.SocketPath(),
		"data_dir", dataDir,
		"backend", board.Name(),
	)

	srv := service.NewServer(engine, extract, board, mon, coord)
	err = srv.Serve(ctx, ln)

	coord.Disarm()
	repo.Save(engine.Items())
	slog.Info("clipstash daemon stopped")
	return err
}
