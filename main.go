package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"NodeBoard/internal/config"
	"NodeBoard/internal/logging"
	boardnet "NodeBoard/internal/net"
	"NodeBoard/internal/state"
	"NodeBoard/internal/ui"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "nodeboard [nodeboard://host:port]",
		Short:        "A zoomable node-diagram editor",
		Long:         "Spawn shapes onto a grid and drag them around. Pass a share link to join a board hosted on the LAN.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if len(args) == 1 {
				if !strings.HasPrefix(args[0], boardnet.Scheme) {
					return fmt.Errorf("share link %q must start with %s", args[0], boardnet.Scheme)
				}
				return runClient(ctx, cfg, log, args[0])
			}
			return runHost(ctx, cfg, log)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "nodeboard.toml", "path to a TOML config file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")

	f := cmd.Flags()
	f.Bool("share", false, "host this board for other machines on the LAN")
	f.Int("port", 0, "port to host the shared board on")
	f.Bool("advertise", true, "announce the shared board over mDNS")

	cmd.AddCommand(newDiscoverCmd())
	return cmd
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(path string, flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("share") {
		cfg.Share.Enabled, _ = flags.GetBool("share")
	}
	if flags.Changed("port") {
		cfg.Share.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("advertise") {
		cfg.Share.Advertise, _ = flags.GetBool("advertise")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newSurface(cfg config.Config, log *zap.Logger) (*ui.Surface, error) {
	view, err := state.NewViewport(cfg.Board.ZoomMin, cfg.Board.ZoomMax)
	if err != nil {
		return nil, err
	}
	board := state.NewBoard(state.NewSiteID(), log.Named("state"))
	return ui.NewSurface(board, view, cfg.Board.GridStep, log.Named("ui")), nil
}

func windowOptions(cfg config.Config) ui.Options {
	return ui.Options{
		Title: cfg.Window.Title,
		Size:  fyne.NewSize(cfg.Window.Width, cfg.Window.Height),
	}
}

func runHost(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	log.Info("starting as host", zap.Bool("share", cfg.Share.Enabled))
	surface, err := newSurface(cfg, log)
	if err != nil {
		return err
	}
	opts := windowOptions(cfg)

	if cfg.Share.Enabled {
		link, stop, err := startSharing(ctx, cfg, surface, log.Named("net"))
		if err != nil {
			return err
		}
		defer stop()
		opts.ShareLink = link
		log.Info("share link", zap.String("link", link))
	}

	ui.RunApp(opts, surface)
	return nil
}

// startSharing binds the host port, serves the board on it and, once the
// port is known to be ours, advertises it. stop undoes all of it.
func startSharing(ctx context.Context, cfg config.Config, surface *ui.Surface, log *zap.Logger) (string, func(), error) {
	ln, err := boardnet.Listen(cfg.Share.Port)
	if err != nil {
		return "", nil, fmt.Errorf("share board: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithCancel(ctx)
	board := surface.Board()
	hub := boardnet.NewHub(log)
	hub.Snapshot = board.Snapshot
	hub.OnOp = func(op state.Op) {
		if board.Apply(op) {
			surface.RefreshAsync()
		}
	}
	board.SetOnLocalOp(hub.BroadcastOp)

	go func() {
		if err := hub.Serve(ctx, ln); err != nil {
			log.Error("hosting failed", zap.Error(err))
			surface.SetStatus(fmt.Sprintf("Sharing failed: %v", err))
		}
	}()

	stop := cancel
	if cfg.Share.Advertise {
		server, err := boardnet.Advertise(port, log)
		if err != nil {
			log.Warn("mDNS advertise failed", zap.Error(err))
		} else {
			stop = func() {
				_ = server.Shutdown()
				cancel()
			}
		}
	}
	return boardnet.Link(boardnet.GetOutgoingIP(log), port), stop, nil
}

func runClient(ctx context.Context, cfg config.Config, log *zap.Logger, link string) error {
	log.Info("starting as client", zap.String("link", link))
	surface, err := newSurface(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go connectToHost(ctx, link, surface, log.Named("net"))

	ui.RunApp(windowOptions(cfg), surface)
	return nil
}

func connectToHost(ctx context.Context, link string, surface *ui.Surface, log *zap.Logger) {
	// Give the UI time to launch before reporting status.
	select {
	case <-ctx.Done():
		return
	case <-time.After(500 * time.Millisecond):
	}

	client, err := boardnet.Dial(ctx, link, log)
	if err != nil {
		log.Error("connection failed", zap.Error(err))
		surface.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer client.Close()

	board := surface.Board()
	board.SetOnLocalOp(client.SendOp)
	surface.SetStatus("Connected to host as " + client.LocalAddr())
	log.Info("connected", zap.String("local", client.LocalAddr()))

	err = client.Listen(ctx, func(msg boardnet.Message) {
		switch {
		case msg.Type == boardnet.MsgSnapshot && msg.Snapshot != nil:
			board.ApplySnapshot(*msg.Snapshot)
			surface.RefreshAsync()
		case msg.Type == boardnet.MsgOp && msg.Op != nil:
			if board.Apply(*msg.Op) {
				surface.RefreshAsync()
			}
		}
	})
	if err != nil {
		log.Warn("disconnected", zap.Error(err))
		surface.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
	}
}

func newDiscoverCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List boards shared on the local network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			found := 0
			err := boardnet.Browse(cmd.Context(), timeout, func(h boardnet.Host) {
				found++
				fmt.Fprintf(out, "%s\t%s\n", h.Name, h.Link())
			})
			if err != nil {
				return err
			}
			if found == 0 {
				fmt.Fprintln(out, "no boards found")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "how long to wait for answers")
	return cmd
}
