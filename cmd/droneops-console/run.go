package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"droneops-console/internal/admin"
	"droneops-console/internal/command"
	"droneops-console/internal/config"
	"droneops-console/internal/console"
	"droneops-console/internal/feed"
	"droneops-console/internal/logging"
	"droneops-console/internal/store"
)

var (
	runConfigPath string
	runSchemaPath string
	runReplay     string
	runSpeed      float64
	runRecord     string
	runStale      time.Duration
	runStatusAddr string
	runLogLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the operator console",
	Long:  "run connects to the telemetry feed (or replays a log file) and starts the interactive console.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("console requires an interactive terminal")
		}
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		logger := logging.New(parseLevel(runLogLevel))

		st := store.New(cfg.MissionSlots, displaySettings(cfg.Display))
		st.SetZones(cfg.Zones)

		var archivers []feed.Archiver
		if runRecord != "" {
			rec, err := feed.NewFileRecorder(runRecord)
			if err != nil {
				return err
			}
			defer rec.Close()
			archivers = append(archivers, rec)
		}
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
			ga, err := feed.NewGreptimeArchiver(endpoint, "public", logger)
			if err != nil {
				return err
			}
			archivers = append(archivers, ga)
		}

		var cmdr console.Commander
		var mqttFeed *feed.MQTTFeed
		if runReplay != "" {
			cmdr = command.Discard{Log: logger}
		} else {
			mqttFeed = feed.NewMQTTFeed(cfg.MQTT, st, logger, archivers...)
			if err := mqttFeed.Connect(); err != nil {
				return err
			}
			defer mqttFeed.Close()
			cmdr = command.New(mqttFeed.Client(), cfg.MQTT.CommandTopic, logger)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		statusAddr := cfg.StatusAddr
		if runStatusAddr != "" {
			statusAddr = runStatusAddr
		}
		if statusAddr != "" {
			srv := admin.NewServer(st, logger)
			go func() {
				logger.Info("status server listening", "addr", statusAddr)
				if err := srv.Start(ctx, statusAddr); err != nil && err != http.ErrServerClosed {
					logger.Error("status server failed", "err", err)
				}
			}()
		}

		ui := console.New(cfg, st, cmdr, console.Options{StaleAfter: runStale})
		if runReplay != "" {
			ui.Notify(fmt.Sprintf("replaying %s at %.1fx", runReplay, runSpeed))
			go func() {
				if err := feed.ReplayFile(runReplay, st, runSpeed, archivers...); err != nil {
					ui.Notify(fmt.Sprintf("replay failed: %v", err))
					return
				}
				ui.Notify("replay finished")
			}()
		} else {
			ui.SetFeedStatus(true)
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		_ = ui.Close()
		logger.Info("console stopped")
		return nil
	},
}

func displaySettings(d config.Display) store.DisplaySettings {
	layout := store.LayoutList
	if d.Layout == config.LayoutGrid {
		layout = store.LayoutGrid
	}
	return store.DisplaySettings{Layout: layout, ShowMissionIDs: d.ShowMissionIDs}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/console.yaml", "Path to console configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/console.cue", "Path to CUE schema file")
	runCmd.Flags().StringVar(&runReplay, "replay", "", "Replay a telemetry log file instead of connecting to the broker")
	runCmd.Flags().Float64Var(&runSpeed, "speed", 1.0, "Replay speed multiplier")
	runCmd.Flags().StringVar(&runRecord, "record", "", "Record the incoming telemetry to a JSONL file")
	runCmd.Flags().DurationVar(&runStale, "stale", 30*time.Second, "Drop fleet members unseen for this long")
	runCmd.Flags().StringVar(&runStatusAddr, "status-addr", "", "Status server listen address (overrides config)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
