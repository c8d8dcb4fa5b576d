package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/weftlabs/weft/pkg/actions"
	"github.com/weftlabs/weft/pkg/analytics"
	"github.com/weftlabs/weft/pkg/cmd"
	"github.com/weftlabs/weft/pkg/collaborators"
	"github.com/weftlabs/weft/pkg/engine"
	"github.com/weftlabs/weft/pkg/log"
)

const defaultRefreshInterval = 30 * time.Second

func main() {
	logger := log.WithModule("scheduler")

	command := &cli.Command{
		Name:                  "weft-scheduler",
		Usage:                 "Run workflows on their declared schedules",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Store URL (memory://, file://dir, redis://, postgres://); in-memory when empty",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for execution lifecycle events (none, gochannel, kafka)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker addresses",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "export-dir",
				Usage:   "Directory data_export actions write into",
				Value:   "./exports",
				Sources: cli.EnvVars("EXPORT_DIR"),
			},
			&cli.DurationFlag{
				Name:    "refresh-interval",
				Usage:   "How often to reconcile schedules against the store",
				Value:   defaultRefreshInterval,
				Sources: cli.EnvVars("REFRESH_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Weft scheduler")

			st, err := cmd.NewStore(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("initialize store: %w", err)
			}

			defer func() {
				if err := st.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close store", "error", err)
				}
			}()

			bus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
			if err != nil {
				return fmt.Errorf("initialize event bus: %w", err)
			}

			if bus != nil {
				defer func() {
					if err := bus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			local := collaborators.Local(logger, command.String("export-dir"))
			dispatcher := actions.NewDispatcher(local, logger)
			recorder := analytics.NewRecorder(st, logger)
			eng := engine.New(st, dispatcher, local.Classifier, recorder, bus, nil, logger)

			manager := NewManager(logger, st, eng, command.Duration("refresh-interval"))

			return manager.Start(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
