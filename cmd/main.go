package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/internal/commands"
	"github.com/latoulicious/Reactor/internal/config"
	"github.com/latoulicious/Reactor/internal/handlers"
	"github.com/latoulicious/Reactor/internal/metrics"
	"github.com/latoulicious/Reactor/internal/platform"
	"github.com/latoulicious/Reactor/internal/presence"
	"github.com/latoulicious/Reactor/pkg/cron"
	"github.com/latoulicious/Reactor/pkg/database"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewStructuredLogger(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.NewStdLogAdapter(logger).SetAsStdLogger()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions

	discord := platform.NewDiscord(dg, logger)

	collector := metrics.NewCollector()
	observers := []reactor.Observer{collector}

	var activityLog *database.ActivityLog
	if cfg.DatabasePath != "" {
		activityLog, err = database.OpenActivityLog(cfg.DatabasePath, logger)
		if err != nil {
			log.Fatalf("Failed to open activity log: %v", err)
		}
		defer activityLog.Close()
		observers = append(observers, activityLog)
	}

	presenceManager := presence.NewManager(dg, logger).WithChannelNames(func(channelID string) string {
		if ch, err := dg.State.Channel(channelID); err == nil {
			return ch.Name
		}
		return ""
	})

	engine := reactor.NewEngine(discord, discord,
		reactor.WithLogger(logger),
		reactor.WithHistoryLimit(cfg.HistoryLimit),
		reactor.WithObservers(observers...),
		reactor.WithStateListener(presenceManager),
		reactor.WithStateListener(collector),
	)

	router := handlers.NewRouter(engine, handlers.Defaults{
		ScanWindow:   cfg.DefaultScanWindow,
		RemoveWindow: cfg.DefaultRemoveWindow,
	}, logger)
	defer router.Close()

	dg.AddHandler(router.MessageHandler)
	dg.AddHandler(router.SlashCommandHandler)

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		log.Fatalf("Failed to open Discord session: %v", err)
	}
	defer dg.Close()

	defs := commands.Definitions(cfg.DefaultScanWindow, cfg.DefaultRemoveWindow)
	if err := commands.RegisterSlashCommands(dg, dg.State.User.ID, cfg.GuildID, defs, logger); err != nil {
		log.Fatalf("Failed to register slash commands: %v", err)
	}

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.Add("presence", cfg.PresenceSchedule, presenceManager.Refresh); err != nil {
		logger.Warn("Presence refresh disabled", logging.Error(err))
	}
	if activityLog != nil {
		err := scheduler.Add("activity_cleanup", cfg.CleanupSchedule, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := activityLog.CleanOlderThan(ctx, cfg.ActivityRetention)
			if err == nil && n > 0 {
				logger.Info("Pruned activity log", logging.Any("rows", n))
			}
			return err
		})
		if err != nil {
			logger.Warn("Activity cleanup disabled", logging.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()
	scheduler.RunNow("presence")

	if cfg.MetricsAddr != "" {
		health := metrics.Health{
			Snapshot:   engine.Snapshot,
			HistoryLen: engine.HistoryLen,
			Jobs:       scheduler,
		}
		if activityLog != nil {
			health.Activity = activityLog
		}
		server := metrics.NewServer(cfg.MetricsAddr, metrics.NewRouter(collector, health), logger)
		server.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	logger.Info("Bot is running. Press CTRL-C to exit.", logging.String("user", dg.State.User.Username))
	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("Shutting down")
}
