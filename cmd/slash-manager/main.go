package main

import (
	"flag"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/internal/commands"
	"github.com/latoulicious/Reactor/internal/config"
	"github.com/latoulicious/Reactor/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	action := flag.String("action", "", "Action to perform: register, delete-all, check")
	guildID := flag.String("guild", cfg.GuildID, "Guild to manage; empty means global commands")
	flag.Parse()

	logger := logging.NewStructuredLogger(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	if err := dg.Open(); err != nil {
		log.Fatalf("Failed to open Discord session: %v", err)
	}
	defer dg.Close()

	appID := dg.State.User.ID

	switch *action {
	case "register":
		defs := commands.Definitions(cfg.DefaultScanWindow, cfg.DefaultRemoveWindow)
		if err := commands.RegisterSlashCommands(dg, appID, *guildID, defs, logger); err != nil {
			log.Fatalf("Failed to register slash commands: %v", err)
		}
	case "delete-all":
		if err := commands.DeleteAllSlashCommands(dg, appID, *guildID, logger); err != nil {
			log.Fatalf("Failed to delete slash commands: %v", err)
		}
	case "check":
		checkCommands(dg, appID, *guildID)
	default:
		log.Println("Usage:")
		log.Println("  go run ./cmd/slash-manager -action register [-guild ID]")
		log.Println("  go run ./cmd/slash-manager -action delete-all [-guild ID]")
		log.Println("  go run ./cmd/slash-manager -action check [-guild ID]")
		dg.Close()
		os.Exit(1)
	}
}

// checkCommands lists the commands registered in one scope
func checkCommands(s *discordgo.Session, appID, guildID string) {
	scope := "global"
	if guildID != "" {
		scope = "guild " + guildID
	}

	registered, err := s.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Printf("Error fetching %s commands: %v", scope, err)
		return
	}
	if len(registered) == 0 {
		log.Printf("No %s commands found.", scope)
		return
	}
	for _, cmd := range registered {
		log.Printf("%s: %s (ID: %s) - %s", scope, cmd.Name, cmd.ID, cmd.Description)
	}
	log.Printf("Total %s commands: %d", scope, len(registered))
}
