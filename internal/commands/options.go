package commands

import "github.com/bwmarrin/discordgo"

// StringOption returns the named string option, or "" when absent
func StringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// IntOption returns the named integer option, or def when absent
func IntOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string, def int) int {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionInteger {
			return int(opt.IntValue())
		}
	}
	return def
}
