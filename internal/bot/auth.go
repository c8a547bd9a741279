package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// discordAPI is the slice of the Discord session the authorization checks
// go through. Tests substitute a stub for it.
type discordAPI interface {
	Guild(guildID string) (*discordgo.Guild, error)
	UserChannelPermissions(userID string, channelID string) (int, error)
	GuildMember(guildID string, userID string) (*discordgo.Member, error)
}

// isTaxAdmin tells if the author of a message is allowed to run admin-only
// commands. The checks are ordered, cheapest first, and any failing lookup
// counts as a "no" for its sub-check rather than erroring out: an
// authorization check has no business taking down a command.
//
// A member is a tax-admin if any of:
//   - it owns the guild the message was sent in,
//   - it has been granted bot-level admin (cf. !grant),
//   - it holds the native administrator permission in the guild,
//   - it holds the configured admin role (when one is configured).
//
// In PMs there is no guild so only the bot-level grant applies.
func (bot *Bot) isTaxAdmin(m *discordgo.Message) bool {
	if m.GuildID != "" && bot.isGuildOwner(m.GuildID, m.Author.ID) {
		return true
	}

	if bot.back.IsBotAdmin(m.Author.ID) {
		return true
	}

	if m.GuildID == "" {
		return false
	}

	if bot.hasAdminPermission(m.Author.ID, m.ChannelID) {
		return true
	}

	return bot.hasAdminRole(m.GuildID, m.Author.ID)
}

func (bot *Bot) isGuildOwner(guildID, userID string) bool {
	guild, err := bot.discord.Guild(guildID)
	if err != nil {
		log.Printf("warning: unable to fetch guild %s: %s", guildID, err)
		return false
	}

	return guild.OwnerID == userID
}

func (bot *Bot) hasAdminPermission(userID, channelID string) bool {
	permissions, err := bot.discord.UserChannelPermissions(userID, channelID)
	if err != nil {
		log.Printf("warning: unable to fetch permissions of user %s: %s", userID, err)
		return false
	}

	return permissions&discordgo.PermissionAdministrator != 0
}

func (bot *Bot) hasAdminRole(guildID, userID string) bool {
	if bot.config.DiscordAdminRoleID == "" {
		return false
	}

	member, err := bot.discord.GuildMember(guildID, userID)
	if err != nil {
		log.Printf("warning: unable to fetch member %s: %s", userID, err)
		return false
	}

	for _, role := range member.Roles {
		if role == bot.config.DiscordAdminRoleID {
			return true
		}
	}

	return false
}
