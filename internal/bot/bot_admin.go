package bot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"tithe/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdGrant(m *discordgo.Message, _ []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	target := mentionedUser(m)
	if target == nil {
		return util.ErrPublic("expected `!grant @member`")
	}

	if err := bot.back.GrantAdmin(target.ID); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s is now a tax-admin.", target.Username)

	return nil
}

func (bot *Bot) cmdRevoke(m *discordgo.Message, _ []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	target := mentionedUser(m)
	if target == nil {
		return util.ErrPublic("expected `!revoke @member`")
	}

	if err := bot.back.RevokeAdmin(target.ID); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s is no longer a tax-admin.", target.Username)

	return nil
}

func (bot *Bot) cmdUnpaid(m *discordgo.Message, _ []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	report, err := bot.back.GetUnpaidReport()
	if err != nil {
		return err
	}

	lines := []string{fmt.Sprintf("Total collected today: $%.2f", report.TotalCollected)}
	if report.AllPaid() {
		lines = append(lines, "All paid ✅")
	} else {
		lines = append(lines, fmt.Sprintf("Not paid (%d):", len(report.Unpaid)))
		for _, v := range report.Unpaid {
			lines = append(lines, fmt.Sprintf("- %s: $%.2f", v.Player.Name, v.Due))
		}
	}

	if bot.sendToLogChannel(lines) {
		fmt.Fprint(w, "Sent the unpaid list to the log channel.")
		return nil
	}

	return bot.replyChunked(w, lines)
}

func (bot *Bot) cmdDashboard(m *discordgo.Message, _ []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	statuses, err := bot.back.GetDashboard()
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Fprint(w, "No players registered.")
		return nil
	}

	lines := make([]string, 0, len(statuses)+1)
	lines = append(lines, fmt.Sprintf("**Dashboard — Players: %d**", len(statuses)))
	for k := range statuses {
		lines = append(lines, statuses[k].DashboardLine())
	}

	if bot.sendToLogChannel(lines) {
		fmt.Fprint(w, "Sent the dashboard to the log channel.")
		return nil
	}

	return bot.replyChunked(w, lines)
}

// sendToLogChannel delivers the given lines to the configured ops channel,
// chunked. It returns false when no channel is configured or the delivery
// failed, the caller is expected to fall back to a direct reply.
func (bot *Bot) sendToLogChannel(lines []string) bool {
	if bot.config.DiscordLogChannelID == "" {
		return false
	}

	for _, chunk := range util.ChunkLines(lines, messageChunkSize) {
		cw := newChannelWriter(bot.dg, bot.config.DiscordLogChannelID)
		fmt.Fprint(cw, chunk)
		if err := cw.Flush(); err != nil {
			log.Printf("warning: unable to write to log channel: %s", err)
			return false
		}
	}

	return true
}

// replyChunked writes the lines back to the invoker, one message per chunk
// so Discord's message length limit is never hit mid-line.
func (bot *Bot) replyChunked(w io.Writer, lines []string) error {
	chunks := util.ChunkLines(lines, messageChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	// First chunk goes through the command writer, the rest need their own
	// flush or they would be concatenated over the limit again.
	fmt.Fprint(w, chunks[0])

	cw, ok := w.(*channelWriter)
	if !ok {
		for _, chunk := range chunks[1:] {
			fmt.Fprintf(w, "\n%s", chunk)
		}

		return nil
	}

	for _, chunk := range chunks[1:] {
		if err := cw.Flush(); err != nil {
			return err
		}

		fmt.Fprint(cw, chunk)
	}

	return nil
}

func (bot *Bot) cmdDev(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	if len(args) != 1 {
		return util.ErrPublic("expected `!dev error|panic|uptime|url`")
	}

	switch args[0] {
	case "error":
		return errors.New("the error you requested")
	case "panic":
		panic("the panic you requested")
	case "uptime":
		fmt.Fprintf(w, "The server has been up for %s.", util.FormatDuration(time.Since(bot.startedAt)))
	case "url":
		fmt.Fprintf(
			w,
			"https://discordapp.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionReadMessages|discordgo.PermissionSendMessages|
				discordgo.PermissionManageMessages|discordgo.PermissionEmbedLinks,
		)
	default:
		return util.ErrPublic("expected `!dev error|panic|uptime|url`")
	}

	return nil
}
