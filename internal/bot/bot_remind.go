package bot

import (
	"context"
	"fmt"
	"io"
	"log"

	"tithe/internal/back"
	"tithe/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

type remindMode int

const (
	remindModeDM remindMode = iota
	remindModeAdmin
	remindModeDMAndAdmin
)

func parseRemindMode(args []string) (remindMode, error) {
	if len(args) == 0 {
		return remindModeDMAndAdmin, nil
	}

	switch args[0] {
	case "dm":
		return remindModeDM, nil
	case "admin":
		return remindModeAdmin, nil
	case "dm_and_admin":
		return remindModeDMAndAdmin, nil
	default:
		return 0, util.ErrPublic("expected `!remind [dm|admin|dm_and_admin]`")
	}
}

// cmdRemind runs a reminder sweep: DM every unpaid player and/or send an
// aggregate report to the ops channel. The sweep is best effort, a player
// that can't be reached (closed DMs, left the guild…) is reported as a
// failure and does not stop the sweep.
func (bot *Bot) cmdRemind(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	mode, err := parseRemindMode(args)
	if err != nil {
		return err
	}

	report, err := bot.back.GetUnpaidReport()
	if err != nil {
		return err
	}

	runID := uuid.New()
	log.Printf("info: starting reminder sweep %s, %d unpaid", runID, len(report.Unpaid))

	var (
		sent     int
		failures []error
	)

	if mode == remindModeDM || mode == remindModeDMAndAdmin {
		sent, failures = bot.sendReminderDMs(report.Unpaid)
	}

	if mode == remindModeAdmin || mode == remindModeDMAndAdmin {
		lines := sweepReportLines(runID, report, failures)
		if !bot.sendToLogChannel(lines) {
			if err := bot.replyChunked(w, lines); err != nil {
				return err
			}
			fmt.Fprint(w, "\n")
		}
	}

	fmt.Fprintf(w, "Sweep `%s` done: %d reminded, %d failed.", runID, sent, len(failures))
	if err := util.ConcatErrors(failures); err != nil {
		fmt.Fprintf(w, "\n⚠ Failures: %s", err)
	}

	return nil
}

// sendReminderDMs notifies every unpaid player sequentially, paced by the
// shared limiter so a large roster does not trip Discord's rate limits.
func (bot *Bot) sendReminderDMs(unpaid []back.PlayerStatus) (sent int, failures []error) {
	for _, v := range unpaid {
		if err := bot.dmPacer.Wait(context.Background()); err != nil {
			log.Printf("error: pacer wait: %s", err)
		}

		if err := bot.sendReminder(v); err != nil {
			log.Printf("warning: unable to remind %s: %s", v.Player.ID, err)
			failures = append(failures, fmt.Errorf("%s: %w", v.Player.Name, err))
			continue
		}

		sent++
	}

	return sent, failures
}

func (bot *Bot) sendReminderDM(status back.PlayerStatus) error {
	w, err := newUserChannelWriter(bot.dg, status.Player.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w,
		"Hey %s, you have not paid your taxes for today yet.\n"+
			"You owe $%.2f (level %d, %d factories), please `!pay` or send the "+
			"money to an admin.",
		status.Player.Name, status.Due,
		status.Player.Level, status.Player.Factories,
	)

	return w.Flush()
}

func sweepReportLines(runID uuid.UUID, report back.UnpaidReport, failures []error) []string {
	lines := []string{
		fmt.Sprintf("Tax sweep `%s`", runID),
		fmt.Sprintf("Total collected today: $%.2f", report.TotalCollected),
	}

	if report.AllPaid() {
		return append(lines, "All paid ✅")
	}

	lines = append(lines, fmt.Sprintf("Not paid (%d):", len(report.Unpaid)))
	for _, v := range report.Unpaid {
		lines = append(lines, fmt.Sprintf(
			"- %s | Lvl %d | %d factories | Due $%.2f",
			v.Player.Name, v.Player.Level, v.Player.Factories, v.Due,
		))
	}

	if len(failures) > 0 {
		lines = append(lines, fmt.Sprintf("Could not remind (%d):", len(failures)))
		for _, v := range failures {
			lines = append(lines, fmt.Sprintf("- %s", v))
		}
	}

	return lines
}
