package bot

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"tithe/internal/back"

	"github.com/bwmarrin/discordgo"
)

// consumeNotifications delivers the notifications the Back generates on its
// own (daily sweep, payment audits). Delivery is best effort: a failed
// notification is logged and dropped, never retried.
func (bot *Bot) consumeNotifications(done <-chan struct{}) {
	for {
		select {
		case notif := <-bot.back.GetNotificationsChan():
			if err := bot.sendNotification(notif); err != nil {
				log.Printf("error: unable to send notification: %s", err)
			}
		case <-done:
			return
		}
	}
}

func (bot *Bot) sendNotification(notif back.Notification) error {
	log.Printf("info: sending notification: %s", notif.String())

	switch notif.Type {
	case back.NotificationTypeTaxReminder:
		// Same pacing as the interactive sweep, cf. bot_remind.go.
		if err := bot.dmPacer.Wait(context.Background()); err != nil {
			log.Printf("error: pacer wait: %s", err)
		}

		return bot.sendTextNotification(notif)
	case back.NotificationTypeSweepReport:
		return bot.sendTextNotification(notif)
	case back.NotificationTypePaymentAudit:
		return bot.sendPaymentAuditNotification(notif)
	default:
		return fmt.Errorf("got unknown notification type: %d", notif.Type)
	}
}

func (bot *Bot) sendTextNotification(notif back.Notification) error {
	w, err := bot.getWriterForNotification(notif)
	if err != nil {
		return err
	}

	body, err := ioutil.ReadAll(&notif)
	if err != nil {
		return err
	}

	if _, err := w.Write(body); err != nil {
		return err
	}

	return w.Flush()
}

func (bot *Bot) sendPaymentAuditNotification(notif back.Notification) error {
	w, err := bot.getWriterForNotification(notif)
	if err != nil {
		return err
	}

	player := notif.Payload["Player"].(back.Player)
	payment := notif.Payload["Payment"].(back.Payment)

	embed := &discordgo.MessageEmbed{
		Title:     "Payment recorded",
		Color:     0x2ecc71,
		Timestamp: payment.CreatedAt.Time().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Player", Value: fmt.Sprintf("<@%s> (%s)", player.ID, player.Name), Inline: true},
			{Name: "Amount", Value: fmt.Sprintf("$%.2f", payment.Amount), Inline: true},
			{Name: "By", Value: payment.AdminName, Inline: true},
		},
	}

	if payment.Proof.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Proof",
			Value: payment.Proof.String,
		})
		embed.Image = &discordgo.MessageEmbedImage{URL: payment.Proof.String}
	}

	w.setEmbed(embed)

	return w.Flush()
}

func (bot *Bot) getWriterForNotification(notif back.Notification) (*channelWriter, error) {
	switch notif.RecipientType {
	case back.NotificationRecipientTypeDiscordUser:
		return newUserChannelWriter(bot.dg, notif.Recipient)
	case back.NotificationRecipientTypeDiscordChannel:
		return newChannelWriter(bot.dg, notif.Recipient), nil
	default:
		return nil, fmt.Errorf("cannot handle recipient type: %d", notif.RecipientType)
	}
}
