package back

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type NotificationRecipientType int

const (
	NotificationRecipientTypeDiscordChannel NotificationRecipientType = 0
	NotificationRecipientTypeDiscordUser    NotificationRecipientType = 1
)

type NotificationType int

const (
	NotificationTypeTaxReminder NotificationType = iota
	NotificationTypeSweepReport
	NotificationTypePaymentAudit
)

type Notification struct {
	RecipientType NotificationRecipientType
	Recipient     string
	Type          NotificationType
	Payload       map[string]interface{}

	body bytes.Buffer
}

func (n *Notification) Printf(str string, args ...interface{}) (int, error) {
	return fmt.Fprintf(&n.body, str, args...)
}

func (n *Notification) Print(args ...interface{}) (int, error) {
	return fmt.Fprint(&n.body, args...)
}

func (n *Notification) Read(p []byte) (int, error) {
	return n.body.Read(p)
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeTaxReminder:
		return "TaxReminder"
	case NotificationTypeSweepReport:
		return "SweepReport"
	case NotificationTypePaymentAudit:
		return "PaymentAudit"
	default:
		return "invalid"
	}
}

func NotificationRecipientTypeName(typ NotificationRecipientType) string {
	switch typ {
	case NotificationRecipientTypeDiscordChannel:
		return "DiscordChannel"
	case NotificationRecipientTypeDiscordUser:
		return "DiscordUser"
	default:
		return "invalid"
	}
}

// For debugging purposes only.
func (n *Notification) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(
		&buf,
		"type %s, recipient type %s \"%s\"",
		NotificationTypeName(n.Type),
		NotificationRecipientTypeName(n.RecipientType),
		n.Recipient,
	)

	// HACK: Ensure its on one line (and safe to print)
	content, _ := json.Marshal(n.body.String())
	fmt.Fprintf(&buf, ", contents: %s", string(content))

	return buf.String()
}

func (b *Back) sendTaxReminderNotification(status PlayerStatus) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordUser,
		Recipient:     status.Player.ID,
		Type:          NotificationTypeTaxReminder,
	}

	notif.Printf(
		"Hey %s, you have not paid your taxes for today yet.\n"+
			"You owe $%.2f (level %d, %d factories), please `!pay` or send the "+
			"money to an admin.",
		status.Player.Name, status.Due,
		status.Player.Level, status.Player.Factories,
	)

	b.notifications <- notif
}

func (b *Back) sendSweepReportNotification(runID uuid.UUID, report UnpaidReport) {
	if b.config.DiscordLogChannelID == "" {
		return
	}

	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     b.config.DiscordLogChannelID,
		Type:          NotificationTypeSweepReport,
	}

	notif.Printf("Daily tax sweep `%s`\n", runID)
	notif.Printf("Total collected today: $%.2f\n", report.TotalCollected)

	if report.AllPaid() {
		notif.Print("All paid ✅")
	} else {
		notif.Printf("Not paid (%d):\n", len(report.Unpaid))
		for _, v := range report.Unpaid {
			notif.Printf(
				"- %s | Lvl %d | %d factories | Due $%.2f\n",
				v.Player.Name, v.Player.Level, v.Player.Factories, v.Due,
			)
		}
	}

	b.notifications <- notif
}

func (b *Back) sendPaymentAuditNotification(player Player, payment Payment) {
	if b.config.DiscordLogChannelID == "" {
		return
	}

	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     b.config.DiscordLogChannelID,
		Type:          NotificationTypePaymentAudit,
		Payload: map[string]interface{}{
			"Player":  player,
			"Payment": payment,
		},
	}

	notif.Printf(
		"✅ Marked %s as paid $%.2f by %s.",
		player.Name, payment.Amount, payment.AdminName,
	)

	b.notifications <- notif
}
