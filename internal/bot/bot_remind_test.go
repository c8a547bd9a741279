package bot

import (
	"errors"
	"reflect"
	"testing"

	"tithe/internal/back"

	"golang.org/x/time/rate"
)

func TestSendReminderDMsContinuesPastFailures(t *testing.T) {
	unpaid := []back.PlayerStatus{
		{Player: back.Player{ID: "1", Name: "Darunia"}},
		{Player: back.Player{ID: "2", Name: "Nabooru"}},
		{Player: back.Player{ID: "3", Name: "Rauru"}},
	}

	var attempted []string
	bot := &Bot{dmPacer: rate.NewLimiter(rate.Inf, 1)}
	bot.sendReminder = func(status back.PlayerStatus) error {
		attempted = append(attempted, status.Player.ID)
		if status.Player.ID == "2" {
			return errors.New("Cannot send messages to this user")
		}

		return nil
	}

	sent, failures := bot.sendReminderDMs(unpaid)

	if sent != 2 {
		t.Errorf("expected 2 reminders sent, got %d", sent)
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if got := failures[0].Error(); got != "Nabooru: Cannot send messages to this user" {
		t.Errorf("unexpected failure message: %s", got)
	}

	// The failed recipient must not have stopped the sweep.
	if expected := []string{"1", "2", "3"}; !reflect.DeepEqual(attempted, expected) {
		t.Errorf("expected attempts %v, got %v", expected, attempted)
	}
}

func TestSendReminderDMsAllPaid(t *testing.T) {
	bot := &Bot{dmPacer: rate.NewLimiter(rate.Inf, 1)}
	bot.sendReminder = func(back.PlayerStatus) error {
		t.Error("nothing to remind, nothing should be sent")
		return nil
	}

	sent, failures := bot.sendReminderDMs(nil)
	if sent != 0 || len(failures) != 0 {
		t.Errorf("expected an empty sweep, got %d sent and %d failures", sent, len(failures))
	}
}
