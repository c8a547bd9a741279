package back

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// runDailyReminderSweep sends a DM to every unpaid player and a summary to
// the ops channel, once per period, at the configured hour.
func (b *Back) runDailyReminderSweep() error {
	if !b.config.ReminderEnabled {
		return nil
	}

	if time.Now().Hour() != b.config.ReminderHour {
		return nil
	}

	period := CurrentPeriod()
	if b.lastSweepPeriod == period {
		return nil
	}

	report, err := b.GetUnpaidReport()
	if err != nil {
		return err
	}
	b.lastSweepPeriod = period

	runID := uuid.New()
	log.Printf("info: starting reminder sweep %s, %d unpaid", runID, len(report.Unpaid))

	for _, v := range report.Unpaid {
		b.sendTaxReminderNotification(v)
	}

	b.sendSweepReportNotification(runID, report)

	return nil
}

func (b *Back) runPeriodicTasks() error {
	return b.runDailyReminderSweep()
}
