package back

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// A PlayerStatus is one line of the dashboard.
type PlayerStatus struct {
	Player Player
	Due    float64
	Paid   bool
}

// An UnpaidReport lists who still owes money for a period and how much was
// collected from the players that already paid.
type UnpaidReport struct {
	Period         string
	TotalCollected float64
	Unpaid         []PlayerStatus
}

// AllPaid tells if every registered player paid for the period.
func (r *UnpaidReport) AllPaid() bool {
	return len(r.Unpaid) == 0
}

// GetUnpaidReport computes the unpaid set for the current period. A player
// is unpaid iff its last payment was recorded in another period, the
// collected total only sums over paid players.
func (b *Back) GetUnpaidReport() (report UnpaidReport, _ error) {
	report.Period = CurrentPeriod()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		players, err := getAllPlayers(tx)
		if err != nil {
			return err
		}

		for k := range players {
			if players[k].HasPaid(report.Period) {
				report.TotalCollected += players[k].LastPaidAmount.Float64
				continue
			}

			report.Unpaid = append(report.Unpaid, PlayerStatus{
				Player: players[k],
				Due:    players[k].Due(),
			})
		}

		return nil
	}); err != nil {
		return UnpaidReport{}, err
	}

	return report, nil
}

// GetDashboard returns the per-player status of every registered player,
// paid or not.
func (b *Back) GetDashboard() (statuses []PlayerStatus, _ error) {
	period := CurrentPeriod()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		players, err := getAllPlayers(tx)
		if err != nil {
			return err
		}

		statuses = make([]PlayerStatus, 0, len(players))
		for k := range players {
			statuses = append(statuses, PlayerStatus{
				Player: players[k],
				Due:    players[k].Due(),
				Paid:   players[k].HasPaid(period),
			})
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return statuses, nil
}

// DashboardLine formats one status the way it appears in the !dashboard
// output and on the ops channel.
func (s *PlayerStatus) DashboardLine() string {
	paid := "❌ Not paid"
	if s.Paid {
		paid = fmt.Sprintf("✅ Paid ($%.2f)", s.Player.LastPaidAmount.Float64)
	}

	return fmt.Sprintf(
		"- %s | Lvl %d | Due $%.2f | %s",
		s.Player.Name, s.Player.Level, s.Due, paid,
	)
}
