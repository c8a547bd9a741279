package back

import (
	"database/sql"
	"errors"
	"time"

	"tithe/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Payment is one entry of the append-only ledger. Rows are never updated
// nor deleted, paying twice in a period leaves two rows.
type Payment struct {
	ID        int64
	PlayerID  string
	PayerName string
	Amount    float64
	Proof     null.String
	AdminName string
	CreatedAt util.TimeAsTimestamp
}

func (p *Payment) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Payment").SetMap(squirrel.Eq{
		"PlayerID":  p.PlayerID,
		"PayerName": p.PayerName,
		"Amount":    p.Amount,
		"Proof":     p.Proof,
		"AdminName": p.AdminName,
		"CreatedAt": p.CreatedAt,
	}).ToSql()
	if err != nil {
		return err
	}

	res, err := tx.Exec(query, args...)
	if err != nil {
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

func getPaymentsByPlayerID(tx *sqlx.Tx, playerID string, limit int) ([]Payment, error) {
	var ret []Payment
	query := `SELECT * FROM Payment WHERE Payment.PlayerID = ?
              ORDER BY Payment.CreatedAt DESC LIMIT ?`
	if err := tx.Select(&ret, query, playerID, limit); err != nil {
		return nil, err
	}

	return ret, nil
}

// RecordPayment marks the player as having paid for the current period and
// appends a row to the ledger. The player must already be registered,
// nothing is written otherwise.
func (b *Back) RecordPayment(
	playerID string,
	amount float64,
	proof string,
	adminName string,
) (payment Payment, _ error) {
	if amount <= 0 {
		return Payment{}, util.ErrPublic("the amount must be greater than zero")
	}

	var player Player
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, playerID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.ErrPublic("this player is not registered, use `!register` first")
		} else if err != nil {
			return err
		}

		player.LastPaidPeriod = null.StringFrom(CurrentPeriod())
		player.LastPaidAmount = null.FloatFrom(amount)
		if err := player.update(tx); err != nil {
			return err
		}

		payment = Payment{
			PlayerID:  player.ID,
			PayerName: player.Name,
			Amount:    amount,
			Proof:     null.NewString(proof, proof != ""),
			AdminName: adminName,
			CreatedAt: util.TimeAsTimestamp(time.Now()),
		}

		return payment.insert(tx)
	}); err != nil {
		return Payment{}, err
	}

	b.sendPaymentAuditNotification(player, payment)

	return payment, nil
}

// PaymentHistory returns the most recent ledger entries for a player,
// newest first. The limit is clamped to [1, 50].
func (b *Back) PaymentHistory(playerID string, limit int) (payments []Payment, _ error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		payments, err = getPaymentsByPlayerID(tx, playerID, limit)
		return err
	}); err != nil {
		return nil, err
	}

	return payments, nil
}
