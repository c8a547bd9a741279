package back

import (
	"database/sql"
	"errors"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// GrantAdmin adds a Discord user ID to the bot-admin set, independently of
// any native Discord permission. Granting twice is a no-op.
func (b *Back) GrantAdmin(discordID string) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		if isBotAdmin(tx, discordID) {
			return nil
		}

		query, args, err := squirrel.Insert("BotAdmin").SetMap(squirrel.Eq{
			"ID": discordID,
		}).ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(query, args...)
		return err
	})
}

// RevokeAdmin removes a Discord user ID from the bot-admin set. Revoking a
// user that was never granted is a no-op.
func (b *Back) RevokeAdmin(discordID string) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`DELETE FROM BotAdmin WHERE BotAdmin.ID = ?`, discordID)
		return err
	})
}

// IsBotAdmin tells if a Discord user ID was granted bot-admin. Lookup
// failures degrade to false, this is an authorization sub-check and must
// never propagate an error.
func (b *Back) IsBotAdmin(discordID string) (admin bool) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		admin = isBotAdmin(tx, discordID)
		return nil
	}); err != nil {
		log.Printf("error: unable to check BotAdmin: %s", err)
		return false
	}

	return admin
}

func isBotAdmin(tx *sqlx.Tx, discordID string) bool {
	var id string
	err := tx.Get(&id, `SELECT ID FROM BotAdmin WHERE BotAdmin.ID = ? LIMIT 1`, discordID)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	} else if err != nil {
		log.Printf("error: unable to fetch BotAdmin: %s", err)
		return false
	}

	return true
}
