package back

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tithe/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a community member subject to the daily tax. It is keyed by
// its Discord user ID and is never deleted, only overwritten by
// re-registration.
type Player struct {
	ID        string // Discord user ID
	CreatedAt util.TimeAsTimestamp
	Name      string
	Level     int
	Factories int

	// LastPaidPeriod is the period marker (cf. CurrentPeriod) of the last
	// recorded payment, null if the player never paid. LastPaidAmount is
	// meaningless when LastPaidPeriod is null.
	LastPaidPeriod null.String
	LastPaidAmount null.Float
}

func NewPlayer(discordID, name string, level, factories int) Player {
	return Player{
		ID:        discordID,
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
		Level:     level,
		Factories: factories,
	}
}

// HasPaid tells if the player already paid for the given period.
func (p *Player) HasPaid(period string) bool {
	return p.LastPaidPeriod.Valid && p.LastPaidPeriod.String == period
}

// Due returns the amount the player owes per period.
func (p *Player) Due() float64 {
	return TotalTax(p.Level, p.Factories)
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":             p.ID,
		"CreatedAt":      p.CreatedAt,
		"Name":           p.Name,
		"Level":          p.Level,
		"Factories":      p.Factories,
		"LastPaidPeriod": p.LastPaidPeriod,
		"LastPaidAmount": p.LastPaidAmount,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":           p.Name,
		"Level":          p.Level,
		"Factories":      p.Factories,
		"LastPaidPeriod": p.LastPaidPeriod,
		"LastPaidAmount": p.LastPaidAmount,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getPlayerByID(tx *sqlx.Tx, id string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getAllPlayers(tx *sqlx.Tx) ([]Player, error) {
	var ret []Player
	query := `SELECT * FROM Player ORDER BY Player.Name ASC`
	if err := tx.Select(&ret, query); err != nil {
		return nil, err
	}

	return ret, nil
}

// GetPlayer returns the registered player for the given Discord ID or a
// public error when there is none.
func (b *Back) GetPlayer(discordID string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, discordID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.ErrPublic("this player is not registered, use `!register` first")
		}

		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// RegisterPlayer upserts a player. Re-registering overwrites the name,
// level and factory count but never resets the payment state.
func (b *Back) RegisterPlayer(discordID, name string, level, factories int) (player Player, _ error) {
	if level < 1 {
		return Player{}, util.ErrPublic("your level must be at least 1")
	}
	if factories < 0 {
		return Player{}, util.ErrPublic("you can't have a negative amount of factories")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		existing, err := getPlayerByID(tx, discordID)
		if errors.Is(err, sql.ErrNoRows) {
			player = NewPlayer(discordID, name, level, factories)
			return player.insert(tx)
		} else if err != nil {
			return err
		}

		existing.Name = name
		existing.Level = level
		existing.Factories = factories
		player = existing

		return existing.update(tx)
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

// AdjustLevel adds delta levels to a player, the result is floored at 1.
func (b *Back) AdjustLevel(discordID string, delta int) (old, curr int, _ error) {
	if delta < 1 {
		return 0, 0, util.ErrPublic("the amount of levels to add must be at least 1")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, discordID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.ErrPublic("this player is not registered, use `!register` first")
		} else if err != nil {
			return err
		}

		old = player.Level
		player.Level = max(1, player.Level+delta)
		curr = player.Level

		return player.update(tx)
	}); err != nil {
		return 0, 0, err
	}

	return old, curr, nil
}

// AdjustFactories adds delta factories to a player, the result is floored
// at 0.
func (b *Back) AdjustFactories(discordID string, delta int) (old, curr int, _ error) {
	if delta < 1 {
		return 0, 0, util.ErrPublic("the amount of factories to add must be at least 1")
	}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, discordID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.ErrPublic("this player is not registered, use `!register` first")
		} else if err != nil {
			return err
		}

		old = player.Factories
		player.Factories = max(0, player.Factories+delta)
		curr = player.Factories

		return player.update(tx)
	}); err != nil {
		return 0, 0, err
	}

	return old, curr, nil
}

// SetLevel sets the exact level of a player.
func (b *Back) SetLevel(discordID string, level int) error {
	if level < 1 {
		return util.ErrPublic("the level must be at least 1")
	}

	return b.setPlayerField(discordID, func(p *Player) { p.Level = level })
}

// SetFactories sets the exact factory count of a player.
func (b *Back) SetFactories(discordID string, factories int) error {
	if factories < 0 {
		return util.ErrPublic("the amount of factories must be at least 0")
	}

	return b.setPlayerField(discordID, func(p *Player) { p.Factories = factories })
}

func (b *Back) setPlayerField(discordID string, set func(*Player)) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByID(tx, discordID)
		if errors.Is(err, sql.ErrNoRows) {
			return util.ErrPublic("this player is not registered, use `!register` first")
		} else if err != nil {
			return fmt.Errorf("unable to fetch Player: %w", err)
		}

		set(&player)
		return player.update(tx)
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}
