package back

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tithe/internal/config"
	"tithe/internal/util"

	"github.com/jmoiron/sqlx"
)

// Back holds the storage and the domain logic, any I/O with Discord is left
// to the bot which consumes our notifications channel.
type Back struct {
	db     *sqlx.DB
	config *config.Config

	notifications chan Notification

	// last period for which the automatic reminder sweep ran, guarded by
	// the periodic goroutine being the only writer.
	lastSweepPeriod string
}

func New(sqlDriver string, sqlDSN string, conf *config.Config) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	// SQLite does not like concurrent writers.
	db.SetMaxOpenConns(1)

	return &Back{
		db:            db,
		config:        conf,
		notifications: make(chan Notification, 32),
	}, nil
}

// GetNotificationsChan returns the channel the bot must consume to deliver
// the notifications generated by the Back.
func (b *Back) GetNotificationsChan() <-chan Notification {
	return b.notifications
}

func (b *Back) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Print("info: starting Back dæmon")

	for {
		if err := b.runPeriodicTasks(); err != nil {
			log.Printf("error: runPeriodicTasks: %s", err)
		}

		select {
		case <-time.After(1 * time.Minute):
		case <-done:
			return
		}
	}
}

type transactionCallback func(*sqlx.Tx) error

func (b *Back) transaction(cb transactionCallback) error {
	return util.Transaction(context.Background(), b.db, util.TransactionCallback(cb))
}

// CurrentPeriod returns the marker of the ongoing tax period. Taxes are due
// once per calendar day in the host timezone.
func CurrentPeriod() string {
	return time.Now().Format("2006-01-02")
}

func (b *Back) LoadFixtures() error {
	players := []Player{
		NewPlayer("90000000000000001", "Darunia", 3, 0),
		NewPlayer("90000000000000002", "Nabooru", 7, 2),
		NewPlayer("90000000000000003", "Rauru", 12, 4),
		NewPlayer("90000000000000004", "Ruto", 18, 3),
		NewPlayer("90000000000000005", "Saria", 23, 6),
		NewPlayer("90000000000000006", "Zelda", 30, 10),
	}

	return b.transaction(func(tx *sqlx.Tx) error {
		for _, v := range players {
			if err := v.insert(tx); err != nil {
				return fmt.Errorf("unable to insert fixtured Player: %w", err)
			}
		}

		return nil
	})
}
