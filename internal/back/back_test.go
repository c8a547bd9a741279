package back

import (
	"errors"
	"io/ioutil"
	"os"
	"testing"

	"tithe/internal/config"
	"tithe/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func TestRegisterIsAnUpsert(t *testing.T) {
	back := createFixturedTestBack(t)

	player, err := back.RegisterPlayer("1000", "Malon", 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if player.Due() != 1.0 {
		t.Errorf("expected 1.0 got %f", player.Due())
	}

	if _, err := back.RecordPayment("1000", 1.0, "", "Impa"); err != nil {
		t.Fatal(err)
	}

	player, err = back.RegisterPlayer("1000", "Malon of Lon Lon", 12, 4)
	if err != nil {
		t.Fatal(err)
	}

	if player.Name != "Malon of Lon Lon" || player.Level != 12 || player.Factories != 4 {
		t.Errorf("re-registration did not overwrite fields: %+v", player)
	}
	if !player.HasPaid(CurrentPeriod()) {
		t.Error("re-registration reset the payment state")
	}
	if player.LastPaidAmount.Float64 != 1.0 {
		t.Errorf("expected 1.0 got %f", player.LastPaidAmount.Float64)
	}
}

func TestRegisterRejectsInvalidLevel(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RegisterPlayer("1000", "Malon", 0, 0); !errors.Is(err, util.ErrPublic("")) {
		t.Errorf("expected a public error, got %v", err)
	}
}

func TestRecordPaymentExcludesFromUnpaid(t *testing.T) {
	back := createFixturedTestBack(t)

	report, err := back.GetUnpaidReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unpaid) != 6 {
		t.Fatalf("expected 6 unpaid players, got %d", len(report.Unpaid))
	}
	if report.TotalCollected != 0.0 {
		t.Errorf("expected 0.0 got %f", report.TotalCollected)
	}

	// Rauru is level 12 with 4 factories: 3.0 + 2.0.
	if _, err := back.RecordPayment("90000000000000003", 5.0, "", "Impa"); err != nil {
		t.Fatal(err)
	}

	report, err = back.GetUnpaidReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unpaid) != 5 {
		t.Fatalf("expected 5 unpaid players, got %d", len(report.Unpaid))
	}
	for _, v := range report.Unpaid {
		if v.Player.ID == "90000000000000003" {
			t.Error("Rauru paid but is still in the unpaid set")
		}
	}
	if report.TotalCollected != 5.0 {
		t.Errorf("expected 5.0 got %f", report.TotalCollected)
	}
}

func TestRecordPaymentKeepsFullLedger(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RecordPayment("90000000000000002", 1.0, "", "Impa"); err != nil {
		t.Fatal(err)
	}
	if _, err := back.RecordPayment("90000000000000002", 2.5, "", "Zelda"); err != nil {
		t.Fatal(err)
	}

	player, err := back.GetPlayer("90000000000000002")
	if err != nil {
		t.Fatal(err)
	}
	if player.LastPaidAmount.Float64 != 2.5 {
		t.Errorf("expected the latest payment to win, got %f", player.LastPaidAmount.Float64)
	}

	payments, err := back.PaymentHistory("90000000000000002", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 2 {
		t.Errorf("expected 2 ledger entries, got %d", len(payments))
	}
}

func TestRecordPaymentOnUnregisteredWritesNothing(t *testing.T) {
	back := createFixturedTestBack(t)

	_, err := back.RecordPayment("666", 1.0, "", "Impa")
	if !errors.Is(err, util.ErrPublic("")) {
		t.Fatalf("expected a public error, got %v", err)
	}

	if err := back.transaction(func(tx *sqlx.Tx) error {
		var count int
		if err := tx.Get(&count, `SELECT COUNT(*) FROM Payment`); err != nil {
			return err
		}
		if count != 0 {
			t.Errorf("expected an empty ledger, got %d rows", count)
		}

		if err := tx.Get(&count, `SELECT COUNT(*) FROM Player WHERE ID = "666"`); err != nil {
			return err
		}
		if count != 0 {
			t.Errorf("expected no player row, got %d", count)
		}

		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestAdjustLevelAndFactories(t *testing.T) {
	back := createFixturedTestBack(t)

	// Darunia starts at level 3 with 0 factories.
	old, curr, err := back.AdjustLevel("90000000000000001", 2)
	if err != nil {
		t.Fatal(err)
	}
	if old != 3 || curr != 5 {
		t.Errorf("expected 3 → 5, got %d → %d", old, curr)
	}

	if _, _, err := back.AdjustLevel("90000000000000001", 0); !errors.Is(err, util.ErrPublic("")) {
		t.Errorf("expected a public error, got %v", err)
	}

	old, curr, err = back.AdjustFactories("90000000000000001", 3)
	if err != nil {
		t.Fatal(err)
	}
	if old != 0 || curr != 3 {
		t.Errorf("expected 0 → 3, got %d → %d", old, curr)
	}

	if err := back.SetLevel("90000000000000001", 0); !errors.Is(err, util.ErrPublic("")) {
		t.Errorf("expected a public error, got %v", err)
	}
	if err := back.SetFactories("90000000000000001", 0); err != nil {
		t.Errorf("setting 0 factories should be allowed: %v", err)
	}
}

func TestGrantRevokeAdmin(t *testing.T) {
	back := createFixturedTestBack(t)

	if back.IsBotAdmin("42") {
		t.Error("expected no admin before grant")
	}

	if err := back.GrantAdmin("42"); err != nil {
		t.Fatal(err)
	}
	if err := back.GrantAdmin("42"); err != nil {
		t.Fatalf("granting twice should be a no-op: %v", err)
	}
	if !back.IsBotAdmin("42") {
		t.Error("expected admin after grant")
	}

	if err := back.RevokeAdmin("42"); err != nil {
		t.Fatal(err)
	}
	if back.IsBotAdmin("42") {
		t.Error("expected no admin after revoke")
	}
}

func TestDashboardCoversEveryPlayer(t *testing.T) {
	back := createFixturedTestBack(t)

	if _, err := back.RecordPayment("90000000000000006", 17.0, "", "Impa"); err != nil {
		t.Fatal(err)
	}

	statuses, err := back.GetDashboard()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 6 {
		t.Fatalf("expected 6 statuses, got %d", len(statuses))
	}

	var paid int
	for k := range statuses {
		if statuses[k].Paid {
			paid++

			expected := "- Zelda | Lvl 30 | Due $17.00 | ✅ Paid ($17.00)"
			if actual := statuses[k].DashboardLine(); actual != expected {
				t.Errorf("expected %q got %q", expected, actual)
			}
		}
	}
	if paid != 1 {
		t.Errorf("expected 1 paid player, got %d", paid)
	}
}

func createFixturedTestBack(t *testing.T) *Back {
	f, err := ioutil.TempFile("", "*.db")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() {
		os.Remove(path)
	})

	migrator, err := migrate.New(
		"file://../../resources/migrations",
		"sqlite3://"+path,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatal(err)
	}
	migrator.Close()

	back, err := New("sqlite3", path, &config.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := back.LoadFixtures(); err != nil {
		t.Fatal(err)
	}

	return back
}
