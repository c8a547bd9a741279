package bot

import (
	"errors"
	"io/ioutil"
	"os"
	"testing"

	"tithe/internal/back"
	"tithe/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// stubDiscord stands in for the live session in authorization tests.
type stubDiscord struct {
	ownerID     string
	permissions int
	roles       []string
	err         error
}

func (s *stubDiscord) Guild(guildID string) (*discordgo.Guild, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &discordgo.Guild{ID: guildID, OwnerID: s.ownerID}, nil
}

func (s *stubDiscord) UserChannelPermissions(userID string, channelID string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	return s.permissions, nil
}

func (s *stubDiscord) GuildMember(guildID string, userID string) (*discordgo.Member, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &discordgo.Member{Roles: s.roles}, nil
}

func guildMessage(authorID string) *discordgo.Message {
	return &discordgo.Message{
		GuildID:   "1",
		ChannelID: "2",
		Author:    &discordgo.User{ID: authorID},
	}
}

func TestIsTaxAdminGuildOwner(t *testing.T) {
	bot := &Bot{
		back:    createFixturedTestBack(t),
		config:  &config.Config{},
		discord: &stubDiscord{ownerID: "500"},
	}

	if !bot.isTaxAdmin(guildMessage("500")) {
		t.Error("the guild owner should be a tax-admin without any grant")
	}
	if bot.isTaxAdmin(guildMessage("501")) {
		t.Error("a plain member should not be a tax-admin")
	}
}

func TestIsTaxAdminGrant(t *testing.T) {
	b := createFixturedTestBack(t)
	if err := b.GrantAdmin("500"); err != nil {
		t.Fatal(err)
	}

	// Lookups all fail, only the grant table can say yes.
	bot := &Bot{
		back:    b,
		config:  &config.Config{DiscordAdminRoleID: "admins"},
		discord: &stubDiscord{err: errors.New("HTTP 503")},
	}

	if !bot.isTaxAdmin(guildMessage("500")) {
		t.Error("a granted member should be a tax-admin")
	}
	if bot.isTaxAdmin(guildMessage("501")) {
		t.Error("failing lookups should not make anyone a tax-admin")
	}
}

func TestIsTaxAdminNativePermission(t *testing.T) {
	bot := &Bot{
		back:    createFixturedTestBack(t),
		config:  &config.Config{},
		discord: &stubDiscord{permissions: discordgo.PermissionAdministrator},
	}

	if !bot.isTaxAdmin(guildMessage("500")) {
		t.Error("a native administrator should be a tax-admin")
	}
}

func TestIsTaxAdminConfiguredRole(t *testing.T) {
	discord := &stubDiscord{roles: []string{"mods", "admins"}}

	bot := &Bot{
		back:    createFixturedTestBack(t),
		config:  &config.Config{DiscordAdminRoleID: "admins"},
		discord: discord,
	}
	if !bot.isTaxAdmin(guildMessage("500")) {
		t.Error("a member holding the configured role should be a tax-admin")
	}

	bot.config = &config.Config{}
	if bot.isTaxAdmin(guildMessage("500")) {
		t.Error("without a configured role the role check should never pass")
	}
}

func TestIsTaxAdminDirectMessage(t *testing.T) {
	b := createFixturedTestBack(t)
	if err := b.GrantAdmin("500"); err != nil {
		t.Fatal(err)
	}

	// In PMs only the grant table applies, even the guild owner with the
	// native permission is nobody there.
	bot := &Bot{
		back:   b,
		config: &config.Config{DiscordAdminRoleID: "admins"},
		discord: &stubDiscord{
			ownerID:     "501",
			permissions: discordgo.PermissionAdministrator,
			roles:       []string{"admins"},
		},
	}

	dm := &discordgo.Message{ChannelID: "2", Author: &discordgo.User{ID: "500"}}
	if !bot.isTaxAdmin(dm) {
		t.Error("a granted member should be a tax-admin in PM")
	}

	dm.Author.ID = "501"
	if bot.isTaxAdmin(dm) {
		t.Error("guild-level privileges should not apply in PM")
	}
}

func createFixturedTestBack(t *testing.T) *back.Back {
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

	b, err := back.New("sqlite3", path, &config.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.LoadFixtures(); err != nil {
		t.Fatal(err)
	}

	return b
}
