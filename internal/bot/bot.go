package bot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"tithe/internal/back"
	"tithe/internal/config"
	"tithe/internal/util"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

type commandHandler func(m *discordgo.Message, args []string, w io.Writer) error

// dmPacingInterval is the fixed delay between two outgoing reminder DMs,
// Discord gets grumpy when you DM a whole guild at once.
const dmPacingInterval = 1200 * time.Millisecond

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session
	discord   discordAPI
	dmPacer   *rate.Limiter

	// sendReminder delivers one reminder, tests substitute their own.
	sendReminder func(back.PlayerStatus) error

	handlers map[string]commandHandler
}

func New(back *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		back:      back,
		config:    conf,
		dg:        dg,
		discord:   dg,
		startedAt: time.Now(),
		dmPacer:   rate.NewLimiter(rate.Every(dmPacingInterval), 1),
	}
	bot.sendReminder = bot.sendReminderDM

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!help":     bot.cmdHelp,
		"!register": bot.cmdRegister,
		"!tax":      bot.cmdTax,
		"!pay":      bot.cmdPay,
		"!history":  bot.cmdHistory,

		"!level_up":      bot.cmdLevelUp,
		"!add_factories": bot.cmdAddFactories,

		// !admin_register is the historical name of targeted registration,
		// kept so muscle memory from the previous bot still works.
		"!admin_register": bot.cmdRegister,

		"!markpaid":      bot.cmdMarkPaid,
		"!set_level":     bot.cmdSetLevel,
		"!set_factories": bot.cmdSetFactories,
		"!grant":         bot.cmdGrant,
		"!revoke":        bot.cmdRevoke,
		"!unpaid":        bot.cmdUnpaid,
		"!dashboard":     bot.cmdDashboard,
		"!remind":        bot.cmdRemind,
		"!dev":           bot.cmdDev,
	}

	return bot, nil
}

func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	wg.Add(1)
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	go bot.consumeNotifications(done)

	<-done

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	if !bot.config.IsListenedGuild(m.GuildID) {
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	out, err := newUserChannelWriter(s, m.Author.ID)
	if err != nil {
		log.Printf("error: could not create channel writer: %s", err)
	}
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, please tell an admin.")
			log.Print("panic: ", r)
			log.Print(debug.Stack())
		}
	}()

	if err := bot.dispatch(m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if errors.Is(err, util.ErrPublic("")) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprint(out, "An admin will check the logs when he has time.")
		}

		log.Printf("error: failed to process command: %s", err)
	}

	if err := bot.maybeCleanupMessage(s, m.ChannelID, m.Message.ID); err != nil {
		log.Printf("error: unable to cleanup message: %s", err)
	}
}

func (bot *Bot) maybeCleanupMessage(s *discordgo.Session, channelID string, messageID string) error {
	channel, err := s.Channel(channelID)
	if err != nil {
		return err
	}

	if channel.Type != discordgo.ChannelTypeGuildText {
		return nil
	}

	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Printf("error: unable to delete message: %s", err)
	}

	return nil
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Split(cmd, " ")

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	handler, ok := bot.handlers[command]
	if !ok {
		return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}

	return handler(m, args, w)
}

func (bot *Bot) cmdHelp(m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Taxes
!help                          # display this help message
!register LEVEL FACTORIES      # register yourself (or update your data)
!tax                           # display how much you owe per day
!pay AMOUNT                    # record your own payment for today
!history [LIMIT]               # display your payment history
!level_up [AMOUNT]             # add levels to your account (default 1)
!add_factories [AMOUNT]        # add factories to your account (default 1)
'''`, "'''", "```"))

	if !bot.isTaxAdmin(m) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`Admin-only commands:
'''
!register LEVEL FACTORIES @member   # register another member
!pay AMOUNT @member                 # record a payment for another member
!markpaid @member AMOUNT [PROOF]    # record a payment with optional proof URL
!history [LIMIT] @member            # payment history of another member
!level_up [AMOUNT] @member          # add levels to another member
!add_factories [AMOUNT] @member     # add factories to another member
!set_level @member LEVEL            # set the exact level of a member
!set_factories @member FACTORIES    # set the exact factory count of a member
!grant @member                      # grant tax-admin (bot-level)
!revoke @member                     # revoke tax-admin (bot-level)
!unpaid                             # list players who did not pay today
!dashboard                          # per-player tax status
!remind [dm|admin|dm_and_admin]     # send payment reminders

!dev error     error out
!dev panic     panic and abort
!dev uptime    display for how long the server has been running
!dev url       display the link to use when adding the bot to a new server
'''`, "'''", "```"))

	return nil
}
