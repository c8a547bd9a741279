package bot

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"tithe/internal/back"
	"tithe/internal/util"

	"github.com/bwmarrin/discordgo"
)

// mentionedUser returns the first user mentioned in a message, nil if none.
func mentionedUser(m *discordgo.Message) *discordgo.User {
	if len(m.Mentions) == 0 {
		return nil
	}

	return m.Mentions[0]
}

// positionalArgs strips mention tokens so numeric arguments keep a stable
// position regardless of where the user put the @mention.
func positionalArgs(args []string) []string {
	ret := make([]string, 0, len(args))
	for _, v := range args {
		if strings.HasPrefix(v, "<@") {
			continue
		}

		ret = append(ret, v)
	}

	return ret
}

func parseIntArg(name, v string) (int, error) {
	ret, err := strconv.Atoi(v)
	if err != nil {
		return 0, util.ErrPublic(fmt.Sprintf("`%s` is not a valid %s", v, name))
	}

	return ret, nil
}

func parseFloatArg(name, v string) (float64, error) {
	ret, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, util.ErrPublic(fmt.Sprintf("`%s` is not a valid %s", v, name))
	}

	return ret, nil
}

// resolveTarget returns the player a command operates on: the mentioned
// member if any, the author otherwise. Targeting someone else is admin-only.
func (bot *Bot) resolveTarget(m *discordgo.Message) (*discordgo.User, error) {
	target := mentionedUser(m)
	if target == nil || target.ID == m.Author.ID {
		return m.Author, nil
	}

	if !bot.isTaxAdmin(m) {
		return nil, util.ErrPublic("only admins can act on other members")
	}

	return target, nil
}

func (bot *Bot) cmdRegister(m *discordgo.Message, args []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	args = positionalArgs(args)
	if len(args) != 2 {
		return util.ErrPublic("expected `!register LEVEL FACTORIES [@member]`")
	}

	level, err := parseIntArg("level", args[0])
	if err != nil {
		return err
	}
	factories, err := parseIntArg("factory count", args[1])
	if err != nil {
		return err
	}

	player, err := bot.back.RegisterPlayer(target.ID, target.Username, level, factories)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w,
		"✅ Registered %s at level %d with %d factories.\nDaily tax: $%.2f",
		player.Name, player.Level, player.Factories, player.Due(),
	)

	return nil
}

func (bot *Bot) cmdTax(m *discordgo.Message, _ []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	player, err := bot.back.GetPlayer(target.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w,
		"%s owes $%.2f per day (level %d: $%.2f, %d factories: $%.2f).",
		player.Name, player.Due(),
		player.Level, back.TierAmount(player.Level),
		player.Factories, back.FactorySurcharge(player.Factories),
	)

	return nil
}

func (bot *Bot) cmdPay(m *discordgo.Message, args []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	args = positionalArgs(args)
	if len(args) != 1 {
		return util.ErrPublic("expected `!pay AMOUNT [@member]`")
	}

	amount, err := parseFloatArg("amount", args[0])
	if err != nil {
		return err
	}

	payment, err := bot.back.RecordPayment(target.ID, amount, "", m.Author.Username)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Recorded a payment of $%.2f for %s.", payment.Amount, payment.PayerName)

	return nil
}

func (bot *Bot) cmdMarkPaid(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	target := mentionedUser(m)
	if target == nil {
		return util.ErrPublic("expected `!markpaid @member AMOUNT [PROOF_URL]`")
	}

	args = positionalArgs(args)
	if len(args) < 1 || len(args) > 2 {
		return util.ErrPublic("expected `!markpaid @member AMOUNT [PROOF_URL]`")
	}

	amount, err := parseFloatArg("amount", args[0])
	if err != nil {
		return err
	}

	var proof string
	if len(args) == 2 {
		proof = args[1]
	}

	payment, err := bot.back.RecordPayment(target.ID, amount, proof, m.Author.Username)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w,
		"✅ Marked %s as paid $%.2f by %s.",
		payment.PayerName, payment.Amount, payment.AdminName,
	)
	if payment.Proof.Valid {
		fmt.Fprintf(w, "\nProof: %s", payment.Proof.String)
	}

	return nil
}

func (bot *Bot) cmdHistory(m *discordgo.Message, args []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	limit := 10
	if args = positionalArgs(args); len(args) > 0 {
		limit, err = parseIntArg("limit", args[0])
		if err != nil {
			return err
		}
	}

	payments, err := bot.back.PaymentHistory(target.ID, limit)
	if err != nil {
		return err
	}

	if len(payments) == 0 {
		fmt.Fprint(w, "No payment history found.")
		return nil
	}

	fmt.Fprintf(w, "Payment history for %s (last %d):\n", target.Username, len(payments))
	for _, v := range payments {
		fmt.Fprintf(
			w, "- %s — $%.2f — recorded by %s\n",
			util.Date(v.CreatedAt), v.Amount, v.AdminName,
		)
	}

	return nil
}

func (bot *Bot) cmdLevelUp(m *discordgo.Message, args []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	amount := 1
	if args = positionalArgs(args); len(args) > 0 {
		amount, err = parseIntArg("amount", args[0])
		if err != nil {
			return err
		}
	}

	old, curr, err := bot.back.AdjustLevel(target.ID, amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ %s level: %d → %d", target.Username, old, curr)

	return nil
}

func (bot *Bot) cmdAddFactories(m *discordgo.Message, args []string, w io.Writer) error {
	target, err := bot.resolveTarget(m)
	if err != nil {
		return err
	}

	amount := 1
	if args = positionalArgs(args); len(args) > 0 {
		amount, err = parseIntArg("amount", args[0])
		if err != nil {
			return err
		}
	}

	old, curr, err := bot.back.AdjustFactories(target.ID, amount)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ %s factories: %d → %d", target.Username, old, curr)

	return nil
}

func (bot *Bot) cmdSetLevel(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	target := mentionedUser(m)
	args = positionalArgs(args)
	if target == nil || len(args) != 1 {
		return util.ErrPublic("expected `!set_level @member LEVEL`")
	}

	level, err := parseIntArg("level", args[0])
	if err != nil {
		return err
	}

	if err := bot.back.SetLevel(target.ID, level); err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Set %s level to %d.", target.Username, level)

	return nil
}

func (bot *Bot) cmdSetFactories(m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.isTaxAdmin(m) {
		return util.ErrPublic("this command is admin-only")
	}

	target := mentionedUser(m)
	args = positionalArgs(args)
	if target == nil || len(args) != 1 {
		return util.ErrPublic("expected `!set_factories @member FACTORIES`")
	}

	factories, err := parseIntArg("factory count", args[0])
	if err != nil {
		return err
	}

	if err := bot.back.SetFactories(target.ID, factories); err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Set %s factories to %d.", target.Username, factories)

	return nil
}
