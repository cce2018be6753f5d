// Package router turns chat commands into ledger operations and renders the
// replies. It knows nothing about the transport: a request is the sender's
// identity plus the message text, and the answer is plain text with optional
// notices for other users.
package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrijs2005/debtkeeper/internal/ledger"
	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
)

// Ledger is the subset of *ledger.Ledger the router drives.
type Ledger interface {
	CreateDebt(ctx context.Context, debtor, creditor string, amount int64) (int64, error)
	ConfirmDebt(ctx context.Context, actor string, id int64) (models.Debt, error)
	RejectDebt(ctx context.Context, actor string, id int64) (models.Debt, error)
	SettleDebt(ctx context.Context, actor string, id int64) (models.Debt, error)
	ListOwed(actor string) []models.Debt
	ListOwedTo(actor string) []models.Debt
}

// Notice is a message for a user other than the sender.
type Notice struct {
	To   string
	Text string
}

// Reply is the answer to the sender plus notices for counterparties.
type Reply struct {
	Text     string
	ShowMenu bool
	Notices  []Notice
}

// Router dispatches commands to a Ledger.
type Router struct {
	ledger  Ledger
	printer *message.Printer
	logger  logging.Logger
}

// New builds a router. locale is an optional BCP 47 tag that turns on digit
// grouping for amounts; empty or unparsable means plain digits.
func New(l Ledger, locale string, logger logging.Logger) *Router {
	r := &Router{
		ledger: l,
		logger: logger.With("module", "router"),
	}
	if locale == "" {
		return r
	}
	tag, err := language.Parse(locale)
	if err != nil {
		r.logger.Warn(context.Background(), "unknown locale, amounts stay plain", "locale", locale)
		return r
	}
	r.printer = message.NewPrinter(tag)
	return r
}

// Handle executes one message from actor. ok is false when text is not a
// command and should be ignored.
func (r *Router) Handle(ctx context.Context, actor, text string) (reply Reply, ok bool) {
	cmd, args, ok := Parse(text)
	if !ok {
		return Reply{}, false
	}

	switch cmd {
	case "start":
		return Reply{Text: textStart, ShowMenu: true}, true
	case "help":
		return Reply{Text: textHelp}, true
	case "owe":
		return r.owe(ctx, actor, args), true
	case "confirm":
		return r.confirm(ctx, actor, args), true
	case "reject":
		return r.reject(ctx, actor, args), true
	case "paid":
		return r.paid(ctx, actor, args), true
	case "debts":
		return r.debts(actor), true
	case "credits":
		return r.credits(actor), true
	default:
		return Reply{Text: textUnknown}, true
	}
}

func (r *Router) owe(ctx context.Context, actor string, args []string) Reply {
	if len(args) != 2 {
		return Reply{Text: textUsageOwe}
	}
	creditor := strings.TrimLeft(args[0], "@")
	amount, ok := parsePositive(args[1])
	if !ok || creditor == "" {
		return Reply{Text: textUsageOwe}
	}

	id, err := r.ledger.CreateDebt(ctx, actor, creditor, amount)
	if err != nil {
		return r.failure(ctx, "owe", err, map[ledger.Kind]string{
			ledger.KindDuplicatePending: textDuplicate,
			ledger.KindInvalidArgument:  textUsageOwe,
		})
	}

	r.logger.Info(ctx, "debt created", "id", id, "debtor", actor, "creditor", creditor, "amount", amount)
	reply := Reply{Text: fmt.Sprintf(textCreated, id)}
	if creditor != actor {
		reply.Notices = []Notice{{
			To:   creditor,
			Text: fmt.Sprintf(noticeCreated, actor, r.amount(amount), id, id),
		}}
	}
	return reply
}

func (r *Router) confirm(ctx context.Context, actor string, args []string) Reply {
	id, ok := singleID(args)
	if !ok {
		return Reply{Text: textUsageConfirm}
	}

	d, err := r.ledger.ConfirmDebt(ctx, actor, id)
	if err != nil {
		return r.failure(ctx, "confirm", err, map[ledger.Kind]string{
			ledger.KindNotFoundOrUnauthorized: textNotRecipient,
		})
	}

	r.logger.Info(ctx, "debt confirmed", "id", d.ID)
	return Reply{Text: textConfirmed, Notices: r.notify(actor, d.Debtor, fmt.Sprintf(noticeConfirmed, actor, d.ID, r.amount(d.Amount)))}
}

func (r *Router) reject(ctx context.Context, actor string, args []string) Reply {
	id, ok := singleID(args)
	if !ok {
		return Reply{Text: textUsageReject}
	}

	d, err := r.ledger.RejectDebt(ctx, actor, id)
	if err != nil {
		return r.failure(ctx, "reject", err, map[ledger.Kind]string{
			ledger.KindNotFoundOrUnauthorized: textNotRecipient,
		})
	}

	r.logger.Info(ctx, "debt rejected", "id", d.ID)
	return Reply{Text: textRejected, Notices: r.notify(actor, d.Debtor, fmt.Sprintf(noticeRejected, actor, d.ID, r.amount(d.Amount)))}
}

func (r *Router) paid(ctx context.Context, actor string, args []string) Reply {
	id, ok := singleID(args)
	if !ok {
		return Reply{Text: textUsagePaid}
	}

	d, err := r.ledger.SettleDebt(ctx, actor, id)
	if err != nil {
		return r.failure(ctx, "paid", err, map[ledger.Kind]string{
			ledger.KindNotFoundOrUnauthorized: textNotConfirmed,
		})
	}

	other := d.Creditor
	if actor == d.Creditor {
		other = d.Debtor
	}

	r.logger.Info(ctx, "debt paid", "id", d.ID)
	return Reply{Text: textPaid, Notices: r.notify(actor, other, fmt.Sprintf(noticePaid, actor, d.ID, r.amount(d.Amount)))}
}

func (r *Router) debts(actor string) Reply {
	list := r.ledger.ListOwed(actor)
	if len(list) == 0 {
		return Reply{Text: textNoDebts}
	}

	var b strings.Builder
	b.WriteString(textDebtsHeader)
	for _, d := range list {
		fmt.Fprintf(&b, textDebtLine, d.ID, d.Creditor, r.amount(d.Amount), d.Status)
	}
	return Reply{Text: b.String()}
}

func (r *Router) credits(actor string) Reply {
	list := r.ledger.ListOwedTo(actor)
	if len(list) == 0 {
		return Reply{Text: textNoCredits}
	}

	var b strings.Builder
	b.WriteString(textCreditsHeader)
	for _, d := range list {
		fmt.Fprintf(&b, textCreditLine, d.ID, d.Debtor, r.amount(d.Amount), d.Status)
	}
	return Reply{Text: b.String()}
}

// failure maps a ledger error to the reply text for this command. Kinds not
// listed in texts fall back to the persistence or generic failure text.
func (r *Router) failure(ctx context.Context, cmd string, err error, texts map[ledger.Kind]string) Reply {
	kind := ledger.KindOf(err)
	if text, ok := texts[kind]; ok {
		r.logger.Debug(ctx, "command refused", "command", cmd, "reason", kind.String())
		return Reply{Text: text}
	}

	if kind == ledger.KindPersistenceFailure {
		r.logger.Error(ctx, "command not persisted", "command", cmd, "error", err)
		return Reply{Text: textPersistFailure}
	}

	r.logger.Error(ctx, "command failed", "command", cmd, "error", err)
	return Reply{Text: textFailure}
}

func (r *Router) notify(actor, to, text string) []Notice {
	if to == actor {
		return nil
	}
	return []Notice{{To: to, Text: text}}
}

func (r *Router) amount(n int64) string {
	if r.printer == nil {
		return strconv.FormatInt(n, 10)
	}
	return r.printer.Sprintf("%d", n)
}

func singleID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	return parsePositive(args[0])
}
