package router

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/debtkeeper/internal/ledger"
	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/jsonfile"
)

func newRouter(t *testing.T) *Router {
	t.Helper()
	l, err := ledger.Open(context.Background(), jsonfile.New(filepath.Join(t.TempDir(), "debts.json")))
	require.NoError(t, err)
	return New(l, "", logging.Discard())
}

func send(t *testing.T, r *Router, actor, text string) Reply {
	t.Helper()
	reply, ok := r.Handle(context.Background(), actor, text)
	require.True(t, ok, "expected %q to be handled", text)
	return reply
}

func TestHandle_NonCommandIgnored(t *testing.T) {
	r := newRouter(t)
	for _, text := range []string{"", "   ", "hello", "/"} {
		_, ok := r.Handle(context.Background(), "alice", text)
		assert.False(t, ok, text)
	}
}

func TestHandle_StaticCommands(t *testing.T) {
	r := newRouter(t)

	reply := send(t, r, "alice", "/start")
	assert.Equal(t, textStart, reply.Text)
	assert.True(t, reply.ShowMenu)

	reply = send(t, r, "alice", "/help@debt_bot")
	assert.Equal(t, textHelp, reply.Text)
	assert.False(t, reply.ShowMenu)

	reply = send(t, r, "alice", "/loan @bob 5")
	assert.Equal(t, textUnknown, reply.Text)
}

func TestHandle_FullLifecycle(t *testing.T) {
	r := newRouter(t)

	reply := send(t, r, "alice", "/owe @bob 500")
	assert.Equal(t, "Долг создан и ожидает подтверждения получателем.\nID: 1", reply.Text)
	require.Len(t, reply.Notices, 1)
	assert.Equal(t, "bob", reply.Notices[0].To)
	assert.Contains(t, reply.Notices[0].Text, "/confirm 1")

	reply = send(t, r, "alice", "/owe @bob 500")
	assert.Equal(t, textDuplicate, reply.Text)
	assert.Empty(t, reply.Notices)

	reply = send(t, r, "carol", "/confirm 1")
	assert.Equal(t, textNotRecipient, reply.Text)

	reply = send(t, r, "alice", "/paid 1")
	assert.Equal(t, textNotConfirmed, reply.Text)

	reply = send(t, r, "bob", "/confirm 1")
	assert.Equal(t, textConfirmed, reply.Text)
	assert.Equal(t, []Notice{{To: "alice", Text: "@bob подтвердил долг #1 на 500 ₽."}}, reply.Notices)

	reply = send(t, r, "alice", "/debts")
	assert.Equal(t, "Ты должен:\n#1 → @bob: 500 ₽ (статус: confirmed)\n", reply.Text)

	reply = send(t, r, "bob", "/credits")
	assert.Equal(t, "Тебе должны:\n#1 ← @alice: 500 ₽ (статус: confirmed)\n", reply.Text)

	reply = send(t, r, "alice", "/paid 1")
	assert.Equal(t, textPaid, reply.Text)
	assert.Equal(t, []Notice{{To: "bob", Text: "@alice отметил долг #1 на 500 ₽ как оплаченный."}}, reply.Notices)

	assert.Equal(t, textNoDebts, send(t, r, "alice", "/debts").Text)
	assert.Equal(t, textNoCredits, send(t, r, "bob", "/credits").Text)
}

func TestHandle_Reject(t *testing.T) {
	r := newRouter(t)
	send(t, r, "alice", "/owe bob 70")

	reply := send(t, r, "alice", "/reject 1")
	assert.Equal(t, textNotRecipient, reply.Text)

	reply = send(t, r, "bob", "/reject 1")
	assert.Equal(t, textRejected, reply.Text)
	require.Len(t, reply.Notices, 1)
	assert.Equal(t, "alice", reply.Notices[0].To)

	assert.Equal(t, textNoDebts, send(t, r, "alice", "/debts").Text)
}

func TestHandle_SelfDebtHasNoNotice(t *testing.T) {
	r := newRouter(t)
	reply := send(t, r, "alice", "/owe @alice 5")
	assert.Empty(t, reply.Notices)
}

func TestHandle_UsageHints(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		text string
		want string
	}{
		{"/owe", textUsageOwe},
		{"/owe @bob", textUsageOwe},
		{"/owe @bob 5 extra", textUsageOwe},
		{"/owe @bob 0", textUsageOwe},
		{"/owe @bob -5", textUsageOwe},
		{"/owe @bob +5", textUsageOwe},
		{"/owe @bob 1.5", textUsageOwe},
		{"/owe @bob ５", textUsageOwe},
		{"/owe @ 5", textUsageOwe},
		{"/owe @bob 99999999999999999999", textUsageOwe},
		{"/confirm", textUsageConfirm},
		{"/confirm abc", textUsageConfirm},
		{"/confirm 0", textUsageConfirm},
		{"/confirm 1 2", textUsageConfirm},
		{"/reject x", textUsageReject},
		{"/paid", textUsagePaid},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, send(t, r, "alice", tt.text).Text)
		})
	}
}

func TestHandle_ListOrderAndLocale(t *testing.T) {
	l, err := ledger.Open(context.Background(), jsonfile.New(filepath.Join(t.TempDir(), "debts.json")))
	require.NoError(t, err)
	r := New(l, "en", logging.Discard())

	send(t, r, "alice", "/owe @bob 1500")
	send(t, r, "alice", "/owe @carol 7")

	assert.Equal(t,
		"Ты должен:\n#1 → @bob: 1,500 ₽ (статус: pending)\n#2 → @carol: 7 ₽ (статус: pending)\n",
		send(t, r, "alice", "/debts").Text)
}

type stubLedger struct {
	err error
}

func (s stubLedger) CreateDebt(context.Context, string, string, int64) (int64, error) {
	return 0, s.err
}
func (s stubLedger) ConfirmDebt(context.Context, string, int64) (models.Debt, error) {
	return models.Debt{}, s.err
}
func (s stubLedger) RejectDebt(context.Context, string, int64) (models.Debt, error) {
	return models.Debt{}, s.err
}
func (s stubLedger) SettleDebt(context.Context, string, int64) (models.Debt, error) {
	return models.Debt{}, s.err
}
func (s stubLedger) ListOwed(string) []models.Debt   { return nil }
func (s stubLedger) ListOwedTo(string) []models.Debt { return nil }

func TestHandle_FailureTexts(t *testing.T) {
	persist := &ledger.Error{Kind: ledger.KindPersistenceFailure, Op: "x", Cause: errors.New("disk full")}

	r := New(stubLedger{err: persist}, "ru", logging.Discard())
	for _, text := range []string{"/owe @bob 5", "/confirm 1", "/reject 1", "/paid 1"} {
		assert.Equal(t, textPersistFailure, send(t, r, "alice", text).Text, text)
	}

	r = New(stubLedger{err: errors.New("unexpected")}, "ru", logging.Discard())
	assert.Equal(t, textFailure, send(t, r, "alice", "/confirm 1").Text)
}

func TestHandle_PlainAmountsByDefault(t *testing.T) {
	r := newRouter(t)

	send(t, r, "alice", "/owe @bob 1500")

	assert.Equal(t,
		"Ты должен:\n#1 → @bob: 1500 ₽ (статус: pending)\n",
		send(t, r, "alice", "/debts").Text)
}

func TestNew_BadLocaleFallsBack(t *testing.T) {
	r := New(stubLedger{}, "!!", logging.Discard())
	assert.Equal(t, "1000000", r.amount(1000000))
}
