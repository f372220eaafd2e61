package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/journal"
	"github.com/betbot/custodygw/pkg/config"
)

type fakeTickers struct {
	currency string
}

func (f *fakeTickers) Get(_ context.Context, id string) (domain.Ticker, error) {
	if id != "eth" {
		return domain.Ticker{}, errors.Wrapf(domain.ErrNotFound, "ticker %s", id)
	}
	return domain.Ticker{ID: "eth", Symbol: "ETH", Decimals: 18}, nil
}

func (f *fakeTickers) List(_ context.Context, currency string) ([]domain.Ticker, error) {
	f.currency = currency
	return []domain.Ticker{{ID: "eth"}}, nil
}

type fakeAccounts struct {
	profileErr error
	lastList   domain.TransactionListParameter
	lastTx     domain.TransactionParameter
	lastBal    domain.BalanceParameter
}

func (f *fakeAccounts) Profile(_ context.Context, id string) (domain.ProfileData, error) {
	if f.profileErr != nil {
		return domain.ProfileData{}, f.profileErr
	}
	return domain.ProfileData{ProfileID: id, Accounts: []domain.AccountData{}}, nil
}

func (f *fakeAccounts) Balance(_ context.Context, id string) (domain.AccountBalance, error) {
	if f.profileErr != nil {
		return domain.AccountBalance{}, f.profileErr
	}
	return domain.AccountBalance{Balances: []domain.BalanceData{{Amount: "1"}}}, nil
}

func (f *fakeAccounts) AccountBalance(_ context.Context, p domain.BalanceParameter) (domain.BalanceData, error) {
	f.lastBal = p
	return domain.BalanceData{Amount: "5"}, nil
}

func (f *fakeAccounts) Transactions(_ context.Context, p domain.TransactionListParameter) ([]domain.TransactionData, error) {
	f.lastList = p
	return []domain.TransactionData{}, nil
}

func (f *fakeAccounts) Transaction(_ context.Context, p domain.TransactionParameter) (domain.TransactionTransferData, error) {
	f.lastTx = p
	if p.TransactionID == "missing" {
		return domain.TransactionTransferData{}, errors.Wrap(domain.ErrNotFound, "transaction")
	}
	return domain.TransactionTransferData{Status: "Detected"}, nil
}

type fakeTrades struct {
	spend, receive domain.TradeData
	single         domain.TradeData
	result         domain.RequestResult
	err            error
}

func (f *fakeTrades) Sell(_ context.Context, spend, receive domain.TradeData) (domain.RequestResult, error) {
	f.spend, f.receive = spend, receive
	return f.result, f.err
}

func (f *fakeTrades) Buy(_ context.Context, spend, receive domain.TradeData) (domain.RequestResult, error) {
	f.spend, f.receive = spend, receive
	return f.result, f.err
}

func (f *fakeTrades) Send(_ context.Context, leg domain.TradeData) (domain.RequestResult, error) {
	f.single = leg
	return f.result, f.err
}

func (f *fakeTrades) Validate(_ context.Context, leg domain.TradeData) (domain.RequestResult, error) {
	f.single = leg
	return f.result, f.err
}

type fakeJournal struct {
	limit int
}

func (f *fakeJournal) List(_ context.Context, limit int) ([]journal.Entry, error) {
	f.limit = limit
	return []journal.Entry{{ID: 1}}, nil
}

type harness struct {
	tickers  *fakeTickers
	accounts *fakeAccounts
	trades   *fakeTrades
	journal  *fakeJournal
	handler  http.Handler
}

func newHarness() *harness {
	h := &harness{
		tickers:  &fakeTickers{},
		accounts: &fakeAccounts{},
		trades:   &fakeTrades{result: domain.RequestResult{Result: true}},
		journal:  &fakeJournal{},
	}
	srv := New(Config{
		DomainID: "gw",
		Nostro:   config.AccountRef{DomainID: "gw", AccountID: "nostro"},
	}, Deps{Tickers: h.tickers, Accounts: h.accounts, Trades: h.trades, Journal: h.journal})
	h.handler = srv.Router()
	return h
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	h := newHarness()
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "").Code)
}

func TestTickers_DefaultCurrency(t *testing.T) {
	h := newHarness()
	rec := h.do(http.MethodGet, "/tickers", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "eur", h.tickers.currency)

	h.do(http.MethodGet, "/tickers?currency=usd", "")
	assert.Equal(t, "usd", h.tickers.currency)
}

func TestTicker_NotFound(t *testing.T) {
	h := newHarness()
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/tickers/eth", "").Code)

	rec := h.do(http.MethodGet, "/tickers/doge", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["kind"])
}

func TestProfile_UpstreamFailureIs502(t *testing.T) {
	h := newHarness()
	rec := h.do(http.MethodGet, "/profiles/07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "07", decodeBody(t, rec)["profileId"])

	h.accounts.profileErr = errors.Wrap(domain.ErrUpstream, "list domains")
	assert.Equal(t, http.StatusBadGateway, h.do(http.MethodGet, "/profiles/07", "").Code)
	assert.Equal(t, http.StatusBadGateway, h.do(http.MethodGet, "/profiles/07/balance", "").Code)

	h.accounts.profileErr = errors.Wrap(domain.ErrNotFound, "profile 07")
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/profiles/07/balance", "").Code)
}

func TestAccountRoutes_PathParams(t *testing.T) {
	h := newHarness()

	rec := h.do(http.MethodGet, "/accounts/d1/a1/balance/eth", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.BalanceParameter{DomainID: "d1", AccountID: "a1", TickerID: "eth"}, h.accounts.lastBal)

	h.do(http.MethodGet, "/accounts/d1/a1/transactions", "")
	assert.Nil(t, h.accounts.lastList.TickerID)

	h.do(http.MethodGet, "/accounts/d1/a1/transactions?tickerId=usdc", "")
	require.NotNil(t, h.accounts.lastList.TickerID)
	assert.Equal(t, "usdc", *h.accounts.lastList.TickerID)

	rec = h.do(http.MethodGet, "/accounts/d1/a1/transactions/tx-9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tx-9", h.accounts.lastTx.TransactionID)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/accounts/d1/a1/transactions/missing", "").Code)
}

const swapBody = `{
  "spend":   {"amount": "100", "ticker": "eth",  "maxFee": "10", "sender": {"domainId": "d1", "accountId": "user"}},
  "receive": {"amount": "250", "ticker": "usdc", "maxFee": "5",  "sender": {"domainId": "d1", "accountId": "user"}}
}`

func TestSell_ShapesLegsAroundNostro(t *testing.T) {
	h := newHarness()
	rec := h.do(http.MethodPost, "/trades/sell", swapBody)
	require.Equal(t, http.StatusOK, rec.Code)

	user := domain.AccountIdentifier{DomainID: "d1", AccountID: "user"}
	nostro := domain.AccountIdentifier{DomainID: "gw", AccountID: "nostro"}

	assert.Equal(t, domain.TradeTypeSell, h.trades.spend.Type)
	assert.Equal(t, "gw", h.trades.spend.DomainID)
	assert.Equal(t, user, h.trades.spend.Trade.Sender)
	assert.Equal(t, nostro, h.trades.spend.Trade.Recipient)
	assert.Equal(t, "eth", h.trades.spend.Trade.Ticker)

	assert.Equal(t, domain.TradeTypeBuy, h.trades.receive.Type)
	assert.Equal(t, nostro, h.trades.receive.Trade.Sender)
	assert.Equal(t, user, h.trades.receive.Trade.Recipient)
	assert.Equal(t, "250", h.trades.receive.Trade.Amount)
}

func TestBuy_LegTypes(t *testing.T) {
	h := newHarness()
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/trades/buy", swapBody).Code)
	assert.Equal(t, domain.TradeTypeBuy, h.trades.spend.Type)
	assert.Equal(t, domain.TradeTypeReceive, h.trades.receive.Type)
}

func TestTrade_StatusMapping(t *testing.T) {
	h := newHarness()
	body := `{"amount":"1","ticker":"eth","maxFee":"1","sender":{"domainId":"d1","accountId":"a"},"recipient":{"domainId":"d2","accountId":"b"}}`

	rec := h.do(http.MethodPost, "/trades/send", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TradeTypeTransfer, h.trades.single.Type)
	assert.Equal(t, "b", h.trades.single.Trade.Recipient.AccountID)

	h.trades.result = domain.RequestResult{Result: false, Message: "rejected"}
	rec = h.do(http.MethodPost, "/trades/validate", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rejected", decodeBody(t, rec)["message"])

	h.trades.err = domain.NewTradeError(domain.TradeErrTickerNotFound, domain.TradeTypeTransfer, domain.ErrNotFound)
	rec = h.do(http.MethodPost, "/trades/send", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ticker_not_found", decodeBody(t, rec)["kind"])
}

func TestTrade_InvalidBody(t *testing.T) {
	h := newHarness()
	for _, path := range []string{"/trades/sell", "/trades/buy", "/trades/send", "/trades/validate"} {
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, path, "{nope").Code, path)
	}
}

func TestJournal_Limit(t *testing.T) {
	h := newHarness()
	rec := h.do(http.MethodGet, "/trades/journal?limit=7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, h.journal.limit)
}

func TestJournal_Disabled(t *testing.T) {
	srv := New(Config{}, Deps{Tickers: &fakeTickers{}, Accounts: &fakeAccounts{}, Trades: &fakeTrades{}})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trades/journal", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
