package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, nil, ClientOptions{NoRetry: true})
}

func TestDomainRepository_FindAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/domains", r.URL.Path)
		_, _ = w.Write([]byte(`{"items":[{"data":{"id":"d1","alias":"Main"}},{"data":{"id":"d2"}}],"count":2}`))
	})

	got, err := NewDomainRepository(c).FindAll(context.Background(), ports.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Domain{{ID: "d1", Alias: "Main"}, {ID: "d2"}}, got)
}

func TestAccountRepository_FilterPassThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/domains/d1/accounts", r.URL.Path)
		assert.Equal(t, "iban:GB29NWBK60161331926819", r.URL.Query().Get("metadata.customProperties"))
		_, _ = w.Write([]byte(`{"items":[{"data":{"id":"a1","alias":"07","metadata":{"customProperties":{"iban":"GB29NWBK60161331926819"}}}}]}`))
	})

	got, err := NewAccountRepository(c).FindAll(context.Background(), "d1",
		ports.Filter{"metadata.customProperties": "iban:GB29NWBK60161331926819"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].DomainID)
	assert.True(t, got[0].HasAlias("07"))
}

func TestRepositories_ErrorClassification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/domains/d1/accounts/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	repo := NewAccountRepository(c)

	_, err := repo.FindByID(context.Background(), "d1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.FindAll(context.Background(), "d1", nil)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, "upstream", domain.ErrorKind(err))
}

func TestTransferRepository_MapsParties(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/domains/d1/transactions/transfers", r.URL.Path)
		assert.Equal(t, "DESC", r.URL.Query().Get("sortOrder"))
		_, _ = w.Write([]byte(`{"items":[{
			"id":"t1","domainId":"d1","transactionId":"tx1","kind":"Transfer","value":"100","tickerId":"eth",
			"senders":[{"type":"Account","domainId":"d1","accountId":"a1","addressDetails":{"address":"0xme"}}],
			"recipient":{"type":"Address","address":"0xpeer"},
			"registeredAt":"2024-05-01T12:00:00Z"
		}]}`))
	})

	got, err := NewTransferRepository(c).FindAll(context.Background(), "d1", ports.Filter{"sortOrder": "DESC"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	tr := got[0]
	assert.Equal(t, "tx1", tr.TxID())
	require.Len(t, tr.Senders, 1)
	assert.Equal(t, domain.TransferParty{Type: domain.TransferPartyAccount, DomainID: "d1", AccountID: "a1", Address: "0xme"}, tr.Senders[0])
	require.NotNil(t, tr.Recipient)
	assert.Equal(t, "0xpeer", tr.Recipient.Address)
	assert.True(t, tr.SentBy("a1"))
}

func TestTransactionRepository_MapsStatusAndOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/domains/d1/transactions/tx1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"tx1","processing":{"status":"Signed"},"orderReference":{"id":"o1","domainId":"d1"},
			"relatedAccounts":[{"accountId":"a1","domainId":"d1","sender":true}],"registeredAt":"2024-05-01T12:00:00Z"}`))
	})

	tx, err := NewTransactionRepository(c).FindByID(context.Background(), "d1", "tx1")
	require.NoError(t, err)
	assert.Nil(t, tx.LedgerStatus)
	assert.Equal(t, "Signed", tx.Status())
	assert.Equal(t, "o1", tx.OrderID())
	assert.True(t, tx.SentByAccount("a1"))
}

func TestOrderRepository_DecodesProperties(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{
			map[string]any{"data": map[string]any{
				"id": "o1", "domainId": "d1",
				"metadata": map[string]any{"customProperties": map[string]string{
					"transactionProperties": `{"value":"10.5","change":"0.2","currency":"USD","type":"Sell"}`,
				}},
			}},
			map[string]any{"data": map[string]any{"id": "o2", "domainId": "d1"}},
		}})
	})

	got, err := NewOrderRepository(c).FindAll(context.Background(), "d1", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Pricing)
	assert.Equal(t, "USD", got[0].Pricing.Currency)
	assert.Equal(t, "Sell", got[0].TypeOverride)
	assert.Nil(t, got[1].Pricing)
	assert.Empty(t, got[1].TypeOverride)
}

func TestTickerRepository(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/tickers":
			_, _ = w.Write([]byte(`{"items":[
				{"data":{"id":"eth","kind":"Native","symbol":"ETH","decimals":18,"lock":"Unlocked","ledgerDetails":{"type":"Ethereum"}}},
				{"data":{"id":"dust","kind":"Contract","symbol":"DST","decimals":0,"lock":"Locked"}}
			]}`))
		case "/v1/tickers/dust":
			_, _ = w.Write([]byte(`{"data":{"id":"dust","kind":"Contract","symbol":"DST","decimals":0,"lock":"Locked"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	repo := NewTickerRepository(c, func(id string) bool { return id == "dust" })

	all, err := repo.FindAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ethereum", all[0].LedgerType)
	assert.True(t, all[0].IsNative())

	dust, err := repo.FindByID(context.Background(), "dust")
	require.NoError(t, err)
	assert.True(t, dust.Locked)
	assert.True(t, dust.IsContract())
}

func TestBalanceAndAddressRepositories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/domains/d1/accounts/a1/balances":
			_, _ = w.Write([]byte(`{"items":[{"tickerId":"eth","totalAmount":"100","reservedAmount":"0","quarantinedAmount":"0"}]}`))
		case "/v1/domains/d1/accounts/a1/addresses":
			_, _ = w.Write([]byte(`{"items":[{"id":"ad1","address":"0xme","accountReference":{"domainId":"d1","accountId":"a1"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	balances, err := NewBalanceRepository(c).FindAll(context.Background(), "d1", "a1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Balance{{TickerID: "eth", TotalAmount: "100", ReservedAmount: "0", QuarantinedAmount: "0"}}, balances)

	addrs, err := NewAddressRepository(c).FindAll(context.Background(), "d1", "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.Address{{ID: "ad1", DomainID: "d1", AccountID: "a1", Address: "0xme"}}, addrs)
}
