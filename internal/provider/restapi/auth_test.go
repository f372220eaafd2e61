package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/custodygw/internal/domain"
)

func TestOAuthTokenSource_CachesToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "gw", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))
		writeJSON(w, map[string]any{"access_token": "tkn", "token_type": "Bearer", "expires_in": 3600})
	}))
	defer srv.Close()

	ts := NewOAuthTokenSource(srv.URL+"/oauth/token", "gw", "s3cret")
	defer ts.Close()

	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tkn", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOAuthTokenSource_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewOAuthTokenSource(srv.URL, "gw", "wrong")
	defer ts.Close()
	_, err := ts.Token(context.Background())
	assert.Error(t, err)
}

func TestClient_SendsBearerFromTokenSource(t *testing.T) {
	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"access_token": "abc", "expires_in": 60})
	}))
	defer authSrv.Close()
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer apiSrv.Close()

	ts := NewOAuthTokenSource(authSrv.URL, "gw", "s")
	defer ts.Close()
	c := NewClient(apiSrv.URL, ts, ClientOptions{NoRetry: true, Timeout: 5 * time.Second})
	got, err := NewDomainRepository(c).FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCoinPriceRepository(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "eth", r.URL.Query().Get("symbols"))
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"eth":{"eur":2000.25,"eur_24h_change":-1.5}}`))
	}))
	defer srv.Close()

	repo := NewCoinPriceRepository(srv.URL, time.Minute)
	defer repo.Close()

	p, err := repo.FindPrice(context.Background(), "ETH", "EUR")
	require.NoError(t, err)
	assert.True(t, p.Value.Equal(decimal.RequireFromString("2000.25")))
	assert.True(t, p.Change.Equal(decimal.RequireFromString("-1.5")))
	assert.Equal(t, "eur", p.Currency)

	_, err = repo.FindPrice(context.Background(), "eth", "eur")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = repo.FindPrice(context.Background(), "", "eur")
	assert.ErrorIs(t, err, domain.ErrMalformedData)
}

func TestCoinPriceRepository_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	repo := NewCoinPriceRepository(srv.URL, time.Minute)
	defer repo.Close()
	_, err := repo.FindPrice(context.Background(), "zzz", "eur")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
