package server

import (
	"net/http"
	"strings"

	"github.com/betbot/custodygw/internal/domain"
)

func (s *Server) handleTickersList(w http.ResponseWriter, r *http.Request) {
	currency := strings.TrimSpace(r.URL.Query().Get("currency"))
	if currency == "" {
		currency = s.cfg.Currency
	}
	items, err := s.deps.Tickers.List(r.Context(), currency)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleTickerGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Tickers.Get(r.Context(), urlParam(r, "tickerId"))
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Accounts.Profile(r.Context(), urlParam(r, "profileId"))
	if err != nil {
		writeFailure(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProfileBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Accounts.Balance(r.Context(), urlParam(r, "profileId"))
	if err != nil {
		writeFailure(w, err, true)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.deps.Accounts.AccountBalance(r.Context(), domain.BalanceParameter{
		DomainID:  urlParam(r, "domainId"),
		AccountID: urlParam(r, "accountId"),
		TickerID:  urlParam(r, "tickerId"),
	})
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleTransactionsList(w http.ResponseWriter, r *http.Request) {
	p := domain.TransactionListParameter{
		DomainID:  urlParam(r, "domainId"),
		AccountID: urlParam(r, "accountId"),
	}
	if tickerID := strings.TrimSpace(r.URL.Query().Get("tickerId")); tickerID != "" {
		p.TickerID = &tickerID
	}
	items, err := s.deps.Accounts.Transactions(r.Context(), p)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleTransactionGet(w http.ResponseWriter, r *http.Request) {
	tx, err := s.deps.Accounts.Transaction(r.Context(), domain.TransactionParameter{
		DomainID:      urlParam(r, "domainId"),
		AccountID:     urlParam(r, "accountId"),
		TransactionID: urlParam(r, "transactionId"),
	})
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
