package services

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
)

func strPtr(s string) *string { return &s }

type stubDomains struct {
	items []domain.Domain
	err   error
}

func (s *stubDomains) FindAll(context.Context, ports.Filter) ([]domain.Domain, error) {
	return s.items, s.err
}

type stubAccounts struct {
	mu       sync.Mutex
	byDomain map[string][]domain.Account
	errs     map[string]error
	filters  []ports.Filter
}

func (s *stubAccounts) FindByID(_ context.Context, domainID, accountID string) (domain.Account, error) {
	if err := s.errs[domainID]; err != nil {
		return domain.Account{}, err
	}
	for _, acc := range s.byDomain[domainID] {
		if acc.ID == accountID {
			return acc, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (s *stubAccounts) FindAll(_ context.Context, domainID string, filter ports.Filter) ([]domain.Account, error) {
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	if err := s.errs[domainID]; err != nil {
		return nil, err
	}
	iban, ok := filter["metadata.customProperties"]
	if !ok {
		return s.byDomain[domainID], nil
	}
	var out []domain.Account
	for _, acc := range s.byDomain[domainID] {
		if "iban:"+acc.CustomProperties["iban"] == iban {
			out = append(out, acc)
		}
	}
	return out, nil
}

type stubTickers struct {
	mu    sync.Mutex
	items map[string]domain.Ticker
	calls map[string]int
}

func newStubTickers(items ...domain.Ticker) *stubTickers {
	s := &stubTickers{items: map[string]domain.Ticker{}, calls: map[string]int{}}
	for _, t := range items {
		s.items[t.ID] = t
	}
	return s
}

func (s *stubTickers) FindByID(_ context.Context, id string) (domain.Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	t, ok := s.items[id]
	if !ok {
		return domain.Ticker{}, errors.Wrapf(domain.ErrNotFound, "ticker %s", id)
	}
	return t, nil
}

func (s *stubTickers) FindAll(context.Context, ports.Filter) ([]domain.Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Ticker, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTickers) callsFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

type stubPrices struct {
	prices map[string]domain.Price
	err    error
}

func (s *stubPrices) FindPrice(_ context.Context, symbol, currency string) (domain.Price, error) {
	if s.err != nil {
		return domain.Price{}, s.err
	}
	p, ok := s.prices[strings.ToLower(symbol)]
	if !ok {
		return domain.Price{}, domain.ErrNotFound
	}
	p.Currency = currency
	return p, nil
}

type stubTransactions struct {
	items []domain.Transaction
	err   error
}

func (s *stubTransactions) FindAll(context.Context, string, ports.Filter) ([]domain.Transaction, error) {
	return s.items, s.err
}

func (s *stubTransactions) FindByID(_ context.Context, _ string, id string) (domain.Transaction, error) {
	if s.err != nil {
		return domain.Transaction{}, s.err
	}
	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return domain.Transaction{}, domain.ErrNotFound
}

type stubOrders struct {
	items []domain.Order
	err   error
}

func (s *stubOrders) FindAll(context.Context, string, ports.Filter) ([]domain.Order, error) {
	return s.items, s.err
}

type stubTransfers struct {
	mu         sync.Mutex
	items      []domain.Transfer
	err        error
	lastFilter ports.Filter
}

func (s *stubTransfers) FindAll(_ context.Context, _ string, filter ports.Filter) ([]domain.Transfer, error) {
	s.mu.Lock()
	s.lastFilter = filter
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	txID, ok := filter["transactionId"]
	if !ok {
		return s.items, nil
	}
	var out []domain.Transfer
	for _, t := range s.items {
		if t.TxID() == txID {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubAddresses struct {
	mu        sync.Mutex
	byAccount map[string][]domain.Address
	errs      map[string]error
	calls     int
}

func (s *stubAddresses) FindAll(_ context.Context, _ string, accountID string, _ ports.Filter) ([]domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[accountID]; err != nil {
		return nil, err
	}
	return s.byAccount[accountID], nil
}

type stubBalances struct {
	byAccount map[string][]domain.Balance
	errs      map[string]error
}

func (s *stubBalances) FindAll(_ context.Context, _ string, accountID string) ([]domain.Balance, error) {
	if err := s.errs[accountID]; err != nil {
		return nil, err
	}
	return s.byAccount[accountID], nil
}

type stubSubmitter struct {
	mu        sync.Mutex
	created   []domain.OrderRequest
	metadata  []map[string]string
	validated []domain.OrderRequest
	result    domain.RequestResult
	errFor    map[domain.TradeType]error
}

func (s *stubSubmitter) Create(_ context.Context, req domain.OrderRequest, metadata map[string]string) (domain.RequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, req)
	s.metadata = append(s.metadata, metadata)
	if err := s.errFor[req.Data.Type]; err != nil {
		return domain.RequestResult{}, err
	}
	if req.PayloadType == domain.PayloadUnsupported {
		return domain.RequestResult{Result: false, Message: "unsupported"}, nil
	}
	return s.result, nil
}

func (s *stubSubmitter) Validate(_ context.Context, req domain.OrderRequest) (domain.RequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validated = append(s.validated, req)
	return s.result, nil
}

type stubRecorder struct {
	mu   sync.Mutex
	recs []domain.TradeLegRecord
}

func (s *stubRecorder) RecordLeg(_ context.Context, rec domain.TradeLegRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}
