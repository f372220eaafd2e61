package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
)

var balanceLog = logrus.WithField("component", "balance_service")

// BalanceService 账户余额 + 估值
type BalanceService struct {
	balances ports.BalanceRepository
	tickers  *TickerService
}

func NewBalanceService(balances ports.BalanceRepository, tickers *TickerService) *BalanceService {
	return &BalanceService{balances: balances, tickers: tickers}
}

// List 账户全部余额；单个 ticker 解析失败时丢弃该条
func (s *BalanceService) List(ctx context.Context, id domain.AccountIdentifier) ([]domain.BalanceData, error) {
	return s.list(ctx, id, s.tickers.Resolver())
}

func (s *BalanceService) list(ctx context.Context, id domain.AccountIdentifier, tickers *TickerResolver) ([]domain.BalanceData, error) {
	items, err := s.balances.FindAll(ctx, id.DomainID, id.AccountID)
	if err != nil {
		return nil, errors.Wrapf(err, "balances of %s/%s", id.DomainID, id.AccountID)
	}
	out := make([]domain.BalanceData, 0, len(items))
	for _, b := range items {
		t, err := tickers.Get(ctx, b.TickerID)
		if err != nil {
			balanceLog.WithError(err).Warnf("drop balance: account=%s ticker=%s", id.AccountID, b.TickerID)
			continue
		}
		out = append(out, toBalanceData(b, t))
	}
	return out, nil
}

// Get 单资产余额，账户未持有该资产时返回 ErrNotFound
func (s *BalanceService) Get(ctx context.Context, p domain.BalanceParameter) (domain.BalanceData, error) {
	items, err := s.balances.FindAll(ctx, p.DomainID, p.AccountID)
	if err != nil {
		return domain.BalanceData{}, errors.Wrapf(err, "balances of %s/%s", p.DomainID, p.AccountID)
	}
	for _, b := range items {
		if b.TickerID != p.TickerID {
			continue
		}
		t, err := s.tickers.Get(ctx, b.TickerID)
		if err != nil {
			return domain.BalanceData{}, err
		}
		return toBalanceData(b, t), nil
	}
	return domain.BalanceData{}, errors.Wrapf(domain.ErrNotFound, "balance %s of %s/%s", p.TickerID, p.DomainID, p.AccountID)
}

func toBalanceData(b domain.Balance, t domain.Ticker) domain.BalanceData {
	v := domain.NewAmountWithValue(b.TotalAmount, t)
	return domain.BalanceData{Amount: v.Amount, Ticker: v.Ticker, Price: v.Price}
}
