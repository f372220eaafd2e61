package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/metrics"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/cache"
)

var tickerLog = logrus.WithField("component", "ticker_service")

// TickerService 资产元数据 + 买价
type TickerService struct {
	tickers  ports.TickerRepository
	prices   ports.PriceRepository
	currency string
}

// NewTickerService prices 可为 nil（此时价格为 0）
func NewTickerService(tickers ports.TickerRepository, prices ports.PriceRepository, currency string) *TickerService {
	return &TickerService{tickers: tickers, prices: prices, currency: strings.ToLower(currency)}
}

// Get 获取资产并附加买价；价格获取失败按 0 处理
func (s *TickerService) Get(ctx context.Context, tickerID string) (domain.Ticker, error) {
	t, err := s.tickers.FindByID(ctx, tickerID)
	if err != nil {
		return domain.Ticker{}, errors.Wrapf(err, "ticker %s", tickerID)
	}
	return s.withPrice(ctx, t, s.currency), nil
}

// List 获取全部资产，按指定币种报价
func (s *TickerService) List(ctx context.Context, currency string) ([]domain.Ticker, error) {
	if currency == "" {
		currency = s.currency
	}
	items, err := s.tickers.FindAll(ctx, ports.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list tickers")
	}
	out := make([]domain.Ticker, 0, len(items))
	for _, t := range items {
		out = append(out, s.withPrice(ctx, t, strings.ToLower(currency)))
	}
	return out, nil
}

// Validate 下单前重新拉取资产（不走请求级缓存），资产不存在或被锁定则失败
func (s *TickerService) Validate(ctx context.Context, tickerID string) error {
	t, err := s.tickers.FindByID(ctx, tickerID)
	if err != nil {
		return errors.Wrapf(err, "validate ticker %s", tickerID)
	}
	if t.Locked {
		return errors.Errorf("ticker %s is locked", tickerID)
	}
	return nil
}

func (s *TickerService) withPrice(ctx context.Context, t domain.Ticker, currency string) domain.Ticker {
	t.BidPrice.Currency = currency
	if s.prices == nil || t.Symbol == "" {
		return t
	}
	p, err := s.prices.FindPrice(ctx, t.Symbol, currency)
	if err != nil {
		metrics.PriceLookupFailures.Add(1)
		tickerLog.WithError(err).Warnf("price lookup failed: ticker=%s symbol=%s", t.ID, t.Symbol)
		return t
	}
	if p.Currency == "" {
		p.Currency = currency
	}
	t.BidPrice = p
	return t
}

// Resolver 返回请求级解析器，同一次聚合内每个 ticker 只解析一次
func (s *TickerService) Resolver() *TickerResolver {
	return &TickerResolver{svc: s, memo: cache.NewMemo[string, domain.Ticker]()}
}

// TickerResolver 请求级 ticker 缓存
type TickerResolver struct {
	svc  *TickerService
	memo *cache.Memo[string, domain.Ticker]
}

func (r *TickerResolver) Get(ctx context.Context, tickerID string) (domain.Ticker, error) {
	return r.memo.GetOrLoad(tickerID, func(id string) (domain.Ticker, error) {
		return r.svc.Get(ctx, id)
	})
}
