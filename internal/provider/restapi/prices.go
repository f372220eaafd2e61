package restapi

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/cache"
	sdkhttp "github.com/betbot/custodygw/pkg/sdk/http"
)

var _ ports.PriceRepository = (*CoinPriceRepository)(nil)

const (
	simplePriceEndpoint = "/simple/price"
	defaultPriceTTL     = time.Minute
)

// CoinPriceRepository coin-gecko 风格的报价接口，按 symbol + 币种查询，结果短时缓存
type CoinPriceRepository struct {
	http  *sdkhttp.Client
	cache *cache.InMemoryCache[string, domain.Price]
	ttl   time.Duration
}

func NewCoinPriceRepository(baseURL string, ttl time.Duration, opts ...func(*sdkhttp.Options)) *CoinPriceRepository {
	if ttl <= 0 {
		ttl = defaultPriceTTL
	}
	return &CoinPriceRepository{
		http:  sdkhttp.NewClient(baseURL, opts...),
		cache: cache.NewInMemoryCache[string, domain.Price](ttl),
		ttl:   ttl,
	}
}

// FindPrice 响应形如 {"eth":{"eur":2000.1,"eur_24h_change":-1.2}}
func (r *CoinPriceRepository) FindPrice(ctx context.Context, symbol, currency string) (domain.Price, error) {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	currency = strings.ToLower(strings.TrimSpace(currency))
	if symbol == "" || currency == "" {
		return domain.Price{}, errors.Wrap(domain.ErrMalformedData, "price: symbol and currency are required")
	}
	key := symbol + ":" + currency
	if p, ok := r.cache.Get(key); ok {
		return p, nil
	}

	var out map[string]map[string]decimal.Decimal
	err := r.http.Get(ctx, simplePriceEndpoint, map[string]any{
		"symbols":             symbol,
		"vs_currencies":       currency,
		"include_24hr_change": "true",
	}, &out)
	if err != nil {
		return domain.Price{}, classify(err, simplePriceEndpoint)
	}
	quote, ok := out[symbol]
	if !ok {
		return domain.Price{}, errors.Wrapf(domain.ErrNotFound, "price of %s", symbol)
	}
	value, ok := quote[currency]
	if !ok {
		return domain.Price{}, errors.Wrapf(domain.ErrNotFound, "price of %s in %s", symbol, currency)
	}
	p := domain.Price{Value: value, Change: quote[currency+"_24h_change"], Currency: currency}
	r.cache.Set(key, p, r.ttl)
	return p, nil
}

func (r *CoinPriceRepository) Close() {
	r.cache.Close()
}
