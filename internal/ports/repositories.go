package ports

import (
	"context"

	"github.com/betbot/custodygw/internal/domain"
)

// Repository interfaces implemented by the custody provider (internal/provider/restapi).
// Filters are passed through to the upstream query string as-is.

type Filter map[string]string

type DomainRepository interface {
	FindAll(ctx context.Context, filter Filter) ([]domain.Domain, error)
}

type AccountRepository interface {
	FindByID(ctx context.Context, domainID, accountID string) (domain.Account, error)
	FindAll(ctx context.Context, domainID string, filter Filter) ([]domain.Account, error)
}

type TransactionRepository interface {
	FindAll(ctx context.Context, domainID string, filter Filter) ([]domain.Transaction, error)
	FindByID(ctx context.Context, domainID, transactionID string) (domain.Transaction, error)
}

type OrderRepository interface {
	FindAll(ctx context.Context, domainID string, filter Filter) ([]domain.Order, error)
}

type TransferRepository interface {
	FindAll(ctx context.Context, domainID string, filter Filter) ([]domain.Transfer, error)
}

type AddressRepository interface {
	FindAll(ctx context.Context, domainID, accountID string, filter Filter) ([]domain.Address, error)
}

type BalanceRepository interface {
	FindAll(ctx context.Context, domainID, accountID string) ([]domain.Balance, error)
}

type TickerRepository interface {
	FindByID(ctx context.Context, tickerID string) (domain.Ticker, error)
	FindAll(ctx context.Context, filter Filter) ([]domain.Ticker, error)
}

// PriceRepository returns the bid price of an asset symbol quoted in currency.
type PriceRepository interface {
	FindPrice(ctx context.Context, symbol, currency string) (domain.Price, error)
}

// RequestSubmitter submits order requests (intents) to the custody platform.
type RequestSubmitter interface {
	Create(ctx context.Context, req domain.OrderRequest, metadata map[string]string) (domain.RequestResult, error)
	Validate(ctx context.Context, req domain.OrderRequest) (domain.RequestResult, error)
}
