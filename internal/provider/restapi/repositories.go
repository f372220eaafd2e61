package restapi

import (
	"context"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
)

var (
	_ ports.DomainRepository      = (*DomainRepository)(nil)
	_ ports.AccountRepository     = (*AccountRepository)(nil)
	_ ports.TransactionRepository = (*TransactionRepository)(nil)
	_ ports.OrderRepository       = (*OrderRepository)(nil)
	_ ports.TransferRepository    = (*TransferRepository)(nil)
	_ ports.AddressRepository     = (*AddressRepository)(nil)
	_ ports.BalanceRepository     = (*BalanceRepository)(nil)
	_ ports.TickerRepository      = (*TickerRepository)(nil)
)

const (
	domainsEndpoint      = "/v1/domains"
	accountsEndpoint     = "/v1/domains/%s/accounts"
	accountEndpoint      = "/v1/domains/%s/accounts/%s"
	transactionsEndpoint = "/v1/domains/%s/transactions"
	transactionEndpoint  = "/v1/domains/%s/transactions/%s"
	ordersEndpoint       = "/v1/domains/%s/transactions/orders"
	transfersEndpoint    = "/v1/domains/%s/transactions/transfers"
	addressesEndpoint    = "/v1/domains/%s/accounts/%s/addresses"
	balancesEndpoint     = "/v1/domains/%s/accounts/%s/balances"
	tickersEndpoint      = "/v1/tickers"
	tickerEndpoint       = "/v1/tickers/%s"
)

type DomainRepository struct{ c *Client }

func NewDomainRepository(c *Client) *DomainRepository { return &DomainRepository{c: c} }

func (r *DomainRepository) FindAll(ctx context.Context, filter ports.Filter) ([]domain.Domain, error) {
	var resp listResponse[domainDTO]
	if err := r.c.get(ctx, domainsEndpoint, filter, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, domainDTO.toDomain), nil
}

type AccountRepository struct{ c *Client }

func NewAccountRepository(c *Client) *AccountRepository { return &AccountRepository{c: c} }

func (r *AccountRepository) FindByID(ctx context.Context, domainID, accountID string) (domain.Account, error) {
	var resp accountDTO
	if err := r.c.get(ctx, path(accountEndpoint, domainID, accountID), nil, &resp); err != nil {
		return domain.Account{}, err
	}
	acc := resp.toDomain()
	if acc.DomainID == "" {
		acc.DomainID = domainID
	}
	return acc, nil
}

func (r *AccountRepository) FindAll(ctx context.Context, domainID string, filter ports.Filter) ([]domain.Account, error) {
	var resp listResponse[accountDTO]
	if err := r.c.get(ctx, path(accountsEndpoint, domainID), filter, &resp); err != nil {
		return nil, err
	}
	out := mapItems(resp.Items, accountDTO.toDomain)
	for i := range out {
		if out[i].DomainID == "" {
			out[i].DomainID = domainID
		}
	}
	return out, nil
}

type TransactionRepository struct{ c *Client }

func NewTransactionRepository(c *Client) *TransactionRepository {
	return &TransactionRepository{c: c}
}

func (r *TransactionRepository) FindAll(ctx context.Context, domainID string, filter ports.Filter) ([]domain.Transaction, error) {
	var resp listResponse[transactionDTO]
	if err := r.c.get(ctx, path(transactionsEndpoint, domainID), filter, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, transactionDTO.toDomain), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, domainID, transactionID string) (domain.Transaction, error) {
	var resp transactionDTO
	if err := r.c.get(ctx, path(transactionEndpoint, domainID, transactionID), nil, &resp); err != nil {
		return domain.Transaction{}, err
	}
	return resp.toDomain(), nil
}

type OrderRepository struct{ c *Client }

func NewOrderRepository(c *Client) *OrderRepository { return &OrderRepository{c: c} }

func (r *OrderRepository) FindAll(ctx context.Context, domainID string, filter ports.Filter) ([]domain.Order, error) {
	var resp listResponse[orderDTO]
	if err := r.c.get(ctx, path(ordersEndpoint, domainID), filter, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, orderDTO.toDomain), nil
}

type TransferRepository struct{ c *Client }

func NewTransferRepository(c *Client) *TransferRepository { return &TransferRepository{c: c} }

func (r *TransferRepository) FindAll(ctx context.Context, domainID string, filter ports.Filter) ([]domain.Transfer, error) {
	var resp listResponse[transferDTO]
	if err := r.c.get(ctx, path(transfersEndpoint, domainID), filter, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, transferDTO.toDomain), nil
}

type AddressRepository struct{ c *Client }

func NewAddressRepository(c *Client) *AddressRepository { return &AddressRepository{c: c} }

func (r *AddressRepository) FindAll(ctx context.Context, domainID, accountID string, filter ports.Filter) ([]domain.Address, error) {
	var resp listResponse[addressDTO]
	if err := r.c.get(ctx, path(addressesEndpoint, domainID, accountID), filter, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, addressDTO.toDomain), nil
}

type BalanceRepository struct{ c *Client }

func NewBalanceRepository(c *Client) *BalanceRepository { return &BalanceRepository{c: c} }

func (r *BalanceRepository) FindAll(ctx context.Context, domainID, accountID string) ([]domain.Balance, error) {
	var resp listResponse[balanceDTO]
	if err := r.c.get(ctx, path(balancesEndpoint, domainID, accountID), nil, &resp); err != nil {
		return nil, err
	}
	return mapItems(resp.Items, balanceDTO.toDomain), nil
}

// TickerRepository 忽略列表中的 ticker 不会出现在 FindAll 结果里
type TickerRepository struct {
	c      *Client
	ignore func(string) bool
}

func NewTickerRepository(c *Client, ignore func(tickerID string) bool) *TickerRepository {
	return &TickerRepository{c: c, ignore: ignore}
}

func (r *TickerRepository) FindByID(ctx context.Context, tickerID string) (domain.Ticker, error) {
	var resp tickerDTO
	if err := r.c.get(ctx, path(tickerEndpoint, tickerID), nil, &resp); err != nil {
		return domain.Ticker{}, err
	}
	return resp.toDomain(), nil
}

func (r *TickerRepository) FindAll(ctx context.Context, filter ports.Filter) ([]domain.Ticker, error) {
	var resp listResponse[tickerDTO]
	if err := r.c.get(ctx, tickersEndpoint, filter, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Ticker, 0, len(resp.Items))
	for _, it := range resp.Items {
		t := it.toDomain()
		if r.ignore != nil && r.ignore(t.ID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
