package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/config"
	"github.com/betbot/custodygw/pkg/syncgroup"
)

var accountLog = logrus.WithField("component", "account_service")

// AccountService 档案/合并余额聚合
type AccountService struct {
	resolver     *AccountResolver
	addresses    ports.AddressRepository
	rawBalances  ports.BalanceRepository
	balances     *BalanceService
	transactions *TransactionService
	provider     config.ProviderConfig
}

func NewAccountService(
	resolver *AccountResolver,
	addresses ports.AddressRepository,
	rawBalances ports.BalanceRepository,
	balances *BalanceService,
	transactions *TransactionService,
	provider config.ProviderConfig,
) *AccountService {
	return &AccountService{
		resolver:     resolver,
		addresses:    addresses,
		rawBalances:  rawBalances,
		balances:     balances,
		transactions: transactions,
		provider:     provider,
	}
}

func (s *AccountService) resolve(ctx context.Context, profileID string) ([]domain.Account, error) {
	accounts, err := s.resolver.Resolve(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, errors.Wrapf(domain.ErrNotFound, "profile %s", profileID)
	}
	return accounts, nil
}

// Profile 档案下每个账户的地址与持有资产，账户间并发
func (s *AccountService) Profile(ctx context.Context, profileID string) (domain.ProfileData, error) {
	accounts, err := s.resolve(ctx, profileID)
	if err != nil {
		return domain.ProfileData{}, err
	}

	results := syncgroup.Collect(accounts, func(acc domain.Account) (domain.AccountData, error) {
		return domain.AccountData{
			AccountIdentifier: acc.Identifier(),
			Addresses:         s.accountAddresses(ctx, acc),
			Tickers:           s.accountTickers(ctx, acc),
			Alias:             acc.Alias,
		}, nil
	})

	data := domain.ProfileData{ProfileID: profileID, Accounts: make([]domain.AccountData, 0, len(results))}
	for _, r := range results {
		data.Accounts = append(data.Accounts, r.Value)
	}
	return data, nil
}

func (s *AccountService) accountAddresses(ctx context.Context, acc domain.Account) []string {
	items, err := s.addresses.FindAll(ctx, acc.DomainID, acc.ID, ports.Filter{})
	if err != nil {
		accountLog.WithError(err).Warnf("addresses of %s/%s unavailable", acc.DomainID, acc.ID)
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Address)
	}
	return out
}

func (s *AccountService) accountTickers(ctx context.Context, acc domain.Account) []string {
	items, err := s.rawBalances.FindAll(ctx, acc.DomainID, acc.ID)
	if err != nil {
		accountLog.WithError(err).Warnf("balances of %s/%s unavailable", acc.DomainID, acc.ID)
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, b := range items {
		out = append(out, b.TickerID)
	}
	return out
}

// Balance 档案下所有账户的余额按账户顺序展开，忽略配置中的 ticker
func (s *AccountService) Balance(ctx context.Context, profileID string) (domain.AccountBalance, error) {
	accounts, err := s.resolve(ctx, profileID)
	if err != nil {
		return domain.AccountBalance{}, err
	}

	tickers := s.balances.tickers.Resolver()
	results := syncgroup.Collect(accounts, func(acc domain.Account) ([]domain.BalanceData, error) {
		return s.balances.list(ctx, acc.Identifier(), tickers)
	})

	out := domain.AccountBalance{Balances: []domain.BalanceData{}}
	for i, r := range results {
		if r.Err != nil {
			accountLog.WithError(r.Err).Warnf("account %s contributes no balance", accounts[i].ID)
			continue
		}
		for _, b := range r.Value {
			if s.provider.IsIgnoredTicker(b.Ticker.ID) {
				continue
			}
			out.Balances = append(out.Balances, b)
		}
	}
	return out, nil
}

// AccountBalance 单账户单资产余额
func (s *AccountService) AccountBalance(ctx context.Context, p domain.BalanceParameter) (domain.BalanceData, error) {
	return s.balances.Get(ctx, p)
}

// Transactions 账户交易列表
func (s *AccountService) Transactions(ctx context.Context, p domain.TransactionListParameter) ([]domain.TransactionData, error) {
	return s.transactions.List(ctx, p)
}

// Transaction 单笔交易明细
func (s *AccountService) Transaction(ctx context.Context, p domain.TransactionParameter) (domain.TransactionTransferData, error) {
	return s.transactions.Get(ctx, p)
}
