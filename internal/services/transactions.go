package services

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/cache"
	"github.com/betbot/custodygw/pkg/syncgroup"
)

var txLog = logrus.WithField("component", "transaction_service")

// TransactionService 交易视图：把交易、订单、转账三类上游数据按账户视角拼接
type TransactionService struct {
	transactions ports.TransactionRepository
	orders       ports.OrderRepository
	transfers    ports.TransferRepository
	addresses    ports.AddressRepository
	tickers      *TickerService
}

func NewTransactionService(
	transactions ports.TransactionRepository,
	orders ports.OrderRepository,
	transfers ports.TransferRepository,
	addresses ports.AddressRepository,
	tickers *TickerService,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		orders:       orders,
		transfers:    transfers,
		addresses:    addresses,
		tickers:      tickers,
	}
}

// joinInputs 一次列表请求的三路上游数据
type joinInputs struct {
	transactions []domain.Transaction
	orders       []domain.Order
	transfers    []domain.Transfer
}

func (s *TransactionService) fetch(ctx context.Context, p domain.TransactionListParameter) (joinInputs, error) {
	var (
		in                  joinInputs
		mu                  sync.Mutex
		txErr, ordErr, tErr error
	)
	transferFilter := ports.Filter{
		"accountId": p.AccountID,
		"sortBy":    "registeredAt",
		"sortOrder": "DESC",
	}
	if p.TickerID != nil && *p.TickerID != "" {
		transferFilter["tickerId"] = *p.TickerID
	}

	sg := syncgroup.NewSyncGroup()
	sg.Add(func() {
		items, err := s.transactions.FindAll(ctx, p.DomainID, ports.Filter{"accountId": p.AccountID})
		mu.Lock()
		in.transactions, txErr = items, err
		mu.Unlock()
	})
	sg.Add(func() {
		items, err := s.orders.FindAll(ctx, p.DomainID, ports.Filter{"accountId": p.AccountID})
		mu.Lock()
		in.orders, ordErr = items, err
		mu.Unlock()
	})
	sg.Add(func() {
		items, err := s.transfers.FindAll(ctx, p.DomainID, transferFilter)
		mu.Lock()
		in.transfers, tErr = items, err
		mu.Unlock()
	})
	sg.Run()
	sg.Wait()

	switch {
	case txErr != nil:
		return in, errors.Wrap(txErr, "list transactions")
	case ordErr != nil:
		return in, errors.Wrap(ordErr, "list orders")
	case tErr != nil:
		return in, errors.Wrap(tErr, "list transfers")
	}
	return in, nil
}

// transferGroup 同一 transactionId 的转账
type transferGroup struct {
	txID      string
	transfers []domain.Transfer
}

// groupTransfers 按交易分组；没有 transactionId 的转账丢弃；组顺序为组内第一条转账的出现顺序
func groupTransfers(transfers []domain.Transfer) []transferGroup {
	index := make(map[string]int)
	var groups []transferGroup
	for _, t := range transfers {
		id := t.TxID()
		if id == "" {
			continue
		}
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, transferGroup{txID: id})
		}
		groups[i].transfers = append(groups[i].transfers, t)
	}
	return groups
}

// List 指定账户的交易列表（可按 ticker 过滤）
func (s *TransactionService) List(ctx context.Context, p domain.TransactionListParameter) ([]domain.TransactionData, error) {
	in, err := s.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	txByID := make(map[string]*domain.Transaction, len(in.transactions))
	for i := range in.transactions {
		tx := &in.transactions[i]
		if _, ok := txByID[tx.ID]; !ok {
			txByID[tx.ID] = tx
		}
	}
	orderByID := make(map[string]*domain.Order, len(in.orders))
	for i := range in.orders {
		o := &in.orders[i]
		if _, ok := orderByID[o.ID]; !ok {
			orderByID[o.ID] = o
		}
	}

	tickers := s.tickers.Resolver()
	addrs := s.addressResolver()

	groups := groupTransfers(in.transfers)
	out := make([]domain.TransactionData, 0, len(groups))
	for _, g := range groups {
		tx := txByID[g.txID]
		var order *domain.Order
		if id := tx.OrderID(); id != "" {
			order = orderByID[id]
		}

		tickerID := g.transfers[0].TickerID
		if p.TickerID != nil && *p.TickerID != "" {
			tickerID = *p.TickerID
		}
		ticker, err := tickers.Get(ctx, tickerID)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s", g.txID)
		}

		amount := settledAmount(g.transfers)
		out = append(out, domain.TransactionData{
			ID:             g.txID,
			Date:           transactionDate(tx, g.transfers),
			Amount:         amount,
			Ticker:         ticker,
			Type:           transactionType(p.AccountID, tx, order),
			Status:         tx.Status(),
			Price:          transactionPrice(amount, ticker, order),
			RelatedAccount: addrs.first(ctx, counterparties(p.AccountID, g.transfers)),
		})
	}
	txLog.Debugf("listed %d transactions: domain=%s account=%s", len(out), p.DomainID, p.AccountID)
	return out, nil
}

// Get 单笔交易明细，每一腿优先解析自身的对手方地址
func (s *TransactionService) Get(ctx context.Context, p domain.TransactionParameter) (domain.TransactionTransferData, error) {
	transfers, err := s.transfers.FindAll(ctx, p.DomainID, ports.Filter{
		"transactionId": p.TransactionID,
		"accountId":     p.AccountID,
	})
	if err != nil {
		return domain.TransactionTransferData{}, errors.Wrapf(err, "list transfers of %s", p.TransactionID)
	}
	if len(transfers) == 0 {
		return domain.TransactionTransferData{}, errors.Wrapf(domain.ErrNotFound, "transaction %s", p.TransactionID)
	}

	var tx *domain.Transaction
	if t, err := s.transactions.FindByID(ctx, p.DomainID, p.TransactionID); err != nil {
		txLog.WithError(err).Warnf("transaction %s not fetched, status unknown", p.TransactionID)
	} else {
		tx = &t
	}

	ticker, err := s.tickers.Get(ctx, transfers[0].TickerID)
	if err != nil {
		return domain.TransactionTransferData{}, errors.Wrapf(err, "transaction %s", p.TransactionID)
	}

	// 单腿解析不到（例如手续费腿）时回退到整笔交易的对手方
	addrs := s.addressResolver()
	fallback := ""
	legs := make([]domain.TransferData, 0, len(transfers))
	for _, t := range transfers {
		addr := addrs.first(ctx, counterparties(p.AccountID, []domain.Transfer{t}))
		if addr == domain.StatusUnknown {
			if fallback == "" {
				fallback = addrs.first(ctx, counterparties(p.AccountID, transfers))
			}
			addr = fallback
		}
		legs = append(legs, domain.TransferData{
			Amount:  t.Value,
			Type:    t.Kind,
			Address: addr,
		})
	}

	return domain.TransactionTransferData{
		Status:    tx.Status(),
		Date:      transactionDate(tx, transfers),
		Total:     domain.NewAmountWithValue(settledAmount(transfers), ticker),
		Transfers: legs,
	}, nil
}

// settledAmount 只汇总 Transfer 类型；非数字金额按 0
func settledAmount(transfers []domain.Transfer) string {
	values := make([]decimal.Decimal, 0, len(transfers))
	for _, t := range transfers {
		if !t.IsSettlement() {
			continue
		}
		d, _ := domain.ParseRawAmount(t.Value)
		values = append(values, d)
	}
	return domain.Sum(values...).String()
}

func transactionDate(tx *domain.Transaction, transfers []domain.Transfer) time.Time {
	if tx != nil && !tx.RegisteredAt.IsZero() {
		return tx.RegisteredAt
	}
	return transfers[0].RegisteredAt
}

// transactionType 没有订单，或者账户不是发送方，即为 Receive；否则优先取下单时记录的类型
func transactionType(accountID string, tx *domain.Transaction, order *domain.Order) string {
	if order == nil || !tx.SentByAccount(accountID) {
		return domain.DirectionReceive
	}
	if order.TypeOverride != "" {
		return order.TypeOverride
	}
	return domain.DirectionOutgoing
}

// transactionPrice 订单记录的估值优先，否则按当前买价计算
func transactionPrice(amount string, ticker domain.Ticker, order *domain.Order) domain.Price {
	if order != nil && order.Pricing != nil {
		return order.Pricing.Price()
	}
	return domain.EstimatePrice(domain.ScaleAmount(amount, ticker.Decimals), ticker.BidPrice)
}

// counterparties 账户是发送方时取接收方，否则取发送方
func counterparties(accountID string, transfers []domain.Transfer) []domain.TransferParty {
	var settled []domain.Transfer
	sent := false
	for _, t := range transfers {
		if !t.IsSettlement() {
			continue
		}
		settled = append(settled, t)
		if t.SentBy(accountID) {
			sent = true
		}
	}
	var parties []domain.TransferParty
	for _, t := range settled {
		if sent {
			if t.Recipient != nil {
				parties = append(parties, *t.Recipient)
			}
			continue
		}
		parties = append(parties, t.Senders...)
	}
	return parties
}

// addressResolver 请求级账户地址缓存
type addressResolver struct {
	repo ports.AddressRepository
	memo *cache.Memo[domain.AccountIdentifier, []string]
}

func (s *TransactionService) addressResolver() *addressResolver {
	return &addressResolver{repo: s.addresses, memo: cache.NewMemo[domain.AccountIdentifier, []string]()}
}

func (r *addressResolver) lookup(ctx context.Context, id domain.AccountIdentifier) []string {
	addrs, err := r.memo.GetOrLoad(id, func(id domain.AccountIdentifier) ([]string, error) {
		items, err := r.repo.FindAll(ctx, id.DomainID, id.AccountID, ports.Filter{})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(items))
		for _, a := range items {
			if a.Address != "" {
				out = append(out, a.Address)
			}
		}
		return out, nil
	})
	if err != nil {
		txLog.WithError(err).Debugf("address lookup failed: %s/%s", id.DomainID, id.AccountID)
		return nil
	}
	return addrs
}

// first 第一个可解析的地址，全部缺失时为 Unknown
func (r *addressResolver) first(ctx context.Context, parties []domain.TransferParty) string {
	for _, p := range parties {
		if p.Address != "" {
			return p.Address
		}
		if p.Type != domain.TransferPartyAccount || p.AccountID == "" {
			continue
		}
		if addrs := r.lookup(ctx, domain.AccountIdentifier{DomainID: p.DomainID, AccountID: p.AccountID}); len(addrs) > 0 {
			return addrs[0]
		}
	}
	return domain.StatusUnknown
}
