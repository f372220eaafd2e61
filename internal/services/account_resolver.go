package services

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/syncgroup"
)

var resolverLog = logrus.WithField("component", "account_resolver")

// IdentifierKind 档案标识的形态
type IdentifierKind int

const (
	IdentifierExternal     IdentifierKind = iota // 其他（按 iban 自定义属性查询）
	IdentifierUUID                               // 8-4-4-4-12，直接作为 accountId
	IdentifierNumericAlias                       // 两位数字别名
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierUUID:
		return "uuid"
	case IdentifierNumericAlias:
		return "alias"
	default:
		return "external"
	}
}

var (
	uuidLikePattern     = regexp.MustCompile(`^[a-zA-Z0-9]{8}(-[a-zA-Z0-9]{4}){3}-[a-zA-Z0-9]{12}$`)
	numericAliasPattern = regexp.MustCompile(`^[0-9]{2}$`)
)

// ClassifyIdentifier 按优先级判定：UUID > 两位数字别名 > 其他
func ClassifyIdentifier(id string) IdentifierKind {
	switch {
	case uuidLikePattern.MatchString(id):
		return IdentifierUUID
	case numericAliasPattern.MatchString(id):
		return IdentifierNumericAlias
	default:
		return IdentifierExternal
	}
}

// accountLookup 单个 domain 内的查找策略
type accountLookup func(ctx context.Context, repo ports.AccountRepository, domainID, id string) ([]domain.Account, error)

var accountLookups = map[IdentifierKind]accountLookup{
	IdentifierUUID: func(ctx context.Context, repo ports.AccountRepository, domainID, id string) ([]domain.Account, error) {
		acc, err := repo.FindByID(ctx, domainID, id)
		if err != nil {
			return nil, err
		}
		return []domain.Account{acc}, nil
	},
	IdentifierNumericAlias: func(ctx context.Context, repo ports.AccountRepository, domainID, id string) ([]domain.Account, error) {
		all, err := repo.FindAll(ctx, domainID, ports.Filter{})
		if err != nil {
			return nil, err
		}
		var out []domain.Account
		for _, acc := range all {
			if acc.HasAlias(id) {
				out = append(out, acc)
			}
		}
		return out, nil
	},
	IdentifierExternal: func(ctx context.Context, repo ports.AccountRepository, domainID, id string) ([]domain.Account, error) {
		return repo.FindAll(ctx, domainID, ports.Filter{"metadata.customProperties": "iban:" + id})
	},
}

// AccountResolver 在所有 domain 中解析档案标识
type AccountResolver struct {
	domains  ports.DomainRepository
	accounts ports.AccountRepository
}

func NewAccountResolver(domains ports.DomainRepository, accounts ports.AccountRepository) *AccountResolver {
	return &AccountResolver{domains: domains, accounts: accounts}
}

// Resolve 每个 domain 并发查找，单个 domain 失败视为无匹配；结果按 domain 顺序展开，不去重
// 没有任何匹配时返回空列表（不是错误），只有 domain 列表本身拉取失败才返回错误
func (r *AccountResolver) Resolve(ctx context.Context, id string) ([]domain.Account, error) {
	domains, err := r.domains.FindAll(ctx, ports.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list domains")
	}

	kind := ClassifyIdentifier(id)
	lookup := accountLookups[kind]

	results := syncgroup.Collect(domains, func(d domain.Domain) ([]domain.Account, error) {
		return lookup(ctx, r.accounts, d.ID, id)
	})

	var out []domain.Account
	for i, res := range results {
		if res.Err != nil {
			resolverLog.WithError(res.Err).Debugf("no match in domain %s (kind=%s)", domains[i].ID, kind)
			continue
		}
		if len(res.Value) == 0 {
			continue
		}
		out = append(out, res.Value...)
	}
	return out, nil
}
