package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/journal"
	"github.com/betbot/custodygw/pkg/config"
)

var httpLog = logrus.WithField("component", "http")

// TickerReader 资产查询
type TickerReader interface {
	Get(ctx context.Context, tickerID string) (domain.Ticker, error)
	List(ctx context.Context, currency string) ([]domain.Ticker, error)
}

// AccountReader 档案/余额/交易查询
type AccountReader interface {
	Profile(ctx context.Context, profileID string) (domain.ProfileData, error)
	Balance(ctx context.Context, profileID string) (domain.AccountBalance, error)
	AccountBalance(ctx context.Context, p domain.BalanceParameter) (domain.BalanceData, error)
	Transactions(ctx context.Context, p domain.TransactionListParameter) ([]domain.TransactionData, error)
	Transaction(ctx context.Context, p domain.TransactionParameter) (domain.TransactionTransferData, error)
}

// TradeOrchestrator 交易编排
type TradeOrchestrator interface {
	Sell(ctx context.Context, spend, receive domain.TradeData) (domain.RequestResult, error)
	Buy(ctx context.Context, spend, receive domain.TradeData) (domain.RequestResult, error)
	Send(ctx context.Context, leg domain.TradeData) (domain.RequestResult, error)
	Validate(ctx context.Context, leg domain.TradeData) (domain.RequestResult, error)
}

// JournalReader 交易腿流水查询（可选）
type JournalReader interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Config 网关运营方信息，用于组装买卖的两条腿
type Config struct {
	DomainID string
	Nostro   config.AccountRef
	Currency string
}

type Deps struct {
	Tickers  TickerReader
	Accounts AccountReader
	Trades   TradeOrchestrator
	Journal  JournalReader
}

type Server struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Server {
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &Server{cfg: cfg, deps: deps}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	tickers := r.Group("/tickers")
	tickers.GET("", s.wrap(s.handleTickersList))
	tickers.GET("/:tickerId", s.wrap(s.handleTickerGet))

	profiles := r.Group("/profiles/:profileId")
	profiles.GET("", s.wrap(s.handleProfileGet))
	profiles.GET("/balance", s.wrap(s.handleProfileBalance))

	accounts := r.Group("/accounts/:domainId/:accountId")
	accounts.GET("/balance/:tickerId", s.wrap(s.handleAccountBalance))
	accounts.GET("/transactions", s.wrap(s.handleTransactionsList))
	accounts.GET("/transactions/:transactionId", s.wrap(s.handleTransactionGet))

	trades := r.Group("/trades")
	trades.POST("/sell", s.wrap(s.handleSell))
	trades.POST("/buy", s.wrap(s.handleBuy))
	trades.POST("/send", s.wrap(s.handleSend))
	trades.POST("/validate", s.wrap(s.handleValidate))
	trades.GET("/journal", s.wrap(s.handleJournal))

	return r
}

type paramsKeyType string

const paramsKey paramsKeyType = "custodygw_path_params"

// wrap adapts net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		httpLog.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
