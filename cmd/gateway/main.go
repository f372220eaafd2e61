package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/journal"
	"github.com/betbot/custodygw/internal/metrics"
	"github.com/betbot/custodygw/internal/provider/restapi"
	"github.com/betbot/custodygw/internal/server"
	"github.com/betbot/custodygw/internal/services"
	"github.com/betbot/custodygw/pkg/config"
	"github.com/betbot/custodygw/pkg/logger"
	"github.com/betbot/custodygw/pkg/ratelimit"
	"github.com/betbot/custodygw/pkg/secretstore"
	"github.com/betbot/custodygw/pkg/shutdown"
)

const secretClientKey = "provider/client_secret"

var log = logrus.WithField("component", "main")

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("CUSTODYGW_CONFIG"), "config file (yaml/json)")
		listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		logrus.Fatalf("init logger failed: %v", err)
	}

	closer := shutdown.NewManager()

	secrets, err := openSecrets(cfg.Secrets)
	if err != nil {
		log.Fatalf("open secretstore failed: %v", err)
	}
	if secrets != nil {
		closer.OnShutdown("secretstore", func(context.Context) error { return secrets.Close() })
		if cfg.Provider.ClientSecret == "" {
			if v, ok, err := secrets.GetString(secretClientKey); err == nil && ok {
				cfg.Provider.ClientSecret = v
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// 读接口与 intent 提交分开限速，避免聚合查询挤占下单
	limiter := ratelimit.NewManager(ratelimit.NewTokenBucket(cfg.Provider.RateLimit, cfg.Provider.RateBurst))
	limiter.Set("/v1/intents", ratelimit.NewTokenBucket(cfg.Provider.RateLimit, cfg.Provider.RateBurst))
	clientOpts := restapi.ClientOptions{Timeout: 30 * time.Second, Limiter: limiter}

	var client *restapi.Client
	if cfg.Provider.AuthURL != "" {
		tokens := restapi.NewOAuthTokenSource(cfg.Provider.AuthURL, cfg.Provider.ClientID, cfg.Provider.ClientSecret)
		closer.OnShutdown("oauth", func(context.Context) error { tokens.Close(); return nil })
		client = restapi.NewClient(cfg.Provider.BaseURL, tokens, clientOpts)
	} else {
		client = restapi.NewClient(cfg.Provider.BaseURL, nil, clientOpts)
	}

	prices := restapi.NewCoinPriceRepository(cfg.Price.BaseURL, time.Minute)
	closer.OnShutdown("prices", func(context.Context) error { prices.Close(); return nil })

	var signer restapi.Signer
	if secrets != nil {
		s, err := restapi.LoadEd25519Signer(secrets, cfg.Provider.SigningKeyName)
		if err != nil {
			log.Warnf("signing key unavailable, trade submissions will be refused: %v", err)
		} else {
			signer = s
		}
	}

	var journalReader server.JournalReader
	var recorder services.LegRecorder
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("open journal failed: %v", err)
		}
		closer.OnShutdown("journal", func(context.Context) error { return j.Close() })
		journalReader, recorder = j, j
	}

	var (
		domains    = restapi.NewDomainRepository(client)
		accounts   = restapi.NewAccountRepository(client)
		addresses  = restapi.NewAddressRepository(client)
		balances   = restapi.NewBalanceRepository(client)
		tickerRepo = restapi.NewTickerRepository(client, cfg.Provider.IsIgnoredTicker)
		tickerSvc  = services.NewTickerService(tickerRepo, prices, cfg.Price.Currency)
		balanceSvc = services.NewBalanceService(balances, tickerSvc)
		txSvc      = services.NewTransactionService(restapi.NewTransactionRepository(client), restapi.NewOrderRepository(client), restapi.NewTransferRepository(client), addresses, tickerSvc)
		accountSvc = services.NewAccountService(services.NewAccountResolver(domains, accounts), addresses, balances, balanceSvc, txSvc, cfg.Provider)
		submitter  = restapi.NewIntentSubmitter(client, signer, cfg.Provider.AuthorID, cfg.Provider.DomainID)
		tradeSvc   = services.NewTradeService(tickerSvc, submitter, recorder, services.TradeOptions{GatePreValidation: cfg.Trade.GatePreValidation})
	)

	srv := server.New(server.Config{
		DomainID: cfg.Provider.DomainID,
		Nostro:   cfg.Provider.Nostro,
		Currency: cfg.Price.Currency,
	}, server.Deps{
		Tickers:  tickerSvc,
		Accounts: accountSvc,
		Trades:   tradeSvc,
		Journal:  journalReader,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	closer.OnShutdown("http", httpSrv.Shutdown)

	debugCtx, stopDebug := context.WithCancel(context.Background())
	defer stopDebug()
	if cfg.Server.DebugListen != "" {
		if _, err := metrics.StartAsync(debugCtx, cfg.Server.DebugListen); err != nil {
			log.Warnf("debug server not started: %v", err)
		}
	}

	go func() {
		log.Infof("gateway listening on %s (domain=%s nostro=%s/%s)", cfg.Server.Listen, cfg.Provider.DomainID, cfg.Provider.Nostro.DomainID, cfg.Provider.Nostro.AccountID)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closer.Shutdown(ctx)

	log.Info("gateway stopped")
}

// openSecrets 未配置路径时返回 nil
func openSecrets(cfg config.SecretsConfig) (*secretstore.Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	var key []byte
	if cfg.EncryptionKey != "" {
		k, err := secretstore.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		key = k
	}
	return secretstore.Open(secretstore.OpenOptions{Path: cfg.Path, EncryptionKey: key, ReadOnly: true})
}
