package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Listen      string
	DebugListen string // expvar/pprof 监听地址，为空不启动
}

// AccountRef 账户引用（domain + account）
type AccountRef struct {
	DomainID  string
	AccountID string
}

// ProviderConfig 托管平台配置
// 启动时加载一次，之后不可变，显式传给各组件
type ProviderConfig struct {
	BaseURL        string
	AuthURL        string
	ClientID       string
	ClientSecret   string
	DomainID       string     // 网关运营的 domain
	Nostro         AccountRef // 买卖交易的对手账户
	AuthorID       string     // 提交 intent 的用户 ID
	TickersIgnore  []string   // 合并余额中忽略的 ticker
	SigningKeyName string     // secretstore 中签名私钥的 key
	RateLimit      float64    // 上游每秒请求数，未配置时默认 20
	RateBurst      int
}

// PriceConfig 行情服务配置
type PriceConfig struct {
	BaseURL  string
	Currency string
}

// TradeConfig 交易编排配置
type TradeConfig struct {
	GatePreValidation bool // 预校验失败时是否拒绝该腿（false = 仅记录日志后继续提交）
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// JournalConfig 交易腿流水（sqlite）
type JournalConfig struct {
	Path string
}

// SecretsConfig 凭据存储（badger）
type SecretsConfig struct {
	Path          string
	EncryptionKey string
}

// Config 应用配置
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Price    PriceConfig
	Trade    TradeConfig
	Log      LogConfig
	Journal  JournalConfig
	Secrets  SecretsConfig
}

// ConfigFile 配置文件结构（用于 YAML/JSON 解析）
type ConfigFile struct {
	Server struct {
		Listen      string `yaml:"listen" json:"listen"`
		DebugListen string `yaml:"debug_listen" json:"debug_listen"`
	} `yaml:"server" json:"server"`
	Provider struct {
		BaseURL         string   `yaml:"base_url" json:"base_url"`
		AuthURL         string   `yaml:"auth_url" json:"auth_url"`
		ClientID        string   `yaml:"client_id" json:"client_id"`
		ClientSecret    string   `yaml:"client_secret" json:"client_secret"`
		DomainID        string   `yaml:"domain_id" json:"domain_id"`
		NostroDomainID  string   `yaml:"nostro_domain_id" json:"nostro_domain_id"` // 为空时使用 domain_id
		NostroAccountID string   `yaml:"nostro_account_id" json:"nostro_account_id"`
		AuthorID        string   `yaml:"author_id" json:"author_id"`
		TickersIgnore   []string `yaml:"tickers_ignore" json:"tickers_ignore"`
		SigningKeyName  string   `yaml:"signing_key_name" json:"signing_key_name"`
		RateLimit       float64  `yaml:"rate_limit" json:"rate_limit"`
		RateBurst       int      `yaml:"rate_burst" json:"rate_burst"`
	} `yaml:"provider" json:"provider"`
	Price struct {
		BaseURL  string `yaml:"base_url" json:"base_url"`
		Currency string `yaml:"currency" json:"currency"`
	} `yaml:"price" json:"price"`
	Trade struct {
		GatePreValidation *bool `yaml:"gate_pre_validation" json:"gate_pre_validation"`
	} `yaml:"trade" json:"trade"`
	Log struct {
		Level      string `yaml:"level" json:"level"`
		Format     string `yaml:"format" json:"format"`
		File       string `yaml:"file" json:"file"`
		MaxSize    int    `yaml:"max_size" json:"max_size"`
		MaxBackups int    `yaml:"max_backups" json:"max_backups"`
		MaxAge     int    `yaml:"max_age" json:"max_age"`
		Compress   bool   `yaml:"compress" json:"compress"`
	} `yaml:"log" json:"log"`
	Journal struct {
		Path string `yaml:"path" json:"path"`
	} `yaml:"journal" json:"journal"`
	Secrets struct {
		Path          string `yaml:"path" json:"path"`
		EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	} `yaml:"secrets" json:"secrets"`
}

// LoadFromFile 从指定文件加载配置；filePath 为空时只使用环境变量和默认值
// 优先级：敏感字段 环境变量 > 配置文件；其余字段 配置文件 > 环境变量 > 默认值
func LoadFromFile(filePath string) (*Config, error) {
	cf := &ConfigFile{}
	if filePath != "" {
		loaded, err := loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		cf = loaded
	}

	p := cf.Provider
	domainID := firstNonEmpty(p.DomainID, getEnv("CUSTODYGW_DOMAIN_ID", ""))
	cfg := &Config{
		Server: ServerConfig{
			Listen:      firstNonEmpty(cf.Server.Listen, getEnv("CUSTODYGW_LISTEN", ":8080")),
			DebugListen: firstNonEmpty(cf.Server.DebugListen, getEnv("CUSTODYGW_DEBUG_LISTEN", "")),
		},
		Provider: ProviderConfig{
			BaseURL:      firstNonEmpty(p.BaseURL, getEnv("CUSTODYGW_PROVIDER_URL", "")),
			AuthURL:      firstNonEmpty(p.AuthURL, getEnv("CUSTODYGW_AUTH_URL", "")),
			ClientID:     firstNonEmpty(getEnv("CUSTODYGW_CLIENT_ID", ""), p.ClientID),
			ClientSecret: firstNonEmpty(getEnv("CUSTODYGW_CLIENT_SECRET", ""), p.ClientSecret),
			DomainID:     domainID,
			Nostro: AccountRef{
				DomainID:  firstNonEmpty(p.NostroDomainID, getEnv("CUSTODYGW_NOSTRO_DOMAIN_ID", ""), domainID),
				AccountID: firstNonEmpty(p.NostroAccountID, getEnv("CUSTODYGW_NOSTRO_ACCOUNT_ID", "")),
			},
			AuthorID:       firstNonEmpty(p.AuthorID, getEnv("CUSTODYGW_AUTHOR_ID", "")),
			TickersIgnore:  p.TickersIgnore,
			SigningKeyName: firstNonEmpty(p.SigningKeyName, getEnv("CUSTODYGW_SIGNING_KEY_NAME", "provider/signing_key")),
			RateLimit:      p.RateLimit,
			RateBurst:      firstPositive(p.RateBurst, parseIntEnv("CUSTODYGW_RATE_BURST", 10)),
		},
		Price: PriceConfig{
			BaseURL:  firstNonEmpty(cf.Price.BaseURL, getEnv("CUSTODYGW_PRICE_URL", "https://api.coingecko.com/api/v3")),
			Currency: strings.ToLower(firstNonEmpty(cf.Price.Currency, getEnv("CUSTODYGW_PRICE_CURRENCY", "eur"))),
		},
		Trade: TradeConfig{
			GatePreValidation: parseBoolEnv("CUSTODYGW_GATE_PRE_VALIDATION", true),
		},
		Log: LogConfig{
			Level:      firstNonEmpty(cf.Log.Level, getEnv("LOG_LEVEL", "info")),
			Format:     firstNonEmpty(cf.Log.Format, getEnv("LOG_FORMAT", "text")),
			File:       firstNonEmpty(cf.Log.File, getEnv("LOG_FILE", "")),
			MaxSize:    firstPositive(cf.Log.MaxSize, parseIntEnv("LOG_MAX_SIZE", 100)),
			MaxBackups: firstPositive(cf.Log.MaxBackups, parseIntEnv("LOG_MAX_BACKUPS", 3)),
			MaxAge:     firstPositive(cf.Log.MaxAge, parseIntEnv("LOG_MAX_AGE", 7)),
			Compress:   cf.Log.Compress,
		},
		Journal: JournalConfig{
			Path: firstNonEmpty(cf.Journal.Path, getEnv("CUSTODYGW_JOURNAL_DB", "data/journal.db")),
		},
		Secrets: SecretsConfig{
			Path:          firstNonEmpty(cf.Secrets.Path, getEnv("CUSTODYGW_SECRETS_DIR", "")),
			EncryptionKey: firstNonEmpty(getEnv("CUSTODYGW_SECRETS_KEY", ""), cf.Secrets.EncryptionKey),
		},
	}
	if cf.Trade.GatePreValidation != nil {
		cfg.Trade.GatePreValidation = *cf.Trade.GatePreValidation
	}
	if cfg.Provider.RateLimit <= 0 {
		cfg.Provider.RateLimit = parseFloatEnv("CUSTODYGW_RATE_LIMIT", 20)
	}
	if len(cfg.Provider.TickersIgnore) == 0 {
		cfg.Provider.TickersIgnore = parseList(getEnv("CUSTODYGW_TICKERS_IGNORE", ""))
	}

	return cfg, nil
}

// loadConfigFile 加载配置文件（支持 YAML 和 JSON）
func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var configFile ConfigFile
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	return &configFile, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url 未配置")
	}
	if c.Provider.DomainID == "" {
		return fmt.Errorf("provider.domain_id 未配置")
	}
	if c.Provider.Nostro.AccountID == "" {
		return fmt.Errorf("provider.nostro_account_id 未配置")
	}
	if c.Provider.AuthURL != "" && (c.Provider.ClientID == "" || c.Provider.ClientSecret == "") {
		return fmt.Errorf("配置了 provider.auth_url 时 client_id/client_secret 不能为空")
	}
	if c.Price.Currency == "" {
		return fmt.Errorf("price.currency 不能为空")
	}
	return nil
}

// IsIgnoredTicker 合并余额中是否忽略该 ticker
func (p ProviderConfig) IsIgnoredTicker(tickerID string) bool {
	for _, id := range p.TickersIgnore {
		if id == tickerID {
			return true
		}
	}
	return false
}

// parseList 解析逗号分隔列表
func parseList(str string) []string {
	if str == "" {
		return nil
	}
	parts := strings.Split(str, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// parseBoolEnv 解析布尔环境变量
func parseFloatEnv(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
