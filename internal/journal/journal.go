package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var journalLog = logrus.WithField("component", "trade_journal")

// Journal 交易腿提交流水（SQLite）
type Journal struct {
	db *sql.DB
}

// Open path 为 ":memory:" 时使用内存库
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	journalLog.Infof("trade journal opened: %s", path)
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS trade_legs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  request_id TEXT,
  operation TEXT NOT NULL, -- "sell" | "buy" | "send"
  role TEXT NOT NULL,      -- "spend" | "receive" | "send"
  leg_type TEXT NOT NULL,
  ticker_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  sender TEXT NOT NULL,
  recipient TEXT NOT NULL,
  accepted INTEGER NOT NULL DEFAULT 0,
  message TEXT,
  error TEXT,
  estimate_json TEXT,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_trade_legs_created ON trade_legs(created_at DESC);`,
	}
	for _, q := range stmts {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate exec failed: %w", err)
		}
	}
	return nil
}
