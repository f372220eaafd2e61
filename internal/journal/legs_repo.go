package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/betbot/custodygw/internal/domain"
)

// Entry 已落库的交易腿
type Entry struct {
	ID int64 `json:"id"`
	domain.TradeLegRecord
}

// RecordLeg 写入一条交易腿记录
func (j *Journal) RecordLeg(ctx context.Context, rec domain.TradeLegRecord) error {
	var estimate *string
	if rec.Estimate != nil {
		b, err := json.Marshal(rec.Estimate)
		if err != nil {
			return fmt.Errorf("encode estimate: %w", err)
		}
		s := string(b)
		estimate = &s
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
INSERT INTO trade_legs (request_id, operation, role, leg_type, ticker_id, amount, sender, recipient, accepted, message, error, estimate_json, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
`, nullIfEmpty(rec.RequestID), rec.Operation, string(rec.Role), string(rec.Leg), rec.TickerID, rec.Amount,
		rec.Sender, rec.Recipient, boolToInt(rec.Accepted), nullIfEmpty(rec.Message), nullIfEmpty(rec.Error),
		estimate, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert trade leg: %w", err)
	}
	return nil
}

// List 按时间倒序
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, request_id, operation, role, leg_type, ticker_id, amount, sender, recipient, accepted, message, error, estimate_json, created_at
FROM trade_legs
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			requestID sql.NullString
			role      string
			legType   string
			accepted  int
			message   sql.NullString
			errStr    sql.NullString
			estimate  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &requestID, &e.Operation, &role, &legType, &e.TickerID, &e.Amount,
			&e.Sender, &e.Recipient, &accepted, &message, &errStr, &estimate, &createdAt); err != nil {
			return nil, err
		}
		e.RequestID = requestID.String
		e.Role = domain.TradeLegRole(role)
		e.Leg = domain.TradeType(legType)
		e.Accepted = accepted != 0
		e.Message = message.String
		e.Error = errStr.String
		if estimate.Valid {
			var p domain.Price
			if err := json.Unmarshal([]byte(estimate.String), &p); err == nil {
				e.Estimate = &p
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
