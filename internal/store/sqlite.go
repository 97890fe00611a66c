package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"negotiatord/internal/negotiation"
)

// RecordStore is the durable mirror of session state: a JSON snapshot per
// session plus the audit log and promotion catalogue the orchestrator
// reads on every turn. It replaces the Python original's MongoDB
// collections with a single local sqlite file, matching the teacher
// pack's pure-Go no-cgo driver choice.
type RecordStore struct {
	db *sql.DB
}

// OpenRecordStore opens (or creates) the sqlite database at path and runs
// its schema migration.
func OpenRecordStore(path string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping record store: %w", err)
	}
	rs := &RecordStore{db: db}
	if err := rs.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate record store: %w", err)
	}
	return rs, nil
}

// Close closes the underlying database connection.
func (rs *RecordStore) Close() error { return rs.db.Close() }

func (rs *RecordStore) migrate() error {
	_, err := rs.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			data        TEXT NOT NULL,
			expires_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

		CREATE TABLE IF NOT EXISTS audit_log (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id      TEXT NOT NULL,
			round           INTEGER NOT NULL,
			buyer_message   TEXT NOT NULL DEFAULT '',
			buyer_price     REAL NOT NULL,
			counter_price   REAL NOT NULL,
			tactic          TEXT NOT NULL,
			bot_score       REAL NOT NULL DEFAULT 0,
			state           TEXT NOT NULL,
			timestamp       INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_session_round ON audit_log(session_id, round);

		CREATE TABLE IF NOT EXISTS promotions (
			id              TEXT PRIMARY KEY,
			product_id      TEXT NOT NULL,
			active          INTEGER NOT NULL DEFAULT 1,
			valid_from      INTEGER NOT NULL,
			valid_until     INTEGER NOT NULL,
			min_price       REAL NOT NULL DEFAULT 0,
			discount_type   TEXT NOT NULL,
			discount_value  REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_promotions_product_active
			ON promotions(product_id, active, valid_from, valid_until);
	`)
	return err
}

// UpsertSession writes a session snapshot, keyed by session id.
func (rs *RecordStore) UpsertSession(s *negotiation.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = rs.db.Exec(`
		INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		s.SessionID, string(data), s.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// GetSession loads a session snapshot by id. Returns nil, nil on a miss.
func (rs *RecordStore) GetSession(id string) (*negotiation.Session, error) {
	var data string
	err := rs.db.QueryRow(`SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s negotiation.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// DeleteExpiredSessions removes every session record whose expires_at has
// passed, standing in for the original store's TTL index.
func (rs *RecordStore) DeleteExpiredSessions(now time.Time) (int64, error) {
	res, err := rs.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// AuditEntry is one recorded negotiation turn.
type AuditEntry struct {
	SessionID    string
	Round        int
	BuyerMessage string
	BuyerPrice   float64
	CounterPrice float64
	Tactic       string
	BotScore     float64
	State        string
	Timestamp    time.Time
}

// AppendAudit records one turn. Audit failures never roll back session
// state — callers log and continue.
func (rs *RecordStore) AppendAudit(e AuditEntry) error {
	_, err := rs.db.Exec(`
		INSERT INTO audit_log (session_id, round, buyer_message, buyer_price, counter_price, tactic, bot_score, state, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Round, e.BuyerMessage, e.BuyerPrice, e.CounterPrice, e.Tactic, e.BotScore, e.State, e.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// Promotion is a catalogue-wide or product-specific discount offer.
type Promotion struct {
	ID            string
	ProductID     string
	Active        bool
	ValidFrom     time.Time
	ValidUntil    time.Time
	MinPrice      float64
	DiscountType  string // "flat" or "percentage"
	DiscountValue float64
}

// allProductsSentinel matches any product, per the promotion lookup rule.
const allProductsSentinel = "__all__"

// FindBestPromotion returns the applicable promotion with the largest
// absolute discount amount against currentPrice, or nil if none applies.
func (rs *RecordStore) FindBestPromotion(productID string, currentPrice float64, now time.Time) (*Promotion, error) {
	rows, err := rs.db.Query(`
		SELECT id, product_id, active, valid_from, valid_until, min_price, discount_type, discount_value
		FROM promotions
		WHERE (product_id = ? OR product_id = ?)
		  AND active = 1
		  AND valid_from <= ?
		  AND valid_until >= ?
		  AND ? >= min_price`,
		productID, allProductsSentinel, now.Unix(), now.Unix(), currentPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var best *Promotion
	var bestDiscount float64
	for rows.Next() {
		var p Promotion
		var active int
		var validFrom, validUntil int64
		if err := rows.Scan(&p.ID, &p.ProductID, &active, &validFrom, &validUntil, &p.MinPrice, &p.DiscountType, &p.DiscountValue); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.Active = active == 1
		p.ValidFrom = time.Unix(validFrom, 0)
		p.ValidUntil = time.Unix(validUntil, 0)

		discount := discountAmount(p, currentPrice)
		if best == nil || discount > bestDiscount {
			pCopy := p
			best = &pCopy
			bestDiscount = discount
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return best, nil
}

func discountAmount(p Promotion, currentPrice float64) float64 {
	if p.DiscountType == "percentage" {
		return currentPrice * (p.DiscountValue / 100)
	}
	return p.DiscountValue
}
