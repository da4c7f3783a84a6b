package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Store keys
const (
	KeySessionID        = "sessionId"
	KeyCartItems        = "cartItems"
	KeyInsightsResponse = "insightsResponse"
	KeyUserName         = "userName"
	KeyBudget           = "budget"
	KeyPreferences      = "preferences"
	KeySessionStarted   = "sessionStarted"
	KeyOrderHistory     = "orderHistory"
)

// KeyValueStore is durable storage for JSON values keyed by name
type KeyValueStore interface {
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, values map[string]interface{}) error
}

// Storage is the SQLite-backed KeyValueStore plus the insights history
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// NewStorage creates a new Storage instance
func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db, now: time.Now}
}

// Get returns the stored values for keys. Keys that were never set are absent
// from the result.
func (s *Storage) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	pairs, err := QueryKV(ctx, s.db, keys)
	if err != nil {
		return nil, &StorageError{Key: fmt.Sprint(keys), Op: "get", Err: err}
	}

	values := make(map[string]json.RawMessage, len(pairs))
	for _, pair := range pairs {
		values[pair.Key] = json.RawMessage(pair.Value)
	}
	return values, nil
}

// Set stores every value as JSON, atomically
func (s *Storage) Set(ctx context.Context, values map[string]interface{}) error {
	pairs := make([]KeyValuePair, 0, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return &StorageError{Key: key, Op: "set", Err: err}
		}
		pairs = append(pairs, KeyValuePair{Key: key, Value: string(data)})
	}

	if err := UpsertKV(ctx, s.db, pairs); err != nil {
		return &StorageError{Key: fmt.Sprint(keysOf(values)), Op: "set", Err: err}
	}
	return nil
}

// AppendInsight records a response in the history and returns its id
func (s *Storage) AppendInsight(ctx context.Context, req InsightsRequest, response string) (int64, error) {
	prefs, err := json.Marshal(req.Preferences)
	if err != nil {
		return 0, &StorageError{Key: "insights", Op: "append", Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO insights (created_at, budget, preferences, response) VALUES (?, ?, ?, ?)",
		s.now().UnixMilli(), req.Budget, string(prefs), response)
	if err != nil {
		return 0, &StorageError{Key: "insights", Op: "append", Err: err}
	}
	return res.LastInsertId()
}

// ListInsights returns the newest records first. limit <= 0 returns all.
func (s *Storage) ListInsights(ctx context.Context, limit int) ([]*InsightRecord, error) {
	query := "SELECT id, created_at, budget, preferences, response FROM insights ORDER BY id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Key: "insights", Op: "list", Err: err}
	}
	defer rows.Close()

	var records []*InsightRecord
	for rows.Next() {
		rec, err := scanInsight(rows)
		if err != nil {
			return nil, &StorageError{Key: "insights", Op: "list", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Key: "insights", Op: "list", Err: err}
	}
	return records, nil
}

// GetInsight loads one record by id. It returns sql.ErrNoRows (wrapped) when
// the id is unknown.
func (s *Storage) GetInsight(ctx context.Context, id int64) (*InsightRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, budget, preferences, response FROM insights WHERE id = ?", id)
	rec, err := scanInsight(row)
	if err != nil {
		return nil, &StorageError{Key: fmt.Sprintf("insights/%d", id), Op: "get", Err: err}
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInsight(row rowScanner) (*InsightRecord, error) {
	var (
		rec       InsightRecord
		createdAt int64
		prefs     string
	)
	if err := row.Scan(&rec.ID, &createdAt, &rec.Request.Budget, &prefs, &rec.Response); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(prefs), &rec.Request.Preferences); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt)
	rec.Insights = ExtractFields(rec.Response)
	return &rec, nil
}

// LoadCartItems returns the stored cart. Storage failures are logged and
// reported as an empty cart.
func LoadCartItems(ctx context.Context, store KeyValueStore) []CartItem {
	var items []CartItem
	if _, err := getJSON(ctx, store, KeyCartItems, &items); err != nil {
		LogError("Error loading cart items: %v", err)
		return nil
	}
	return items
}

// getJSON decodes one key into v. found is false when the key is unset or null.
func getJSON(ctx context.Context, store KeyValueStore, key string, v interface{}) (found bool, err error) {
	values, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, &StorageError{Key: key, Op: "get", Err: err}
	}
	return true, nil
}

func keysOf(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	return keys
}
