package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/logging"
)

// DefaultRetentionDays is how long stored turns survive before cleanup.
const DefaultRetentionDays = 90

// cleanupProbability makes cleanup piggyback on roughly one turn in fifty
// instead of requiring a scheduler.
const cleanupProbability = 0.02

// minimalContextLimit caps how many recent rows a deep-history load pulls.
const minimalContextLimit = 10

// TurnMeta is the per-turn metadata persisted alongside an important
// exchange.
type TurnMeta struct {
	Platform     string         `json:"platform"`
	SessionID    string         `json:"session_id,omitempty"`
	FunctionName string         `json:"function_name,omitempty"`
	Arguments    map[string]any `json:"arguments,omitempty"`
}

// Store persists selected conversation turns in Postgres. All methods are
// safe for concurrent use; the pool handles connection management.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewStore connects to Postgres and verifies the connection.
func NewStore(ctx context.Context, databaseURL string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// LoadMinimalContext returns the user's most recent stored messages on this
// platform, oldest first, ready to prepend to a model request.
func (s *Store) LoadMinimalContext(ctx context.Context, userID, platform string) ([]core.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT role, content, created_at
		FROM conversation_messages
		WHERE user_id = $1 AND platform = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, platform, minimalContextLimit)
	if err != nil {
		return nil, fmt.Errorf("query conversation history: %w", err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var m core.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}

	// Rows arrive newest first; callers want conversational order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SaveImportant persists one user/assistant exchange as two rows in a single
// transaction. The metadata column records the tool invocation, if any.
func (s *Store) SaveImportant(ctx context.Context, userID string, userMsg, assistantMsg core.Message, meta TurnMeta) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal turn metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `
		INSERT INTO conversation_messages (user_id, role, content, session_id, metadata, platform, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, insert,
		userID, userMsg.Role, userMsg.Content, meta.SessionID, metaJSON, meta.Platform, userMsg.Timestamp); err != nil {
		return fmt.Errorf("insert user message: %w", err)
	}
	if _, err := tx.Exec(ctx, insert,
		userID, assistantMsg.Role, assistantMsg.Content, meta.SessionID, metaJSON, meta.Platform, assistantMsg.Timestamp); err != nil {
		return fmt.Errorf("insert assistant message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CountByDateRange reports how many messages a user stored within [from, to].
func (s *Store) CountByDateRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM conversation_messages
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3`,
		userID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// CleanupOld deletes messages older than the retention window and returns
// the number of rows removed.
func (s *Store) CleanupOld(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM conversation_messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MaybeCleanup probabilistically fires retention cleanup in the background.
// Failures are logged and never surface to the turn that triggered them.
func (s *Store) MaybeCleanup(retentionDays int) {
	if rand.Float64() >= cleanupProbability {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := s.CleanupOld(ctx, retentionDays)
		if err != nil {
			s.logger.Warn("conversation cleanup failed", "error", err)
			return
		}
		if removed > 0 {
			s.logger.Info("conversation cleanup done", "removed", removed)
		}
	}()
}
