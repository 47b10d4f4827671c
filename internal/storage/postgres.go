package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/velora-ai/velora/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

// PostgresStorage is the production Storage implementation. Context version
// history is kept in its own table, trimmed to MaxContextVersions per
// thread; usage records are plain INSERTs so concurrent writers never race
// on a shared counter.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetOrCreateContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	c, err := s.loadContext(ctx, threadID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := &models.ConversationContext{
		ThreadID:    threadID,
		Version:     1,
		LastUpdated: time.Now().UTC(),
	}
	// ON CONFLICT keeps the call idempotent under concurrent first turns.
	query := `
		INSERT INTO conversation_contexts (thread_id, long_term, short_term, version, last_updated)
		VALUES ($1, '{}', '{}', 1, $2)
		ON CONFLICT (thread_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, threadID, created.LastUpdated); err != nil {
		return nil, fmt.Errorf("error creating context: %v", err)
	}
	return s.loadContext(ctx, threadID)
}

func (s *PostgresStorage) loadContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	query := `
		SELECT thread_id, long_term, short_term, version, last_updated
		FROM conversation_contexts
		WHERE thread_id = $1`

	var (
		c         models.ConversationContext
		longTerm  []byte
		shortTerm []byte
	)
	err := s.db.QueryRowContext(ctx, query, threadID).Scan(
		&c.ThreadID, &longTerm, &shortTerm, &c.Version, &c.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying context: %v", err)
	}
	if err := json.Unmarshal(longTerm, &c.LongTerm); err != nil {
		return nil, fmt.Errorf("error decoding long-term context: %v", err)
	}
	if err := json.Unmarshal(shortTerm, &c.ShortTerm); err != nil {
		return nil, fmt.Errorf("error decoding short-term context: %v", err)
	}
	return &c, nil
}

// saveContext snapshots the pre-change state into context_versions, trims
// history to the bound, then commits the new state, all in one transaction.
func (s *PostgresStorage) saveContext(ctx context.Context, prior, next *models.ConversationContext) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	priorLong, err := json.Marshal(prior.LongTerm)
	if err != nil {
		return fmt.Errorf("error encoding long-term context: %v", err)
	}
	priorShort, err := json.Marshal(prior.ShortTerm)
	if err != nil {
		return fmt.Errorf("error encoding short-term context: %v", err)
	}
	snapshot := `
		INSERT INTO context_versions (thread_id, version, long_term, short_term, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (thread_id, version) DO NOTHING`
	if _, err := tx.ExecContext(ctx, snapshot, prior.ThreadID, prior.Version, priorLong, priorShort, prior.LastUpdated); err != nil {
		return fmt.Errorf("error snapshotting context: %v", err)
	}

	trim := `
		DELETE FROM context_versions
		WHERE thread_id = $1 AND version NOT IN (
			SELECT version FROM context_versions
			WHERE thread_id = $1
			ORDER BY version DESC
			LIMIT $2
		)`
	if _, err := tx.ExecContext(ctx, trim, prior.ThreadID, MaxContextVersions); err != nil {
		return fmt.Errorf("error trimming context history: %v", err)
	}

	nextLong, err := json.Marshal(next.LongTerm)
	if err != nil {
		return fmt.Errorf("error encoding long-term context: %v", err)
	}
	nextShort, err := json.Marshal(next.ShortTerm)
	if err != nil {
		return fmt.Errorf("error encoding short-term context: %v", err)
	}
	update := `
		UPDATE conversation_contexts
		SET long_term = $2, short_term = $3, version = $4, last_updated = $5
		WHERE thread_id = $1`
	if _, err := tx.ExecContext(ctx, update, next.ThreadID, nextLong, nextShort, next.Version, next.LastUpdated); err != nil {
		return fmt.Errorf("error updating context: %v", err)
	}

	return tx.Commit()
}

func (s *PostgresStorage) MergeLongTerm(ctx context.Context, threadID string, partial models.LongTermContext) (*models.ConversationContext, error) {
	current, err := s.GetOrCreateContext(ctx, threadID)
	if err != nil {
		return nil, err
	}
	prior := current.Clone()
	current.MergeLongTerm(partial)
	current.Version++
	current.LastUpdated = time.Now().UTC()
	if err := s.saveContext(ctx, prior, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *PostgresStorage) MergeShortTerm(ctx context.Context, threadID string, partial models.ShortTermContext) (*models.ConversationContext, error) {
	current, err := s.GetOrCreateContext(ctx, threadID)
	if err != nil {
		return nil, err
	}
	prior := current.Clone()
	current.MergeShortTerm(partial)
	current.Version++
	current.LastUpdated = time.Now().UTC()
	if err := s.saveContext(ctx, prior, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *PostgresStorage) ListVersions(ctx context.Context, threadID string) ([]*models.ConversationContext, error) {
	query := `
		SELECT thread_id, version, long_term, short_term, last_updated
		FROM context_versions
		WHERE thread_id = $1
		ORDER BY version ASC`

	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("error querying context versions: %v", err)
	}
	defer rows.Close()

	var versions []*models.ConversationContext
	for rows.Next() {
		var (
			c         models.ConversationContext
			longTerm  []byte
			shortTerm []byte
		)
		if err := rows.Scan(&c.ThreadID, &c.Version, &longTerm, &shortTerm, &c.LastUpdated); err != nil {
			return nil, fmt.Errorf("error scanning context version: %v", err)
		}
		if err := json.Unmarshal(longTerm, &c.LongTerm); err != nil {
			return nil, fmt.Errorf("error decoding long-term context: %v", err)
		}
		if err := json.Unmarshal(shortTerm, &c.ShortTerm); err != nil {
			return nil, fmt.Errorf("error decoding short-term context: %v", err)
		}
		versions = append(versions, &c)
	}
	return versions, rows.Err()
}

func (s *PostgresStorage) ResetToVersion(ctx context.Context, threadID string, version int) (*models.ConversationContext, error) {
	current, err := s.loadContext(ctx, threadID)
	if err != nil {
		return nil, err
	}

	versions, err := s.ListVersions(ctx, threadID)
	if err != nil {
		return nil, err
	}
	var target *models.ConversationContext
	for _, v := range versions {
		if v.Version == version {
			target = v
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	restored := target.Clone()
	restored.Version = current.Version + 1
	restored.LastUpdated = time.Now().UTC()
	if err := s.saveContext(ctx, current, restored); err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *PostgresStorage) ClearContext(ctx context.Context, threadID string) (*models.ConversationContext, error) {
	current, err := s.GetOrCreateContext(ctx, threadID)
	if err != nil {
		return nil, err
	}
	cleared := &models.ConversationContext{
		ThreadID:    threadID,
		Version:     current.Version + 1,
		LastUpdated: time.Now().UTC(),
	}
	if err := s.saveContext(ctx, current, cleared); err != nil {
		return nil, err
	}
	return cleared, nil
}

func (s *PostgresStorage) SaveTurn(ctx context.Context, turn *models.Message) error {
	assumptions, err := json.Marshal(turn.Assumptions)
	if err != nil {
		return fmt.Errorf("error encoding assumptions: %v", err)
	}
	query := `
		INSERT INTO chat_turns (id, thread_id, role, content, created_at, task_type, media_url, media_type, assumptions, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		turn.ID, turn.ThreadID, string(turn.Role), turn.Content, turn.Timestamp,
		turn.TaskType, turn.MediaURL, turn.MediaType, assumptions, turn.Feedback)
	if err != nil {
		return fmt.Errorf("error saving turn: %v", err)
	}
	return nil
}

func (s *PostgresStorage) GetTurns(ctx context.Context, threadID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, thread_id, role, content, created_at, task_type, media_url, media_type, assumptions, feedback
		FROM chat_turns
		WHERE thread_id = $1
		ORDER BY created_at DESC
		LIMIT NULLIF($2, 0)`

	rows, err := s.db.QueryContext(ctx, query, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %v", err)
	}
	defer rows.Close()

	var turns []*models.Message
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to newest-last, the order callers feed into prompts.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *PostgresStorage) LatestTurnByTask(ctx context.Context, threadID string, role models.Role, taskType string) (*models.Message, error) {
	query := `
		SELECT id, thread_id, role, content, created_at, task_type, media_url, media_type, assumptions, feedback
		FROM chat_turns
		WHERE thread_id = $1 AND role = $2 AND task_type = $3
		ORDER BY created_at DESC
		LIMIT 1`

	rows, err := s.db.QueryContext(ctx, query, threadID, string(role), taskType)
	if err != nil {
		return nil, fmt.Errorf("error querying latest turn: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanTurn(rows)
}

func scanTurn(rows *sql.Rows) (*models.Message, error) {
	var (
		turn        models.Message
		role        string
		assumptions []byte
	)
	err := rows.Scan(&turn.ID, &turn.ThreadID, &role, &turn.Content, &turn.Timestamp,
		&turn.TaskType, &turn.MediaURL, &turn.MediaType, &assumptions, &turn.Feedback)
	if err != nil {
		return nil, fmt.Errorf("error scanning turn: %v", err)
	}
	turn.Role = models.Role(role)
	if err := json.Unmarshal(assumptions, &turn.Assumptions); err != nil {
		return nil, fmt.Errorf("error decoding assumptions: %v", err)
	}
	return &turn, nil
}

func (s *PostgresStorage) AppendUsage(ctx context.Context, record *models.UsageRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("error encoding usage metadata: %v", err)
	}
	query := `
		INSERT INTO usage_records (id, user_id, capability, created_at, tokens, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.UserID, string(record.Capability), record.Timestamp, record.Tokens, metadata)
	if err != nil {
		return fmt.Errorf("error appending usage record: %v", err)
	}
	return nil
}

func (s *PostgresStorage) CountUsage(ctx context.Context, userID string, capability models.Capability, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM usage_records
		WHERE user_id = $1 AND capability = $2 AND created_at >= $3 AND created_at < $4`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, string(capability), from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting usage: %v", err)
	}
	return count, nil
}

func (s *PostgresStorage) SumTokens(ctx context.Context, userID string, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(tokens), 0)
		FROM usage_records
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`

	var total int
	err := s.db.QueryRowContext(ctx, query, userID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("error summing token usage: %v", err)
	}
	return total, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
