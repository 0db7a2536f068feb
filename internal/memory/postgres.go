package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists assistant state in PostgreSQL for deployments that
// outgrow the embedded file.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
			user_message TEXT NOT NULL,
			assistant_response TEXT NOT NULL,
			context TEXT,
			task_type TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS memory (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
			content TEXT NOT NULL,
			category TEXT,
			importance INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS user_profile (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			birthday TEXT,
			age TEXT,
			interests TEXT,
			friends TEXT,
			important_dates TEXT,
			personal_notes TEXT,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_timestamp ON conversations (timestamp DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_memory_rank ON memory (importance DESC, timestamp DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveConversation(ctx context.Context, userMessage, assistantResponse, convContext, taskType string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (timestamp, user_message, assistant_response, context, task_type)
		 VALUES ($1, $2, $3, $4, $5)`,
		time.Now().UTC(), userMessage, assistantResponse, convContext, taskType,
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentConversations(ctx context.Context, limit int) ([]ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, timestamp, user_message, assistant_response, COALESCE(context, ''), COALESCE(task_type, '')
		 FROM conversations ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent conversations: %w", err)
	}
	defer rows.Close()

	turns := make([]ConversationTurn, 0, limit)
	for rows.Next() {
		var t ConversationTurn
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.UserMessage, &t.AssistantResponse, &t.Context, &t.TaskType); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return turns, nil
}

func (s *PostgresStore) SaveMemory(ctx context.Context, content string, category Category, importance int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memory (timestamp, content, category, importance) VALUES ($1, $2, $3, $4)`,
		time.Now().UTC(), content, string(category), clampImportance(importance),
	)
	if err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

func (s *PostgresStore) Memories(ctx context.Context, category Category, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, timestamp, content, COALESCE(category, ''), importance FROM memory`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, string(category))
	}
	query += fmt.Sprintf(` ORDER BY importance DESC, timestamp DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()
	return scanPgEntries(rows, limit)
}

func (s *PostgresStore) SearchMemories(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, timestamp, content, COALESCE(category, ''), importance
		 FROM memory WHERE content ILIKE $1
		 ORDER BY importance DESC, timestamp DESC LIMIT $2`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	defer rows.Close()
	return scanPgEntries(rows, limit)
}

func (s *PostgresStore) DeleteMemory(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM memory WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete memory %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p Profile) error {
	existing, err := s.Profile(ctx)
	now := time.Now().UTC()
	switch {
	case errors.Is(err, ErrNoProfile):
		_, err = s.pool.Exec(ctx,
			`INSERT INTO user_profile (name, birthday, age, interests, friends, important_dates, personal_notes, last_updated)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.Name, p.Birthday, p.Age, p.Interests, p.Friends, p.ImportantDates, p.PersonalNotes, now,
		)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	case err != nil:
		return err
	}

	merged := mergeProfile(existing, p)
	_, err = s.pool.Exec(ctx,
		`UPDATE user_profile SET name=$1, birthday=$2, age=$3, interests=$4, friends=$5,
		        important_dates=$6, personal_notes=$7, last_updated=$8
		 WHERE id=$9`,
		merged.Name, merged.Birthday, merged.Age, merged.Interests, merged.Friends,
		merged.ImportantDates, merged.PersonalNotes, now, existing.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(name,''), COALESCE(birthday,''), COALESCE(age,''), COALESCE(interests,''),
		        COALESCE(friends,''), COALESCE(important_dates,''), COALESCE(personal_notes,''), last_updated
		 FROM user_profile ORDER BY id DESC LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.Birthday, &p.Age, &p.Interests, &p.Friends, &p.ImportantDates, &p.PersonalNotes, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNoProfile
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgEntries(rows pgx.Rows, capHint int) ([]Entry, error) {
	entries := make([]Entry, 0, capHint)
	for rows.Next() {
		var (
			e   Entry
			cat string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Content, &cat, &e.Importance); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		e.Category = Category(cat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return entries, nil
}
