package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists assistant state in a single embedded database file.
type SQLiteStore struct {
	db *sql.DB
}

// Timestamps are compared as strings by ORDER BY, so the stored layout must
// be fixed-width: RFC3339Nano trims trailing fractional zeros, which makes
// "…:05Z" sort after "…:05.3Z".
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer by design. A single shared connection lets
	// database/sql serialize concurrent callers instead of having them fight
	// for the write lock.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	if err := s.migrateLegacyMemoryTable(ctx); err != nil {
		return err
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			user_message TEXT NOT NULL,
			assistant_response TEXT NOT NULL,
			context TEXT,
			task_type TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS memory (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			content TEXT NOT NULL,
			category TEXT,
			importance INTEGER DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS user_profile (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			birthday TEXT,
			age TEXT,
			interests TEXT,
			friends TEXT,
			important_dates TEXT,
			personal_notes TEXT,
			last_updated TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_timestamp ON conversations (timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_memory_rank ON memory (importance, timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// migrateLegacyMemoryTable drops a memory table that still carries the old
// conversation-shaped columns. The migration is destructive: legacy rows are
// discarded, not converted.
func (s *SQLiteStore) migrateLegacyMemoryTable(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='memory'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect memory table: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(memory)`)
	if err != nil {
		return fmt.Errorf("read memory table info: %w", err)
	}
	defer rows.Close()

	legacy := map[string]bool{}
	for rows.Next() {
		var (
			cid       int
			col, typ  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &col, &typ, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan memory table info: %w", err)
		}
		legacy[col] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate memory table info: %w", err)
	}

	if legacy["user_message"] && legacy["assistant_response"] {
		slog.Warn("legacy memory table schema detected, dropping and recreating (existing rows discarded)")
		if _, err := s.db.ExecContext(ctx, `DROP TABLE memory`); err != nil {
			return fmt.Errorf("drop legacy memory table: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveConversation(ctx context.Context, userMessage, assistantResponse, convContext, taskType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (timestamp, user_message, assistant_response, context, task_type)
		 VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(sqliteTimeLayout),
		userMessage,
		assistantResponse,
		convContext,
		taskType,
	)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentConversations(ctx context.Context, limit int) ([]ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, user_message, assistant_response, COALESCE(context, ''), COALESCE(task_type, '')
		 FROM conversations ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent conversations: %w", err)
	}
	defer rows.Close()

	turns := make([]ConversationTurn, 0, limit)
	for rows.Next() {
		var (
			t  ConversationTurn
			ts string
		)
		if err := rows.Scan(&t.ID, &ts, &t.UserMessage, &t.AssistantResponse, &t.Context, &t.TaskType); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		t.Timestamp = parseTimestamp(ts)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return turns, nil
}

func (s *SQLiteStore) SaveMemory(ctx context.Context, content string, category Category, importance int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory (timestamp, content, category, importance) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(sqliteTimeLayout),
		content,
		string(category),
		clampImportance(importance),
	)
	if err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Memories(ctx context.Context, category Category, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, timestamp, content, COALESCE(category, ''), importance
		FROM memory`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY importance DESC, timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows, limit)
}

func (s *SQLiteStore) SearchMemories(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, content, COALESCE(category, ''), importance
		 FROM memory WHERE LOWER(content) LIKE ?
		 ORDER BY importance DESC, timestamp DESC LIMIT ?`,
		"%"+strings.ToLower(query)+"%",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows, limit)
}

func (s *SQLiteStore) DeleteMemory(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memory WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete memory %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete memory %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p Profile) error {
	existing, err := s.Profile(ctx)
	now := time.Now().UTC()
	switch {
	case errors.Is(err, ErrNoProfile):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO user_profile (name, birthday, age, interests, friends, important_dates, personal_notes, last_updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Birthday, p.Age, p.Interests, p.Friends, p.ImportantDates, p.PersonalNotes,
			now.Format(sqliteTimeLayout),
		)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	case err != nil:
		return err
	}

	merged := mergeProfile(existing, p)
	_, err = s.db.ExecContext(ctx,
		`UPDATE user_profile SET name=?, birthday=?, age=?, interests=?, friends=?, important_dates=?, personal_notes=?, last_updated=?
		 WHERE id=?`,
		merged.Name, merged.Birthday, merged.Age, merged.Interests, merged.Friends,
		merged.ImportantDates, merged.PersonalNotes, now.Format(sqliteTimeLayout), existing.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Profile(ctx context.Context) (Profile, error) {
	var (
		p  Profile
		ts string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(name,''), COALESCE(birthday,''), COALESCE(age,''), COALESCE(interests,''),
		        COALESCE(friends,''), COALESCE(important_dates,''), COALESCE(personal_notes,''), last_updated
		 FROM user_profile ORDER BY id DESC LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.Birthday, &p.Age, &p.Interests, &p.Friends, &p.ImportantDates, &p.PersonalNotes, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNoProfile
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	p.LastUpdated = parseTimestamp(ts)
	return p, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows, capHint int) ([]Entry, error) {
	entries := make([]Entry, 0, capHint)
	for rows.Next() {
		var (
			e   Entry
			ts  string
			cat string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Content, &cat, &e.Importance); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		e.Timestamp = parseTimestamp(ts)
		e.Category = Category(cat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return entries, nil
}

func parseTimestamp(v string) time.Time {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
