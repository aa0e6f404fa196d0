// Package flash stores one-shot user messages in an scs session backed by SQLite.
//
// A POST handler queues messages with Add and redirects; the next rendered
// page drains them with Pop.
package flash

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Message categories understood by the templates.
const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryWarning = "warning"
)

const sessionKeyFlashes = "flashes"

// Message is a single flashed message.
type Message struct {
	Category string
	Text     string
}

func init() {
	gob.Register([]Message{})
}

// Manager wraps scs.SessionManager with flash message helpers.
type Manager struct {
	*scs.SessionManager
	store *sqlite3store.SQLite3Store
}

// NewManager creates a session manager persisting sessions in sqlDB.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, lifetime time.Duration, secureCookies bool) (*Manager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	store := sqlite3store.New(sqlDB)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = lifetime
	sm.Cookie.Name = "bookshelf_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm, store: store}, nil
}

// Close stops the background cleanup of expired sessions.
func (m *Manager) Close() {
	m.store.StopCleanup()
}

// Add queues a message for the next rendered page.
func (m *Manager) Add(ctx context.Context, category, text string) {
	messages, _ := m.Get(ctx, sessionKeyFlashes).([]Message)
	messages = append(messages, Message{Category: category, Text: text})
	m.Put(ctx, sessionKeyFlashes, messages)
}

// AddAll queues several messages of the same category.
func (m *Manager) AddAll(ctx context.Context, category string, texts []string) {
	for _, text := range texts {
		m.Add(ctx, category, text)
	}
}

// Pop returns and clears every queued message, oldest first.
func (m *Manager) Pop(ctx context.Context) []Message {
	if !m.Exists(ctx, sessionKeyFlashes) {
		return nil
	}
	messages, _ := m.SessionManager.Pop(ctx, sessionKeyFlashes).([]Message)
	return messages
}
