package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"nexdoc/console/security"

	_ "github.com/mattn/go-sqlite3"
)

const (
	keyToken   = "token"
	keyProfile = "profile"
)

// Profile is the small user blob cached next to the token, mirroring the
// second of the two persisted session keys.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Avatar  string `json:"avatar,omitempty"`
}

// Store owns the two pieces of persisted client state: the bearer token and
// the user profile. It is the single injected session dependency; nothing
// else in the codebase touches auth storage directly.
//
// The token is written through the configured cipher, so a stolen session
// database does not leak a usable credential.
type Store struct {
	mu             sync.Mutex
	db             *sql.DB
	cipher         *security.Cipher
	token          string
	profile        *Profile
	onUnauthorized func()
}

// Open opens (or creates) the session database at path and loads any
// persisted state. ":memory:" gives a process-local session.
func Open(path string, cipher *security.Cipher) (*Store, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening session database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating session table: %w", err)
	}

	s := &Store{db: db, cipher: cipher}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var stored string
	err := s.db.QueryRow("SELECT value FROM session WHERE key = ?", keyToken).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		// fresh session
	case err != nil:
		return fmt.Errorf("error loading session token: %w", err)
	default:
		token, err := s.cipher.Decrypt(stored)
		if err != nil {
			// A key change invalidates the stored token; treat as logged out.
			log.Warnf("Stored session token could not be decrypted, discarding: %v", err)
		} else {
			s.token = token
		}
	}

	var blob string
	err = s.db.QueryRow("SELECT value FROM session WHERE key = ?", keyProfile).Scan(&blob)
	if err == nil {
		var p Profile
		if err := json.Unmarshal([]byte(blob), &p); err == nil {
			s.profile = &p
		}
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("error loading session profile: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores a new bearer token, replacing any previous session.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.cipher.Encrypt(token)
	if err != nil {
		return fmt.Errorf("error encrypting token: %w", err)
	}
	if err := s.put(keyToken, stored); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Profile returns the cached user profile, or nil when none is stored.
func (s *Store) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SetProfile stores the user profile blob.
func (s *Store) SetProfile(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("error encoding profile: %w", err)
	}
	if err := s.put(keyProfile, string(blob)); err != nil {
		return err
	}
	copied := *p
	s.profile = &copied
	return nil
}

// Clear wipes both session keys. Used by logout and by HandleUnauthorized.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	if _, err := s.db.Exec("DELETE FROM session"); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	s.token = ""
	s.profile = nil
	return nil
}

// SetOnUnauthorized registers the hook invoked when the backend rejects the
// session (the UI's redirect-to-login action).
func (s *Store) SetOnUnauthorized(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = fn
}

// HandleUnauthorized clears the session and fires the registered hook.
// Several in-flight requests can all return 401 after a logout, so repeat
// calls while already logged out are no-ops: the hook fires at most once per
// session.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	if s.token == "" && s.profile == nil {
		s.mu.Unlock()
		return
	}
	if err := s.clearLocked(); err != nil {
		log.Errorf("Failed to clear session after 401: %v", err)
	}
	fn := s.onUnauthorized
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("error writing session %s: %w", key, err)
	}
	return nil
}
