package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/safar/go-pos-store/internal/models"
)

// Session holds the current user. Login checks a fixed demo allow-list;
// real credential storage is explicitly out of scope.
type Session struct {
	broadcaster

	mu   sync.RWMutex
	user *models.User
	now  func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

type demoAccount struct {
	password string
	user     models.User
}

var demoAccounts = map[string]demoAccount{
	"admin@pos.com": {
		password: "admin123",
		user: models.User{
			ID:    "1",
			Email: "admin@pos.com",
			Name:  "John Admin",
			Role:  models.RoleAdmin,
		},
	},
	"cashier@pos.com": {
		password: "cashier123",
		user: models.User{
			ID:    "2",
			Email: "cashier@pos.com",
			Name:  "Jane Cashier",
			Role:  models.RoleCashier,
		},
	},
}

// Login returns true and installs the user on a credential match; any
// mismatch is a plain false, never an error with detail.
func (s *Session) Login(email, password string) bool {
	account, ok := demoAccounts[email]
	if !ok || account.password != password {
		return false
	}

	s.mu.Lock()
	now := s.now()
	user := account.user
	user.CreatedAt = now
	user.LastLogin = &now
	s.user = &user
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

type sessionSnapshot struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

func (s *Session) Serialize() ([]byte, error) {
	s.mu.RLock()
	snap := sessionSnapshot{User: s.user, IsAuthenticated: s.user != nil}
	data, err := json.Marshal(snap)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("serialize session: %w", err)
	}
	return data, nil
}

func (s *Session) Hydrate(blob []byte) error {
	var snap sessionSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	s.mu.Lock()
	if snap.IsAuthenticated {
		s.user = snap.User
	} else {
		s.user = nil
	}
	s.mu.Unlock()

	s.notify()
	return nil
}
