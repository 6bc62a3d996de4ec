package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// DiscordIdentity carries the fields the identity provider returns for the
// logged-in user. Immutable for the lifetime of a session.
type DiscordIdentity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
	Verified      bool   `json:"verified"`
}

// DisplayName prefers the global display name, then the first token of the
// username, else empty.
func (d DiscordIdentity) DisplayName() string {
	if d.GlobalName != "" {
		return d.GlobalName
	}
	if fields := strings.Fields(d.Username); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// AvatarURL builds the CDN avatar URL, falling back to the default embed
// avatar when the user has none.
func (d DiscordIdentity) AvatarURL() string {
	if d.Avatar != "" {
		return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", d.ID, d.Avatar)
	}
	return "https://cdn.discordapp.com/embed/avatars/0.png"
}

// CanonicalUsername is the plain username, or username#discriminator for
// legacy accounts with a non-zero discriminator.
func (d DiscordIdentity) CanonicalUsername() string {
	if d.Discriminator != "" && d.Discriminator != "0" && d.Discriminator != "0000" {
		return d.Username + "#" + d.Discriminator
	}
	return d.Username
}

type AuthState struct {
	IsAuthenticated bool             `json:"isAuthenticated"`
	User            *DiscordIdentity `json:"user"`
	Token           string           `json:"token"`
}

// SessionStore is the single source of truth for the current login. State is
// persisted to one JSON file and subscribers are notified synchronously on
// every change.
type SessionStore struct {
	mu     sync.Mutex
	path   string
	state  AuthState
	nextID int
	subs   map[int]func(AuthState)
}

// OpenSession rehydrates the session from path. A corrupt file is logged and
// treated as logged out; construction never fails.
func OpenSession(path string) *SessionStore {
	s := &SessionStore{path: path, subs: make(map[int]func(AuthState))}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("session: read %s: %v", path, err)
		}
		return s
	}

	var st AuthState
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("session: %s is corrupt, starting logged out: %v", path, err)
		return s
	}
	s.state = st
	return s
}

// SetAuth replaces the session with an authenticated one.
func (s *SessionStore) SetAuth(user DiscordIdentity, token string) {
	s.mu.Lock()
	u := user
	s.state = AuthState{IsAuthenticated: true, User: &u, Token: token}
	s.persistLocked()
	subs, st := s.notifySetLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// ClearAuth resets to unauthenticated and removes the persisted record.
func (s *SessionStore) ClearAuth() {
	s.mu.Lock()
	s.state = AuthState{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("session: remove %s: %v", s.path, err)
	}
	subs, st := s.notifySetLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

// Subscribe registers a callback for every state change and returns its
// unsubscribe function.
func (s *SessionStore) Subscribe(fn func(AuthState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// GetAuthState returns a defensive copy; mutating it does not touch the
// store.
func (s *SessionStore) GetAuthState() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

func (s *SessionStore) persistLocked() {
	data, err := json.Marshal(s.state)
	if err != nil {
		log.Printf("session: marshal: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		log.Printf("session: write %s: %v", s.path, err)
	}
}

// notifySetLocked snapshots subscribers and state so callbacks run outside
// the lock (a callback may call back into the store).
func (s *SessionStore) notifySetLocked() ([]func(AuthState), AuthState) {
	subs := make([]func(AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs, copyState(s.state)
}

func copyState(st AuthState) AuthState {
	cp := st
	if st.User != nil {
		u := *st.User
		cp.User = &u
	}
	return cp
}
