package app

import (
	"sync"

	"hotel_booking_web/internal/domain"
)

// MemorySession is the auth context of one caller. Flows receive it
// explicitly; it is safe for concurrent use.
type MemorySession struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
}

func NewSession(token string) *MemorySession { return &MemorySession{token: token} }

func (s *MemorySession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemorySession) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *MemorySession) IsAuthenticated() bool { return s.Token() != "" }

func (s *MemorySession) Set(token string, u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &u
}

func (s *MemorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Redirects records navigation requests so a transport can turn them into
// responses. The last request wins.
type Redirects struct {
	mu   sync.Mutex
	last domain.View
}

func (r *Redirects) Navigate(v domain.View) {
	r.mu.Lock()
	r.last = v
	r.mu.Unlock()
}

func (r *Redirects) Last() (domain.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.last != ""
}
