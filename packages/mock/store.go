package mock

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmailTaken  = errors.New("email already registered")
	ErrEmpIDTaken  = errors.New("employee id already registered")
	ErrUnknownUser = errors.New("unknown email or employee id")
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"userId"`
	FullName     string    `json:"fullName"`
	Department   string    `json:"department"`
	EmpID        string    `json:"empId"`
	MobileNo     string    `json:"mobileNo"`
	CompanyEmail string    `json:"companyEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash []byte    `json:"-"`
}

type store struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*User
	byEmail map[string]*User
	byEmpID map[string]*User
}

func newStore() *store {
	return &store{
		byID:    make(map[int64]*User),
		byEmail: make(map[string]*User),
		byEmpID: make(map[string]*User),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailExists reports whether an account uses email.
func (s *store) emailExists(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[emailKey(email)]
	return ok
}

func (s *store) empIDExists(empID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmpID[empID]
	return ok
}

// insert assigns an id and stores u. Uniqueness is rechecked under the write
// lock.
func (s *store) insert(u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[emailKey(u.CompanyEmail)]; ok {
		return ErrEmailTaken
	}
	if _, ok := s.byEmpID[u.EmpID]; ok {
		return ErrEmpIDTaken
	}

	s.nextID++
	u.ID = s.nextID
	s.byID[u.ID] = u
	s.byEmail[emailKey(u.CompanyEmail)] = u
	s.byEmpID[u.EmpID] = u
	return nil
}

// find resolves identifier as an email first, then as an employee id.
func (s *store) find(identifier string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byEmail[emailKey(identifier)]; ok {
		return u, nil
	}
	if u, ok := s.byEmpID[identifier]; ok {
		return u, nil
	}
	return nil, ErrUnknownUser
}

func (s *store) get(id int64) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	return u, ok
}

func (s *store) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
