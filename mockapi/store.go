package mockapi

import (
	"sort"
	"sync"
	"time"

	"github.com/crudcheck/crud-contract-tests/servicedef"
)

// UserStore holds users in memory. It is safe for concurrent use.
type UserStore struct {
	users  map[int]servicedef.UserRecord
	nextID int
	now    func() time.Time
	lock   sync.Mutex
}

// NewUserStore creates a store holding the given users, numbered from 1.
func NewUserStore(seed []servicedef.User) *UserStore {
	s := &UserStore{
		users:  make(map[int]servicedef.UserRecord),
		nextID: 1,
		now:    time.Now,
	}
	for _, u := range seed {
		s.Create(u)
	}
	return s
}

func (s *UserStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *UserStore) Create(u servicedef.User) servicedef.UserRecord {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec := servicedef.UserRecord{
		ID:        s.nextID,
		Name:      u.Name,
		Job:       u.Job,
		Email:     u.Email,
		CreatedAt: s.timestamp(),
	}
	s.users[rec.ID] = rec
	s.nextID++
	return rec
}

func (s *UserStore) Get(id int) (servicedef.UserRecord, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec, ok := s.users[id]
	return rec, ok
}

// Update replaces the fields that are non-empty in u.
func (s *UserStore) Update(id int, u servicedef.User) (servicedef.UserRecord, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return rec, false
	}
	if u.Name != "" {
		rec.Name = u.Name
	}
	if u.Job != "" {
		rec.Job = u.Job
	}
	if u.Email != "" {
		rec.Email = u.Email
	}
	rec.UpdatedAt = s.timestamp()
	s.users[id] = rec
	return rec, true
}

func (s *UserStore) Delete(id int) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}

// List returns all users ordered by ID.
func (s *UserStore) List() []servicedef.UserRecord {
	s.lock.Lock()
	ret := make([]servicedef.UserRecord, 0, len(s.users))
	for _, rec := range s.users {
		ret = append(ret, rec)
	}
	s.lock.Unlock()
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}
