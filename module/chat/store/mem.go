package store

import (
	"context"
	"sort"
	"sync"

	chatmodel "chatapp/module/chat/model"
	usermodel "chatapp/module/user/model"
	"chatapp/tools/errs"
)

// MemStore backs both store interfaces with maps behind one RWMutex.
// Used by tests and the -mem dev mode; semantics mirror mongo.go.
type MemStore struct {
	mu       sync.RWMutex
	users    map[string]*usermodel.User        // id -> user
	byName   map[string]string                 // username -> id
	messages map[string]*chatmodel.Message     // id -> message
	requests map[string]*chatmodel.FriendRequest
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    make(map[string]*usermodel.User),
		byName:   make(map[string]string),
		messages: make(map[string]*chatmodel.Message),
		requests: make(map[string]*chatmodel.FriendRequest),
	}
}

var (
	_ ConversationStore = (*MemStore)(nil)
	_ SocialStore       = (*MemStore)(nil)
)

func samePair(m *chatmodel.Message, a, b string) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

// ===== ConversationStore =====

func (s *MemStore) Insert(ctx context.Context, m *chatmodel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *MemStore) Get(ctx context.Context, id string) (*chatmodel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, errs.ErrNotFound.WithDetail("message " + id)
}

func (s *MemStore) ListByPair(ctx context.Context, a, b string) ([]chatmodel.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chatmodel.Message
	for _, m := range s.messages {
		if samePair(m, a, b) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) UpdateContent(ctx context.Context, id, content string) (*chatmodel.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, errs.ErrNotFound.WithDetail("message " + id)
	}
	m.Content = content
	m.Edited = true
	cp := *m
	return &cp, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return errs.ErrNotFound.WithDetail("message " + id)
	}
	delete(s.messages, id)
	return nil
}

func (s *MemStore) DeleteByPair(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.messages {
		if samePair(m, a, b) {
			delete(s.messages, id)
		}
	}
	return nil
}

// ===== SocialStore =====

func (s *MemStore) CreateUser(ctx context.Context, u *usermodel.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[u.Username]; ok {
		return errs.ErrConflict.WithDetail("username taken")
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byName[u.Username] = u.ID
	return nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		cp.Friends = append([]string(nil), u.Friends...)
		return &cp, nil
	}
	return nil, errs.ErrNotFound.WithDetail("user " + id)
}

func (s *MemStore) GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	s.mu.RLock()
	id, ok := s.byName[username]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound.WithDetail("user " + username)
	}
	return s.GetUser(ctx, id)
}

func (s *MemStore) ListUsers(ctx context.Context, excludeID string) ([]usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []usermodel.User
	for id, u := range s.users {
		if id == excludeID {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemStore) AreFriends(ctx context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[a]
	if !ok {
		return false, nil
	}
	for _, f := range u.Friends {
		if f == b {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) AddFriendship(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFriendLocked(a, b)
	s.addFriendLocked(b, a)
	return nil
}

func (s *MemStore) addFriendLocked(owner, friend string) {
	u, ok := s.users[owner]
	if !ok {
		return
	}
	for _, f := range u.Friends {
		if f == friend {
			return
		}
	}
	u.Friends = append(u.Friends, friend)
}

func (s *MemStore) RemoveFriendship(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFriendLocked(a, b)
	s.removeFriendLocked(b, a)
	return nil
}

func (s *MemStore) removeFriendLocked(owner, friend string) {
	u, ok := s.users[owner]
	if !ok {
		return
	}
	kept := u.Friends[:0]
	for _, f := range u.Friends {
		if f != friend {
			kept = append(kept, f)
		}
	}
	u.Friends = kept
}

func (s *MemStore) CreateFriendRequest(ctx context.Context, r *chatmodel.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.Status == chatmodel.RequestDeclined {
			continue
		}
		if (existing.SenderID == r.SenderID && existing.RecipientID == r.RecipientID) ||
			(existing.SenderID == r.RecipientID && existing.RecipientID == r.SenderID) {
			return errs.ErrConflict.WithDetail("request already exists for pair")
		}
	}
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *MemStore) GetFriendRequest(ctx context.Context, id string) (*chatmodel.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, errs.ErrNotFound.WithDetail("friend request " + id)
}

func (s *MemStore) ListPendingRequests(ctx context.Context, recipientID string) ([]chatmodel.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []chatmodel.FriendRequest
	for _, r := range s.requests {
		if r.RecipientID == recipientID && r.Status == chatmodel.RequestPending {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreateTime.Before(out[j].CreateTime) })
	return out, nil
}

func (s *MemStore) SetRequestStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return errs.ErrNotFound.WithDetail("friend request " + id)
	}
	r.Status = status
	return nil
}

func (s *MemStore) DeleteRequestByPair(ctx context.Context, a, b string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.requests {
		if (r.SenderID == a && r.RecipientID == b) || (r.SenderID == b && r.RecipientID == a) {
			delete(s.requests, id)
		}
	}
	return nil
}
