package contactmethod

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is a Repository kept in process memory.
type MemoryRepository struct {
	users   map[string]User
	methods map[string]ContactMethod
	rules   map[string]NotificationRule
	codes   map[string]VerificationCode
	mu      sync.RWMutex
}

func NewMemoryRepository(users ...User) *MemoryRepository {
	r := &MemoryRepository{
		users:   make(map[string]User),
		methods: make(map[string]ContactMethod),
		rules:   make(map[string]NotificationRule),
		codes:   make(map[string]VerificationCode),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryRepository) GetUser(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) CreateContactMethod(_ context.Context, cm ContactMethod, rule *NotificationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[cm.UserID]; !ok {
		return ErrUserNotFound
	}
	for _, existing := range r.methods {
		if existing.UserID != cm.UserID {
			continue
		}
		if strings.EqualFold(existing.Name, cm.Name) {
			return ErrDuplicateName
		}
		if existing.Type == cm.Type && existing.Value == cm.Value {
			return ErrDuplicateValue
		}
	}

	r.methods[cm.ID] = cm
	if rule != nil {
		r.rules[rule.ID] = *rule
	}
	return nil
}

func (r *MemoryRepository) GetContactMethod(_ context.Context, id string) (*ContactMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cm, ok := r.methods[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &cm, nil
}

func (r *MemoryRepository) ListContactMethods(_ context.Context, userID string) ([]ContactMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []ContactMethod{}
	for _, cm := range r.methods {
		if cm.UserID == userID {
			out = append(out, cm)
		}
	}
	slices.SortFunc(out, func(a, b ContactMethod) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func (r *MemoryRepository) ListNotificationRules(_ context.Context, userID string) ([]NotificationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []NotificationRule{}
	for _, nr := range r.rules {
		if nr.UserID == userID {
			out = append(out, nr)
		}
	}
	slices.SortFunc(out, func(a, b NotificationRule) int {
		if a.DelayMinutes != b.DelayMinutes {
			return a.DelayMinutes - b.DelayMinutes
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) SaveVerificationCode(_ context.Context, code VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.methods[code.ContactMethodID]; !ok {
		return ErrNotFound
	}
	r.codes[code.ContactMethodID] = code
	return nil
}

func (r *MemoryRepository) ConsumeVerificationCode(_ context.Context, id, code string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	vc, ok := r.codes[id]
	if !ok || vc.Code != code || !now.Before(vc.ExpiresAt) {
		return false, nil
	}
	delete(r.codes, id)

	cm := r.methods[id]
	cm.Pending = false
	r.methods[id] = cm
	return true, nil
}

func (r *MemoryRepository) DeleteExpiredVerificationCodes(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, vc := range r.codes {
		if !now.Before(vc.ExpiresAt) {
			delete(r.codes, id)
			n++
		}
	}
	return n, nil
}

var _ Repository = (*MemoryRepository)(nil)
