package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/corpdir/api/internal/domain"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// entity describes how the in-memory store reads and writes one record kind
type entity[T any] struct {
	getID   func(*T) int
	setID   func(*T, int)
	touch   func(*T, time.Time, bool)
	match   func(*T, domain.Criteria) bool
	search  func(*T, domain.Filter) bool
	uniques map[string]func(*T) string
}

// MemoryRepository is a thread-safe in-memory repository honoring unique
// constraints the way the PostgreSQL schema does.
type MemoryRepository[T any] struct {
	mu     sync.Mutex
	rows   map[int]T
	nextID int
	kind   entity[T]

	// Err, when set, is returned by every call
	Err error
}

// NewCompanyStore returns an empty company repository
func NewCompanyStore() *MemoryRepository[domain.Company] {
	return newMemory(entity[domain.Company]{
		getID: func(c *domain.Company) int { return c.ID },
		setID: func(c *domain.Company, id int) { c.ID = id },
		touch: func(c *domain.Company, now time.Time, created bool) {
			if created {
				c.CreatedAt = now
			}
			c.UpdatedAt = now
		},
		match: func(c *domain.Company, cr domain.Criteria) bool {
			return (cr.ID == 0 || c.ID == cr.ID) && (cr.Name == "" || c.Name == cr.Name)
		},
		search: func(c *domain.Company, f domain.Filter) bool {
			return contains(c.Name, f.Query)
		},
		uniques: map[string]func(*domain.Company) string{
			"name": func(c *domain.Company) string { return c.Name },
		},
	})
}

// NewUserStore returns an empty user repository
func NewUserStore() *MemoryRepository[domain.User] {
	return newMemory(entity[domain.User]{
		getID: func(u *domain.User) int { return u.ID },
		setID: func(u *domain.User, id int) { u.ID = id },
		touch: func(u *domain.User, now time.Time, created bool) {
			if created {
				u.CreatedAt = now
			}
			u.UpdatedAt = now
		},
		match: func(u *domain.User, cr domain.Criteria) bool {
			return (cr.ID == 0 || u.ID == cr.ID) &&
				(cr.Name == "" || u.Name == cr.Name) &&
				(cr.Username == "" || u.Username == cr.Username)
		},
		search: func(u *domain.User, f domain.Filter) bool {
			return contains(u.Name, f.Query) || contains(strconv.Itoa(u.ID), f.Query)
		},
		uniques: map[string]func(*domain.User) string{
			"username": func(u *domain.User) string { return u.Username },
		},
	})
}

func newMemory[T any](kind entity[T]) *MemoryRepository[T] {
	return &MemoryRepository[T]{rows: make(map[int]T), nextID: 1, kind: kind}
}

func contains(s, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(s), strings.ToLower(query))
}

// Len returns the number of stored rows
func (m *MemoryRepository[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Seed stores entity as is, assigning an id when it has none
func (m *MemoryRepository[T]) Seed(e *T) *T {
	if err := m.Create(context.Background(), e); err != nil {
		panic(err)
	}
	return e
}

// FindOne returns a copy of the first row matching criteria
func (m *MemoryRepository[T]) FindOne(ctx context.Context, criteria domain.Criteria) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if criteria.IsEmpty() {
		return nil, nil
	}
	for _, id := range m.sortedIDs() {
		row := m.rows[id]
		if m.kind.match(&row, criteria) {
			return &row, nil
		}
	}
	return nil, nil
}

// Create stores a new row
func (m *MemoryRepository[T]) Create(ctx context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := m.checkUnique(e, 0); err != nil {
		return err
	}
	id := m.kind.getID(e)
	if id == 0 {
		id = m.nextID
		m.kind.setID(e, id)
	}
	if id >= m.nextID {
		m.nextID = id + 1
	}
	m.kind.touch(e, time.Now(), true)
	m.rows[id] = *e
	return nil
}

// Update replaces an existing row
func (m *MemoryRepository[T]) Update(ctx context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	id := m.kind.getID(e)
	if _, ok := m.rows[id]; !ok {
		return apperrors.NotFound("row")
	}
	if err := m.checkUnique(e, id); err != nil {
		return err
	}
	m.kind.touch(e, time.Now(), false)
	m.rows[id] = *e
	return nil
}

// Destroy deletes a row
func (m *MemoryRepository[T]) Destroy(ctx context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.rows, m.kind.getID(e))
	return nil
}

// FindAndCountAll returns the matching rows ordered by id
func (m *MemoryRepository[T]) FindAndCountAll(ctx context.Context, filter domain.Filter, limit, offset int) (int, []T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, nil, m.Err
	}

	var matched []T
	for _, id := range m.sortedIDs() {
		row := m.rows[id]
		if m.kind.search(&row, filter) {
			matched = append(matched, row)
		}
	}

	total := len(matched)
	if offset >= total {
		return total, nil, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return total, matched[offset:end], nil
}

func (m *MemoryRepository[T]) sortedIDs() []int {
	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (m *MemoryRepository[T]) checkUnique(e *T, self int) error {
	for field, value := range m.kind.uniques {
		want := value(e)
		for id, row := range m.rows {
			if id != self && value(&row) == want {
				return apperrors.NewUniqueConstraintError(nil, apperrors.ConstraintViolation{
					Field:   field,
					Message: field + " must be unique",
				})
			}
		}
	}
	return nil
}
