package fakestripe

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is one stored API object as it is rendered on the wire.
type Record = map[string]interface{}

type collection struct {
	prefix string
	items  map[string]Record
	order  []string
}

// Store is an in-memory object store keyed by collection name.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	clock       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
		clock:       time.Now,
	}
}

// NewID returns a fresh identifier with the given prefix.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")

	return prefix + "_" + raw[:14]
}

func (s *Store) collection(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{items: make(map[string]Record)}
		s.collections[name] = c
	}

	return c
}

// Insert stores rec under name. A missing id is generated from prefix and a
// missing created timestamp is filled in.
func (s *Store) Insert(name, prefix string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	c.prefix = prefix

	id, _ := rec["id"].(string)
	if id == "" {
		id = NewID(prefix)
		rec["id"] = id
	}

	if _, ok := rec["created"]; !ok {
		rec["created"] = s.clock().Unix()
	}

	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}

	c.items[id] = rec

	return deepCopy(rec).(Record)
}

// Get returns a copy of the record.
func (s *Store) Get(name, id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collection(name).items[id]
	if !ok {
		return nil, false
	}

	return deepCopy(rec).(Record), true
}

// Update applies fn to the stored record and returns a copy of the result.
func (s *Store) Update(name, id string, fn func(Record)) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.collection(name).items[id]
	if !ok {
		return nil, false
	}

	fn(rec)

	return deepCopy(rec).(Record), true
}

// Delete removes the record and reports whether it existed.
func (s *Store) Delete(name, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	if _, ok := c.items[id]; !ok {
		return false
	}

	delete(c.items, id)

	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)

			break
		}
	}

	return true
}

// List returns copies of the records accepted by match, newest first.
func (s *Store) List(name string, match func(Record) bool) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	out := make([]Record, 0, len(c.order))

	for i := len(c.order) - 1; i >= 0; i-- {
		rec := c.items[c.order[i]]
		if match == nil || match(rec) {
			out = append(out, deepCopy(rec).(Record))
		}
	}

	return out
}

// Collections returns the names of every collection holding records.
func (s *Store) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.collections))
	for name, c := range s.collections {
		if len(c.items) > 0 {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

// Reset drops every record.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections = make(map[string]*collection)
}

func deepCopy(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for k, inner := range typed {
			out[k] = deepCopy(inner)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, inner := range typed {
			out[i] = deepCopy(inner)
		}

		return out
	default:
		return v
	}
}
