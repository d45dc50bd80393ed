package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Preparer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type entry struct {
	query   string
	stmt    *sql.Stmt
	refs    int
	evicted bool
}

// StatementCache keeps the most recently used prepared statements. A
// statement is handed out as a Lease; evicting it closes it once every
// lease is released.
type StatementCache struct {
	cache     *lru.Cache[uint64, *entry]
	mu        sync.Mutex
	closeStmt func(*sql.Stmt) error
}

func NewStatementCache(size int) (*StatementCache, error) {
	s := &StatementCache{closeStmt: (*sql.Stmt).Close}
	// The callback runs synchronously inside cache calls made under s.mu.
	cache, err := lru.NewWithEvict(size, func(_ uint64, e *entry) {
		e.evicted = true
		if e.refs == 0 {
			_ = s.closeStmt(e.stmt)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cache: statement cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Lease is a borrowed prepared statement. Release it when the statement
// call has returned.
type Lease struct {
	c     *StatementCache
	e     *entry
	fresh bool
	once  sync.Once
}

func (l *Lease) Stmt() *sql.Stmt {
	return l.e.stmt
}

// Fresh reports whether the statement was prepared for this lease.
func (l *Lease) Fresh() bool {
	return l.fresh
}

// Release returns the statement to the cache.
func (l *Lease) Release() error {
	var err error
	l.once.Do(func() { err = l.c.release(l.e, false) })
	return err
}

// Discard releases the statement and drops it from the cache, e.g. after
// its first execution failed.
func (l *Lease) Discard() error {
	var err error
	l.once.Do(func() { err = l.c.release(l.e, true) })
	return err
}

// Acquire leases the cached statement for query, preparing it on p first if
// needed. A query whose key collides with another cached query gets a
// private statement that is closed on release.
func (s *StatementCache) Acquire(ctx context.Context, p Preparer, query string) (*Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(query)
	cur, ok := s.cache.Get(key)
	if ok && cur.query == query {
		cur.refs++
		return &Lease{c: s, e: cur}, nil
	}

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	e := &entry{query: query, stmt: stmt, refs: 1}
	if ok {
		e.evicted = true
	} else {
		s.cache.Add(key, e)
	}
	return &Lease{c: s, e: e, fresh: true}, nil
}

func (s *StatementCache) release(e *entry, drop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if drop && !e.evicted {
		key := Key(e.query)
		if cur, ok := s.cache.Peek(key); ok && cur == e {
			s.cache.Remove(key) // marks e evicted
		}
	}
	e.refs--
	if e.evicted && e.refs == 0 {
		return s.closeStmt(e.stmt)
	}
	return nil
}

// Contains reports whether query has a cached statement.
func (s *StatementCache) Contains(query string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Peek(Key(query))
	return ok && e.query == query
}

func (s *StatementCache) Len() int {
	return s.cache.Len()
}

// Close evicts every cached statement. Leased statements close on release.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	return nil
}
