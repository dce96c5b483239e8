package engine

import (
	"context"
	"time"
)

// QueryKind selects one of the live queries a Store must support.
type QueryKind int

const (
	// KindAll returns every contact ordered by name.
	KindAll QueryKind = iota
	// KindText returns contacts whose name or phone contains Query.Text.
	KindText
	// KindFavorites returns favorite contacts ordered by name.
	KindFavorites
	// KindRecent returns called contacts, most recent first, capped at Query.Limit.
	KindRecent
)

// Query describes a live query against the contact store.
type Query struct {
	Kind  QueryKind
	Text  string
	Limit int
}

// QueryAll matches every contact.
func QueryAll() Query { return Query{Kind: KindAll} }

// QueryText matches contacts whose name or phone number contains text.
func QueryText(text string) Query { return Query{Kind: KindText, Text: text} }

// QueryFavorites matches contacts flagged as favorite.
func QueryFavorites() Query { return Query{Kind: KindFavorites} }

// QueryRecent matches the limit most recently called contacts.
func QueryRecent(limit int) Query { return Query{Kind: KindRecent, Limit: limit} }

// Snapshot is one emission of a live query: the full ordered result, or the
// error that prevented computing it.
type Snapshot struct {
	Contacts []Contact
	Err      error
}

// Store is the persistence collaborator of the engine.
//
// Watch returns a stream that emits the current result immediately and a new
// full snapshot after every mutation that may affect it. The stream is closed
// once ctx is done. Slow consumers may miss intermediate snapshots but always
// eventually receive the latest one.
type Store interface {
	Watch(ctx context.Context, q Query) <-chan Snapshot
	Get(ctx context.Context, id int64) (Contact, error)
	Insert(ctx context.Context, c Contact) (int64, error)
	InsertAll(ctx context.Context, contacts []Contact) error
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, id int64) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	SetLastCalled(ctx context.Context, id int64, at time.Time) error
}
