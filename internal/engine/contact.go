package engine

import "time"

// Contact is a single address-book record as stored by the contact store.
// The engine treats it as an immutable value read per query.
type Contact struct {
	// ID is assigned by the store and never reused while the record exists.
	ID int64

	// Name is the display name, used for text search and T9 matching.
	Name string

	// PhoneNumber is matched verbatim as a substring, never normalized.
	PhoneNumber string

	// Group is a free-form label, equality-filtered (see Groups).
	Group string

	IsFavorite bool

	// LastCalledAt is nil until the contact is called for the first time.
	// It orders the "recently contacted" view.
	LastCalledAt *time.Time

	PhotoURI string
}

// Group filter values offered by the presentation layer.
const (
	GroupAll     = "All"
	GroupFamily  = "Family"
	GroupWork    = "Work"
	GroupFriends = "Friends"
	GroupOther   = "Other"
)

// Groups lists the selectable group filters, GroupAll first.
var Groups = []string{GroupAll, GroupFamily, GroupWork, GroupFriends, GroupOther}

// QueryState is the set of user inputs driving the engine views.
type QueryState struct {
	SearchQuery   string
	SelectedGroup string
	DialerInput   string
}
