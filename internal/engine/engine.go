package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tartampluch/go-dialer/internal/config"
)

// Options tunes the query pipeline. Zero values fall back to config defaults.
type Options struct {
	// Debounce is the quiet period before dialer input triggers a query.
	Debounce time.Duration

	// RecentLimit caps the recently-contacted view.
	RecentLimit int

	// MinDialerDigits is the shortest dialer input producing suggestions.
	MinDialerDigits int

	// Clock stamps LastCalledAt. Defaults to RealClock.
	Clock Clock
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = config.DefaultDialerDebounce
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = config.DefaultRecentLimit
	}
	if o.MinDialerDigits <= 0 {
		o.MinDialerDigits = config.DefaultMinDialerDigits
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	return o
}

// Engine turns the search query, group filter and dialer input into live,
// ordered contact views over a Store.
//
// MainList, Favorites, Recent and Directory follow store changes
// independently. Suggestions is debounced and keyed on the dialer input
// only: a newer input supersedes any pending or running computation.
type Engine struct {
	MainList    *Feed
	Favorites   *Feed
	Recent      *Feed
	Suggestions *Feed
	Directory   *Feed

	store Store
	opts  Options
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   QueryState
	started bool
	closed  bool

	mainGen    uint64
	mainSeq    uint64
	mainCancel context.CancelFunc
	mainBase   []Contact // unfiltered by group
	mainText   string    // search text mainBase was queried with
	mainLoaded bool

	dialGen    uint64
	dialTimer  *time.Timer
	dialCancel context.CancelFunc
}

// New creates an engine bound to ctx. Views stay empty until Start.
func New(ctx context.Context, store Store, opts Options) *Engine {
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		MainList:    newFeed(config.ViewMain),
		Favorites:   newFeed(config.ViewFavorites),
		Recent:      newFeed(config.ViewRecent),
		Suggestions: newFeed(config.ViewSuggestions),
		Directory:   newFeed(config.ViewDirectory),
		store:       store,
		opts:        opts.withDefaults(),
		log:         slog.With(config.LogKeyComponent, config.CompEngine),
		ctx:         ctx,
		cancel:      cancel,
		state:       QueryState{SelectedGroup: GroupAll},
	}
}

// Start subscribes the views to the store. Calling it twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true

	e.follow(e.Favorites, QueryFavorites())
	e.follow(e.Recent, QueryRecent(e.opts.RecentLimit))
	e.follow(e.Directory, QueryAll())
	e.restartMainLocked()

	if e.state.DialerInput != "" {
		e.scheduleSuggestionsLocked()
	}

	e.log.Info(config.MsgEngineStarted, config.LogKeyRecentLimit, e.opts.RecentLimit)
}

// Close cancels every subscription and pending computation, then waits for
// in-flight work, fire-and-forget writes included, to finish.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.dialTimer != nil {
		e.dialTimer.Stop()
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	e.log.Info(config.MsgEngineStopped)
}

// State returns the current inputs.
func (e *Engine) State() QueryState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetSearchQuery replaces the free-text filter of the main list.
// A blank query disables text filtering.
func (e *Engine) SetSearchQuery(q string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.SearchQuery == q {
		return
	}
	e.state.SearchQuery = q
	if e.started && !e.closed {
		e.restartMainLocked()
	}
}

// SetGroupFilter restricts the main list to one group. GroupAll, or an
// empty string, removes the restriction.
func (e *Engine) SetGroupFilter(group string) {
	if group == "" {
		group = GroupAll
	}

	e.mu.Lock()
	if e.state.SelectedGroup == group {
		e.mu.Unlock()
		return
	}
	e.state.SelectedGroup = group
	if !e.started || e.closed || !e.mainLoaded {
		e.mu.Unlock()
		return
	}
	e.mainSeq++
	seq := e.mainSeq
	list := filterGroup(e.mainBase, group)
	text := e.mainText
	e.mu.Unlock()

	e.MainList.publish(seq, text, list)
}

// SetDialerInput replaces the dialer digit buffer. Suggestions are
// recomputed once the input has been quiet for the debounce window.
func (e *Engine) SetDialerInput(digits string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.DialerInput == digits {
		return
	}
	e.state.DialerInput = digits
	if e.started && !e.closed {
		e.scheduleSuggestionsLocked()
	}
}

// restartMainLocked replaces the text subscription backing the main list.
func (e *Engine) restartMainLocked() {
	if e.mainCancel != nil {
		e.mainCancel()
	}
	e.mainGen++
	gen := e.mainGen

	q := QueryAll()
	if text := e.state.SearchQuery; strings.TrimSpace(text) != "" {
		q = QueryText(text)
	}

	ctx, cancel := context.WithCancel(e.ctx)
	e.mainCancel = cancel
	e.wg.Add(1)
	go e.watchMain(ctx, gen, q)
}

func (e *Engine) watchMain(ctx context.Context, gen uint64, q Query) {
	defer e.wg.Done()
	for snap := range e.store.Watch(ctx, q) {
		e.mu.Lock()
		if gen != e.mainGen {
			// Superseded by a newer query; drain until the store closes.
			e.mu.Unlock()
			continue
		}
		e.mainSeq++
		seq := e.mainSeq
		if snap.Err != nil {
			e.mu.Unlock()
			e.MainList.fail(seq, snap.Err)
			e.log.Warn(config.MsgViewFailed, config.LogKeyView, e.MainList.Name(), config.LogKeyError, snap.Err)
			continue
		}
		e.mainBase = snap.Contacts
		e.mainText = q.Text
		e.mainLoaded = true
		group := e.state.SelectedGroup
		e.mu.Unlock()

		list := filterGroup(snap.Contacts, group)
		if e.MainList.publish(seq, q.Text, list) {
			e.log.Debug(config.MsgViewUpdated,
				config.LogKeyView, e.MainList.Name(),
				config.LogKeyQuery, q.Text,
				config.LogKeyGroup, group,
				config.LogKeyCount, len(list))
		}
	}
}

// follow keeps feed in sync with an unparameterized store query.
func (e *Engine) follow(feed *Feed, q Query) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		var seq uint64
		for snap := range e.store.Watch(e.ctx, q) {
			seq++
			if snap.Err != nil {
				feed.fail(seq, snap.Err)
				e.log.Warn(config.MsgViewFailed, config.LogKeyView, feed.Name(), config.LogKeyError, snap.Err)
				continue
			}
			feed.publish(seq, "", snap.Contacts)
			e.log.Debug(config.MsgViewUpdated, config.LogKeyView, feed.Name(), config.LogKeyCount, len(snap.Contacts))
		}
	}()
}

// scheduleSuggestionsLocked cancels the pending timer and any running
// suggestion query, then arms a new timer for the current input.
func (e *Engine) scheduleSuggestionsLocked() {
	e.dialGen++
	gen := e.dialGen
	digits := e.state.DialerInput
	e.Suggestions.advance(gen)

	if e.dialTimer != nil {
		e.dialTimer.Stop()
	}
	if e.dialCancel != nil {
		e.dialCancel()
		e.dialCancel = nil
	}
	e.dialTimer = time.AfterFunc(e.opts.Debounce, func() {
		e.runSuggestions(gen, digits)
	})
}

func (e *Engine) runSuggestions(gen uint64, digits string) {
	e.mu.Lock()
	if e.closed || gen != e.dialGen {
		e.mu.Unlock()
		return
	}
	if utf8.RuneCountInString(digits) < e.opts.MinDialerDigits {
		e.mu.Unlock()
		e.Suggestions.publish(gen, digits, nil)
		return
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.dialCancel = cancel
	e.wg.Add(1)
	e.mu.Unlock()

	defer e.wg.Done()
	start := time.Now()
	for snap := range e.store.Watch(ctx, QueryAll()) {
		if snap.Err != nil {
			e.Suggestions.fail(gen, snap.Err)
			e.log.Warn(config.MsgViewFailed, config.LogKeyView, e.Suggestions.Name(), config.LogKeyError, snap.Err)
			continue
		}
		if !e.currentDial(gen) {
			continue
		}
		list := make([]Contact, 0)
		for _, c := range snap.Contacts {
			if matchesDialer(c, digits) {
				list = append(list, c)
			}
		}
		if e.Suggestions.publish(gen, digits, list) {
			e.log.Debug(config.MsgViewUpdated,
				config.LogKeyView, e.Suggestions.Name(),
				config.LogKeyQuery, digits,
				config.LogKeyCount, len(list),
				config.LogKeyDuration, time.Since(start).Milliseconds())
		}
	}
}

func (e *Engine) currentDial(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.dialGen
}

func filterGroup(contacts []Contact, group string) []Contact {
	if group == GroupAll {
		return contacts
	}
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out
}

func matchesDialer(c Contact, digits string) bool {
	return strings.Contains(c.PhoneNumber, digits) || Matches(c.Name, digits)
}
