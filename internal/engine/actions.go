package engine

import (
	"context"

	"github.com/tartampluch/go-dialer/internal/config"
)

// Contact loads a single record, e.g. for the edit screen.
func (e *Engine) Contact(ctx context.Context, id int64) (Contact, error) {
	return e.store.Get(ctx, id)
}

// AddContact inserts c in the background. c.ID is ignored.
func (e *Engine) AddContact(c Contact) {
	c.ID = 0
	e.async(config.OpInsert, func(ctx context.Context) error {
		_, err := e.store.Insert(ctx, c)
		return err
	})
}

// UpdateContact replaces the stored record with the same ID.
func (e *Engine) UpdateContact(c Contact) {
	e.async(config.OpUpdate, func(ctx context.Context) error {
		return e.store.Update(ctx, c)
	})
}

// DeleteContact removes c from the store.
func (e *Engine) DeleteContact(c Contact) {
	e.async(config.OpDelete, func(ctx context.Context) error {
		return e.store.Delete(ctx, c.ID)
	})
}

// ToggleFavorite flips the favorite flag of c.
func (e *Engine) ToggleFavorite(c Contact) {
	e.async(config.OpFavorite, func(ctx context.Context) error {
		return e.store.SetFavorite(ctx, c.ID, !c.IsFavorite)
	})
}

// MarkCalled stamps c as called now. Only LastCalledAt changes.
func (e *Engine) MarkCalled(c Contact) {
	at := e.opts.Clock.Now()
	e.async(config.OpMarkCalled, func(ctx context.Context) error {
		return e.store.SetLastCalled(ctx, c.ID, at)
	})
}

// MarkNumberCalled marks the first directory contact whose phone number is
// exactly number. Numbers not in the directory are ignored.
func (e *Engine) MarkNumberCalled(number string) bool {
	if number == "" {
		return false
	}
	for _, c := range e.Directory.Snapshot() {
		if c.PhoneNumber == number {
			e.MarkCalled(c)
			return true
		}
	}
	return false
}

// ImportContacts inserts contacts in one batch, e.g. from a CSV or vCard file.
func (e *Engine) ImportContacts(contacts []Contact) {
	batch := make([]Contact, len(contacts))
	for i, c := range contacts {
		c.ID = 0
		batch[i] = c
	}
	e.async(config.OpImport, func(ctx context.Context) error {
		return e.store.InsertAll(ctx, batch)
	})
}

// async runs a store write without blocking the caller. Failures are logged
// and dropped: writes are best effort and never retried.
func (e *Engine) async(op string, fn func(ctx context.Context) error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Warn(config.MsgWriteDropped, config.LogKeyOp, op)
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	// Writes already issued complete even if the engine closes meanwhile.
	ctx := context.WithoutCancel(e.ctx)
	go func() {
		defer e.wg.Done()
		if err := fn(ctx); err != nil {
			e.log.Warn(config.MsgWriteFailed,
				config.LogKeyOp, op,
				config.LogKeyError, err)
			return
		}
		e.log.Debug(config.MsgWriteDone, config.LogKeyOp, op)
	}()
}
