// Package listing holds the list view state for one record kind.
package listing

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

// FetchFunc loads the full collection for the controller's kind.
type FetchFunc func(ctx context.Context) ([]model.Record, error)

// Controller mirrors the last applied fetch of one collection.
//
// Refreshes are not coalesced. Each one takes a sequence number when it starts and
// only the newest started refresh may apply its result; older responses that arrive
// late are dropped.
type Controller struct {
	kind model.Kind

	mu       sync.RWMutex
	records  []model.Record
	loading  bool
	err      error
	loaded   bool
	issued   uint64
	inFlight int
}

func NewController(kind model.Kind) *Controller {
	return &Controller{kind: kind, records: []model.Record{}}
}

func (c *Controller) Kind() model.Kind {
	return c.kind
}

// Records returns a copy of the current list.
func (c *Controller) Records() []model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Record(nil), c.records...)
}

func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err is the error of the last applied refresh, nil after a successful one.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Loaded reports whether a successful fetch has been applied. A controller created
// after a restart for a surviving session starts unloaded.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Refresh runs fetch and applies its result unless a newer refresh started meanwhile.
// It reports whether the result was applied. On failure the list becomes empty and
// Err is set; there is no retry.
func (c *Controller) Refresh(ctx context.Context, fetch FetchFunc) bool {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inFlight++
	c.loading = true
	c.mu.Unlock()

	records, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	c.loading = c.inFlight > 0
	if seq != c.issued {
		return false
	}

	if err != nil {
		c.records = []model.Record{}
		c.err = err
		c.loaded = false
		return true
	}
	if records == nil {
		records = []model.Record{}
	}
	c.records = records
	c.err = nil
	c.loaded = true
	return true
}

// Upsert merges a record returned by a create or update: replace by id, else append.
func (c *Controller) Upsert(r model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = Upsert(c.records, r)
}

// Find returns the record with the given id from the current list.
func (c *Controller) Find(id string) (model.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Record{}, false
}

// Upsert returns records with r replacing the entry of the same id, or appended.
// The input slice is not modified.
func Upsert(records []model.Record, r model.Record) []model.Record {
	out := make([]model.Record, len(records), len(records)+1)
	copy(out, records)
	for i := range out {
		if out[i].ID == r.ID {
			out[i] = r
			return out
		}
	}
	return append(out, r)
}
