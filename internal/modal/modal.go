// Package modal implements the create/edit overlay state machine.
//
//	Closed -> Open(empty|prefilled) -> Submitting -> Closed
//	                                              -> ErrorVisible -> Submitting | Closed
package modal

import (
	"errors"
	"fmt"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

type State int

const (
	Closed State = iota
	Open
	Submitting
	ErrorVisible
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	case ErrorVisible:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrAlreadyOpen = errors.New("modal already open")
	ErrNotOpen     = errors.New("modal not open")
	ErrNotPending  = errors.New("no submit in progress")
	ErrSubmitting  = errors.New("submit in progress")
)

// Values are the raw form fields, kept as typed so a failed submit can re-render them.
type Values map[string]string

func (v Values) Get(key string) string {
	return v[key]
}

// ValuesFromRecord prefills an edit form.
func ValuesFromRecord(r model.Record) Values {
	v := Values{
		"title":       r.Title,
		"description": r.Description,
		"status":      r.Status,
		"matter":      r.Matter,
	}
	if r.Completed {
		v["completed"] = "on"
	}
	return v
}

// Controller is one page's modal. There is never more than one open at a time.
type Controller struct {
	state   State
	editing string // record id, empty for create
	values  Values
	err     error
}

func New() *Controller {
	return &Controller{state: Closed}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Values() Values {
	return c.values
}

func (c *Controller) Err() error {
	return c.err
}

// EditingID is the id of the record being edited, empty when creating.
func (c *Controller) EditingID() string {
	return c.editing
}

// IsOpen reports whether the overlay is shown (including while submitting or showing an error).
func (c *Controller) IsOpen() bool {
	return c.state != Closed
}

// Open shows an empty form, or a form prefilled from existing.
func (c *Controller) Open(existing *model.Record) error {
	if c.state != Closed {
		return ErrAlreadyOpen
	}
	c.state = Open
	c.err = nil
	if existing != nil {
		c.editing = existing.ID
		c.values = ValuesFromRecord(*existing)
	} else {
		c.editing = ""
		c.values = Values{}
	}
	return nil
}

// Submit records the entered values and moves to Submitting.
func (c *Controller) Submit(values Values) error {
	if c.state != Open && c.state != ErrorVisible {
		return ErrNotOpen
	}
	c.values = values
	c.state = Submitting
	return nil
}

// Succeed closes the modal after the backend accepted the submit.
func (c *Controller) Succeed() error {
	if c.state != Submitting {
		return ErrNotPending
	}
	c.reset()
	return nil
}

// Fail returns to the open form with err shown. Entered values are kept.
func (c *Controller) Fail(err error) error {
	if c.state != Submitting {
		return ErrNotPending
	}
	c.state = ErrorVisible
	c.err = err
	return nil
}

// Close discards unsaved input from Open or ErrorVisible. Closing a closed modal is
// a no-op; a pending submit must end with Succeed or Fail first.
func (c *Controller) Close() error {
	if c.state == Submitting {
		return ErrSubmitting
	}
	c.reset()
	return nil
}

func (c *Controller) reset() {
	c.state = Closed
	c.editing = ""
	c.values = nil
	c.err = nil
}
