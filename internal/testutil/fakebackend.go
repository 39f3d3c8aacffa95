// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/model"
)

// FakeBackend is an in-memory implementation of backend.API.
type FakeBackend struct {
	mu      sync.Mutex
	users   map[string]fakeUser // identity -> user
	tokens  map[string]model.User
	records map[model.Kind][]model.Record
	nextID  int
	calls   []string

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
}

type fakeUser struct {
	password string
	user     model.User
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:   make(map[string]fakeUser),
		tokens:  make(map[string]model.User),
		records: make(map[model.Kind][]model.Record),
	}
}

// AddUser registers credentials that AuthWithPassword will accept.
func (f *FakeBackend) AddUser(id, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{password: password, user: model.User{ID: id, Email: email}}
}

// Seed appends a record as if it had been created earlier.
func (f *FakeBackend) Seed(kind model.Kind, r model.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[kind] = append(f.records[kind], r)
}

// RevokeTokens invalidates every issued token, as if they expired on the backend.
func (f *FakeBackend) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]model.User)
}

// Records returns the stored records of a kind.
func (f *FakeBackend) Records(kind model.Kind) []model.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Record(nil), f.records[kind]...)
}

// Calls returns the operations performed so far, e.g. "list tasks".
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBackend) AuthWithPassword(ctx context.Context, identity, password string) (string, model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "auth "+identity)

	u, ok := f.users[identity]
	if !ok || u.password != password {
		return "", model.User{}, fmt.Errorf("auth: %w", &backend.APIError{Status: 400, Message: "Failed to authenticate."})
	}
	f.nextID++
	token := fmt.Sprintf("token-%d", f.nextID)
	f.tokens[token] = u.user
	return token, u.user, nil
}

func (f *FakeBackend) List(ctx context.Context, token string, kind model.Kind, page, perPage int) (model.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list "+string(kind))

	res := model.ListResult{Page: page, PerPage: perPage, Items: []model.Record{}}
	if err := f.authorize(token); err != nil {
		return res, err
	}
	if f.ListErr != nil {
		return res, f.ListErr
	}

	all := f.records[kind]
	res.TotalItems = len(all)
	res.TotalPages = (len(all) + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start < len(all) {
		end := start + perPage
		if end > len(all) {
			end = len(all)
		}
		res.Items = append(res.Items, all[start:end]...)
	}
	return res, nil
}

func (f *FakeBackend) Create(ctx context.Context, token string, kind model.Kind, fields model.Fields) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create "+string(kind))

	if err := f.authorize(token); err != nil {
		return model.Record{}, err
	}
	if f.CreateErr != nil {
		return model.Record{}, f.CreateErr
	}

	f.nextID++
	now := time.Now().UTC()
	r := model.Record{ID: fmt.Sprintf("rec%d", f.nextID), Created: model.NewDateTime(now), Updated: model.NewDateTime(now)}
	apply(&r, fields)
	f.records[kind] = append(f.records[kind], r)
	return r, nil
}

func (f *FakeBackend) Update(ctx context.Context, token string, kind model.Kind, id string, fields model.Fields) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update "+string(kind))

	if err := f.authorize(token); err != nil {
		return model.Record{}, err
	}
	if f.UpdateErr != nil {
		return model.Record{}, f.UpdateErr
	}

	for i := range f.records[kind] {
		if f.records[kind][i].ID == id {
			apply(&f.records[kind][i], fields)
			f.records[kind][i].Updated = model.NewDateTime(time.Now())
			return f.records[kind][i], nil
		}
	}
	return model.Record{}, fmt.Errorf("update %s: %w", kind, &backend.APIError{Status: 404})
}

func (f *FakeBackend) authorize(token string) error {
	if _, ok := f.tokens[token]; !ok {
		return &backend.APIError{Status: 401, Message: "The request requires valid record authorization token."}
	}
	return nil
}

func apply(r *model.Record, f model.Fields) {
	if f.Title != nil {
		r.Title = *f.Title
	}
	if f.Description != nil {
		r.Description = *f.Description
	}
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.Completed != nil {
		r.Completed = *f.Completed
	}
	if f.Matter != nil {
		r.Matter = *f.Matter
	}
	if f.User != nil {
		r.User = *f.User
	}
}
