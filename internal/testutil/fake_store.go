package testutil

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
)

// FakeStore is an in-memory service.ProfileStore. Each method can be
// overridden with its ...Fn hook; otherwise it behaves like a real store.
// Every call is recorded in Calls.
type FakeStore struct {
	GetProfileFn    func(ctx context.Context, sess service.Session) (*model.Profile, error)
	CreateProfileFn func(ctx context.Context, sess service.Session, p model.Profile) (*model.Profile, error)
	UpdateProfileFn func(ctx context.Context, sess service.Session, id string, p model.Profile) (*model.Profile, error)
	ListEntriesFn   func(ctx context.Context, sess service.Session, kind model.EntryKind) ([]model.Entry, error)
	CreateEntryFn   func(ctx context.Context, sess service.Session, e model.Entry) (*model.Entry, error)
	UpdateEntryFn   func(ctx context.Context, sess service.Session, id string, e model.Entry) (*model.Entry, error)
	DeleteEntryFn   func(ctx context.Context, sess service.Session, kind model.EntryKind, id string) error

	profile *model.Profile
	entries map[model.EntryKind][]model.Entry
	calls   []Call
	nextID  int
	mu      sync.Mutex
}

// Call records one store invocation.
type Call struct {
	Method string
	Kind   model.EntryKind
	ID     string
	Entry  model.Entry
}

// NewFakeStore returns an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{entries: make(map[model.EntryKind][]model.Entry)}
}

// Seed replaces the stored data. Entries without ids get one.
func (f *FakeStore) Seed(p *model.Profile, entries ...model.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p != nil {
		clone := p.Clone()
		if clone.ID == "" {
			clone.ID = f.newIDLocked()
		}
		f.profile = &clone
	} else {
		f.profile = nil
	}
	f.entries = make(map[model.EntryKind][]model.Entry)
	for _, e := range entries {
		e = e.Clone()
		if e.ID == "" {
			e.ID = f.newIDLocked()
		}
		e.IsNew = false
		f.entries[e.Kind] = append(f.entries[e.Kind], e)
	}
}

// Calls returns a copy of the recorded calls.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount counts calls to one method.
func (f *FakeStore) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// StoredProfile returns the stored profile, if any.
func (f *FakeStore) StoredProfile() *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil
	}
	p := f.profile.Clone()
	return &p
}

// StoredEntries returns the stored entries of one kind.
func (f *FakeStore) StoredEntries(kind model.EntryKind) []model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.entries[kind])
}

// Reset clears call tracking.
func (f *FakeStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeStore) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *FakeStore) newIDLocked() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func checkSession(sess service.Session) error {
	if sess.UserID == "" {
		return common.ErrUnauthenticated
	}
	return nil
}

// GetProfile implements service.ProfileStore.
func (f *FakeStore) GetProfile(ctx context.Context, sess service.Session) (*model.Profile, error) {
	f.record(Call{Method: "GetProfile"})
	if f.GetProfileFn != nil {
		return f.GetProfileFn(ctx, sess)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	p := f.StoredProfile()
	if p == nil {
		return nil, fmt.Errorf("%w: profile", common.ErrNotFound)
	}
	return p, nil
}

// CreateProfile implements service.ProfileStore.
func (f *FakeStore) CreateProfile(ctx context.Context, sess service.Session, p model.Profile) (*model.Profile, error) {
	f.record(Call{Method: "CreateProfile"})
	if f.CreateProfileFn != nil {
		return f.CreateProfileFn(ctx, sess, p)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile != nil {
		return nil, fmt.Errorf("%w: profile already exists", common.ErrDuplicateEntry)
	}
	stored := p.Clone()
	stored.ID = f.newIDLocked()
	stored.UserID = sess.UserID
	f.profile = &stored
	out := stored.Clone()
	return &out, nil
}

// UpdateProfile implements service.ProfileStore.
func (f *FakeStore) UpdateProfile(ctx context.Context, sess service.Session, id string, p model.Profile) (*model.Profile, error) {
	f.record(Call{Method: "UpdateProfile", ID: id})
	if f.UpdateProfileFn != nil {
		return f.UpdateProfileFn(ctx, sess, id, p)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil || f.profile.ID != id {
		return nil, fmt.Errorf("%w: profile %s", common.ErrNotFound, id)
	}
	stored := p.Clone()
	stored.ID = id
	stored.UserID = sess.UserID
	f.profile = &stored
	out := stored.Clone()
	return &out, nil
}

// ListEntries implements service.ProfileStore.
func (f *FakeStore) ListEntries(ctx context.Context, sess service.Session, kind model.EntryKind) ([]model.Entry, error) {
	f.record(Call{Method: "ListEntries", Kind: kind})
	if f.ListEntriesFn != nil {
		return f.ListEntriesFn(ctx, sess, kind)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	return f.StoredEntries(kind), nil
}

// CreateEntry implements service.ProfileStore.
func (f *FakeStore) CreateEntry(ctx context.Context, sess service.Session, e model.Entry) (*model.Entry, error) {
	f.record(Call{Method: "CreateEntry", Kind: e.Kind, Entry: e.Clone()})
	if f.CreateEntryFn != nil {
		return f.CreateEntryFn(ctx, sess, e)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := e.Clone()
	stored.ID = f.newIDLocked()
	stored.IsNew = false
	f.entries[e.Kind] = append(f.entries[e.Kind], stored)
	out := stored.Clone()
	return &out, nil
}

// UpdateEntry implements service.ProfileStore.
func (f *FakeStore) UpdateEntry(ctx context.Context, sess service.Session, id string, e model.Entry) (*model.Entry, error) {
	f.record(Call{Method: "UpdateEntry", Kind: e.Kind, ID: id, Entry: e.Clone()})
	if f.UpdateEntryFn != nil {
		return f.UpdateEntryFn(ctx, sess, id, e)
	}
	if err := checkSession(sess); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.entries[e.Kind]
	i := slices.IndexFunc(list, func(x model.Entry) bool { return x.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s %s", common.ErrNotFound, e.Kind, id)
	}
	stored := e.Clone()
	stored.ID = id
	stored.IsNew = false
	list[i] = stored
	out := stored.Clone()
	return &out, nil
}

// DeleteEntry implements service.ProfileStore.
func (f *FakeStore) DeleteEntry(ctx context.Context, sess service.Session, kind model.EntryKind, id string) error {
	f.record(Call{Method: "DeleteEntry", Kind: kind, ID: id})
	if f.DeleteEntryFn != nil {
		return f.DeleteEntryFn(ctx, sess, kind, id)
	}
	if err := checkSession(sess); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.entries[kind]
	i := slices.IndexFunc(list, func(x model.Entry) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	f.entries[kind] = slices.Delete(list, i, i+1)
	return nil
}

var _ service.ProfileStore = (*FakeStore)(nil)
