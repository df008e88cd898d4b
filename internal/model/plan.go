package model

import (
	"fmt"
	"strings"
	"sync"
)

// Snapshot is an immutable copy of the input model handed to the engine and the workflow.
type Snapshot struct {
	Profile  Profile
	Goals    []Entry
	Expenses []Entry
	Loans    []Entry
}

// Entries returns the collection for kind.
func (s Snapshot) Entries(kind EntryKind) []Entry {
	switch kind {
	case KindGoal:
		return s.Goals
	case KindExpense:
		return s.Expenses
	case KindLoan:
		return s.Loans
	}
	return nil
}

// Plan is the mutable input model for one session: a profile plus three ordered collections.
// It performs no validation beyond recognizing field names.
type Plan struct {
	profile Profile
	entries map[EntryKind][]Entry
	nextRef uint64
	mu      sync.RWMutex
}

// NewPlan returns a plan with a default profile and empty collections.
func NewPlan() *Plan {
	p := &Plan{}
	p.resetLocked()
	return p
}

func (p *Plan) resetLocked() {
	p.profile = NewProfile()
	p.entries = map[EntryKind][]Entry{
		KindGoal:    nil,
		KindExpense: nil,
		KindLoan:    nil,
	}
}

// Reset restores defaults. Used on logout and when a load finds nothing.
func (p *Plan) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

// Replace swaps in a loaded snapshot wholesale.
func (p *Plan) Replace(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.profile = s.Profile.Clone()
	for _, kind := range EntryKinds {
		src := s.Entries(kind)
		dst := make([]Entry, 0, len(src))
		for _, e := range src {
			e = e.Clone()
			e.Kind = kind
			p.nextRef++
			e.ref = p.nextRef
			dst = append(dst, e)
		}
		p.entries[kind] = dst
	}
}

// Profile returns a copy of the profile.
func (p *Plan) Profile() Profile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.profile.Clone()
}

// SetField replaces one profile field from raw text.
func (p *Plan) SetField(name, value string) error {
	field, err := ParseField(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile.Set(field, value)
	return nil
}

// SetProfileID records the remote id returned by a create.
func (p *Plan) SetProfileID(id, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile.ID = id
	if userID != "" {
		p.profile.UserID = userID
	}
}

// Append adds an entry to the end of its collection and returns its key.
func (p *Plan) Append(kind EntryKind, e Entry) (EntryKey, error) {
	if err := checkKind(kind); err != nil {
		return EntryKey{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e = e.Clone()
	e.Kind = kind
	if e.ID == "" {
		e.IsNew = true
	}
	if e.OrderIndex == 0 {
		e.OrderIndex = len(p.entries[kind]) + 1
	}
	p.nextRef++
	e.ref = p.nextRef
	p.entries[kind] = append(p.entries[kind], e)

	if e.ID != "" {
		return PersistedKey(e.ID), nil
	}
	return LocalKey(len(p.entries[kind]) - 1), nil
}

// AddDefault appends a new entry the way the form's "add" button does:
// goals and expenses get a numbered description, loans start empty.
func (p *Plan) AddDefault(kind EntryKind) (EntryKey, error) {
	if err := checkKind(kind); err != nil {
		return EntryKey{}, err
	}

	p.mu.RLock()
	n := len(p.entries[kind])
	p.mu.RUnlock()

	e := Entry{Kind: kind}
	if kind != KindLoan {
		e.Description = fmt.Sprintf("%s %d", kind.Title(), n+1)
	}
	return p.Append(kind, e)
}

// UpdateAt replaces one field of the entry addressed by key.
func (p *Plan) UpdateAt(kind EntryKind, key EntryKey, field, value string) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := p.resolveLocked(kind, key)
	if err != nil {
		return err
	}
	return p.entries[kind][i].set(field, value)
}

// RemoveAt deletes the entry addressed by key and returns it.
func (p *Plan) RemoveAt(kind EntryKind, key EntryKey) (Entry, error) {
	if err := checkKind(kind); err != nil {
		return Entry{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	i, err := p.resolveLocked(kind, key)
	if err != nil {
		return Entry{}, err
	}
	list := p.entries[kind]
	removed := list[i]
	p.entries[kind] = append(list[:i:i], list[i+1:]...)
	return removed, nil
}

// Resolve finds the entry addressed by key.
func (p *Plan) Resolve(kind EntryKind, key EntryKey) (Entry, error) {
	if err := checkKind(kind); err != nil {
		return Entry{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	i, err := p.resolveLocked(kind, key)
	if err != nil {
		return Entry{}, err
	}
	return p.entries[kind][i].Clone(), nil
}

// KeyAt returns the canonical key for the entry at a zero-based position:
// its id when it has one, otherwise its position.
func (p *Plan) KeyAt(kind EntryKind, pos int) (EntryKey, error) {
	if err := checkKind(kind); err != nil {
		return EntryKey{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	list := p.entries[kind]
	if pos < 0 || pos >= len(list) {
		return EntryKey{}, fmt.Errorf("%w: %s #%d", ErrEntryNotFound, kind, pos+1)
	}
	if list[pos].ID != "" {
		return PersistedKey(list[pos].ID), nil
	}
	return LocalKey(pos), nil
}

// HandleAt returns a handle key for the entry at a zero-based position. Unlike
// KeyAt's positional keys it stays valid when earlier rows are removed.
func (p *Plan) HandleAt(kind EntryKind, pos int) (EntryKey, error) {
	if err := checkKind(kind); err != nil {
		return EntryKey{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	list := p.entries[kind]
	if pos < 0 || pos >= len(list) {
		return EntryKey{}, fmt.Errorf("%w: %s #%d", ErrEntryNotFound, kind, pos+1)
	}
	return HandleKey(list[pos].ref), nil
}

// Canonical turns a positional key into an id key when the entry at that position is persisted.
func (p *Plan) Canonical(kind EntryKind, key EntryKey) (EntryKey, error) {
	if pos, ok := key.Index(); ok {
		return p.KeyAt(kind, pos)
	}
	return key, nil
}

// resolveLocked uses the handle or id when the key has one, and the position only for entries without an id.
func (p *Plan) resolveLocked(kind EntryKind, key EntryKey) (int, error) {
	list := p.entries[kind]
	if ref, ok := key.Handle(); ok {
		for i := range list {
			if list[i].ref == ref {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s %s", ErrEntryNotFound, kind, key)
	}
	if id, ok := key.ID(); ok {
		for i := range list {
			if list[i].ID == id {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s %s", ErrEntryNotFound, kind, id)
	}

	i, _ := key.Index()
	if i < 0 || i >= len(list) {
		return 0, fmt.Errorf("%w: %s %s", ErrEntryNotFound, kind, key)
	}
	if list[i].ID != "" {
		return 0, fmt.Errorf("%w: %s %s has id %s", ErrEntryNotFound, kind, key, list[i].ID)
	}
	return i, nil
}

// MarkSaved stamps a remote id onto the entry with the given ref and clears IsNew.
// It returns false when the entry was removed while the save was in flight.
func (p *Plan) MarkSaved(kind EntryKind, ref uint64, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries[kind] {
		if p.entries[kind][i].ref == ref {
			p.entries[kind][i].ID = id
			p.entries[kind][i].IsNew = false
			return true
		}
	}
	return false
}

// Entries returns a copy of one collection.
func (p *Plan) Entries(kind EntryKind) []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneEntries(p.entries[kind])
}

// Snapshot returns a deep copy of the whole model.
func (p *Plan) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Profile:  p.profile.Clone(),
		Goals:    cloneEntries(p.entries[KindGoal]),
		Expenses: cloneEntries(p.entries[KindExpense]),
		Loans:    cloneEntries(p.entries[KindLoan]),
	}
}

// ApplyHoldings folds imported balances into the plan: asset balances replace the
// asset total, liabilities update the loan with the same description or append one.
// It returns the number of loans added.
func (p *Plan) ApplyHoldings(h Holdings) int {
	total := h.TotalAssets()
	p.mu.Lock()
	p.profile.TotalAssetGrossMarketValue = &total
	p.mu.Unlock()

	added := 0
	for _, loan := range h.Loans() {
		if p.updateLoanByDescription(loan) {
			continue
		}
		if _, err := p.Append(KindLoan, loan); err == nil {
			added++
		}
	}
	return added
}

func (p *Plan) updateLoanByDescription(loan Entry) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries[KindLoan] {
		if strings.EqualFold(p.entries[KindLoan][i].Description, loan.Description) {
			p.entries[KindLoan][i].Amount = loan.Amount
			return true
		}
	}
	return false
}

func checkKind(kind EntryKind) error {
	switch kind {
	case KindGoal, KindExpense, KindLoan:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
