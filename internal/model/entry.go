package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/life-sheet/internal/common"
)

// Input model errors.
var (
	ErrUnknownField  = fmt.Errorf("%w: unknown field", common.ErrInvalidInput)
	ErrUnknownKind   = fmt.Errorf("%w: unknown entry kind", common.ErrInvalidInput)
	ErrInvalidKey    = fmt.Errorf("%w: invalid entry key", common.ErrInvalidInput)
	ErrEntryNotFound = errors.New("entry not found")
)

// EntryKind names one of the three collections.
type EntryKind string

const (
	// KindGoal is a one-time financial target.
	KindGoal EntryKind = "goal"
	// KindExpense is an annual recurring cost.
	KindExpense EntryKind = "expense"
	// KindLoan is an outstanding liability with an optional EMI.
	KindLoan EntryKind = "loan"
)

// EntryKinds lists the collections in save order.
var EntryKinds = []EntryKind{KindGoal, KindExpense, KindLoan}

// ParseEntryKind accepts singular or plural collection names.
func ParseEntryKind(s string) (EntryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "goal", "goals":
		return KindGoal, nil
	case "expense", "expenses":
		return KindExpense, nil
	case "loan", "loans":
		return KindLoan, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Plural returns the collection name, e.g. "goals".
func (k EntryKind) Plural() string {
	return string(k) + "s"
}

// Title is the display label used for default descriptions.
func (k EntryKind) Title() string {
	switch k {
	case KindGoal:
		return "Goal"
	case KindExpense:
		return "Expense"
	case KindLoan:
		return "Loan"
	}
	return string(k)
}

// Entry is one goal, expense or loan. EMI is only meaningful for loans.
type Entry struct {
	EMI         *float64
	Kind        EntryKind
	ID          string
	Description string
	Amount      float64
	OrderIndex  int
	IsNew       bool
	ref         uint64
}

// Entry fields accepted by UpdateAt.
const (
	EntryFieldDescription = "description"
	EntryFieldAmount      = "amount"
	EntryFieldEMI         = "emi"
)

// NewGoal creates an unsaved goal.
func NewGoal(description string, amount float64) Entry {
	return Entry{Kind: KindGoal, Description: description, Amount: amount, IsNew: true}
}

// NewExpense creates an unsaved annual expense.
func NewExpense(description string, amount float64) Entry {
	return Entry{Kind: KindExpense, Description: description, Amount: amount, IsNew: true}
}

// NewLoan creates an unsaved loan. emi may be nil.
func NewLoan(description string, amount float64, emi *float64) Entry {
	return Entry{Kind: KindLoan, Description: description, Amount: amount, EMI: emi, IsNew: true}
}

// Persisted reports whether the entry has been created remotely. Changes to a
// persisted entry must go through an update, never a create.
func (e Entry) Persisted() bool {
	return e.ID != "" && !e.IsNew
}

// Blank reports whether the entry carries no data at all.
func (e Entry) Blank() bool {
	return strings.TrimSpace(e.Description) == "" && e.Amount == 0 && FloatValue(e.EMI) == 0
}

// EMIValue returns the installment or 0.
func (e Entry) EMIValue() float64 {
	return FloatValue(e.EMI)
}

// Ref is a process-local handle that survives reordering. Zero means unassigned.
func (e Entry) Ref() uint64 {
	return e.ref
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	out := e
	out.EMI = clonePtr(e.EMI)
	return out
}

func (e *Entry) set(field, value string) error {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case EntryFieldDescription, "name":
		e.Description = value
	case EntryFieldAmount:
		e.Amount, _ = ParseNumber(value)
	case EntryFieldEMI:
		if e.Kind != KindLoan {
			return fmt.Errorf("%w: emi on %s", ErrUnknownField, e.Kind)
		}
		e.EMI = parseFloatPtr(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// EntryKey addresses an entry by position (entries without a remote id), by
// remote id (persisted entries), or by handle. Handle keys come from
// Plan.HandleAt and keep pointing at the same entry while rows are removed
// or the entry gains an id.
type EntryKey struct {
	id        string
	index     int
	ref       uint64
	persisted bool
}

// LocalKey addresses an unsaved entry by zero-based position.
func LocalKey(index int) EntryKey {
	return EntryKey{index: index}
}

// PersistedKey addresses an entry by remote id.
func PersistedKey(id string) EntryKey {
	return EntryKey{id: id, persisted: true}
}

// HandleKey addresses the entry with the given Ref.
func HandleKey(ref uint64) EntryKey {
	return EntryKey{ref: ref}
}

// Handle returns the entry ref for handle keys.
func (k EntryKey) Handle() (uint64, bool) {
	return k.ref, k.ref != 0
}

// IsPersisted reports whether the key is an id.
func (k EntryKey) IsPersisted() bool {
	return k.persisted
}

// Index returns the position for local keys.
func (k EntryKey) Index() (int, bool) {
	return k.index, !k.persisted && k.ref == 0
}

// ID returns the remote id for persisted keys.
func (k EntryKey) ID() (string, bool) {
	return k.id, k.persisted
}

// String renders local keys as "#N" (1-based) and persisted keys as the id.
func (k EntryKey) String() string {
	if k.persisted {
		return k.id
	}
	if k.ref != 0 {
		return "@" + strconv.FormatUint(k.ref, 10)
	}
	return "#" + strconv.Itoa(k.index+1)
}

// ParseEntryKey reads "#N" as a 1-based position and anything else as a remote id.
func ParseEntryKey(s string) (EntryKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EntryKey{}, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return EntryKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
		}
		return LocalKey(n - 1), nil
	}
	return PersistedKey(s), nil
}
