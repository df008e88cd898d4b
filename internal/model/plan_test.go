package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryKey(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantID    string
		wantIndex int
		persisted bool
		wantErr   bool
	}{
		{name: "position", input: "#2", wantIndex: 1},
		{name: "numeric id", input: "17", wantID: "17", persisted: true},
		{name: "uuid id", input: "4f9c", wantID: "4f9c", persisted: true},
		{name: "zero position", input: "#0", wantErr: true},
		{name: "bad position", input: "#x", wantErr: true},
		{name: "empty", input: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseEntryKey(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.persisted, key.IsPersisted())
			if tt.persisted {
				id, ok := key.ID()
				assert.True(t, ok)
				assert.Equal(t, tt.wantID, id)
			} else {
				idx, ok := key.Index()
				assert.True(t, ok)
				assert.Equal(t, tt.wantIndex, idx)
			}
			assert.Equal(t, tt.input, key.String())
		})
	}
}

func TestPlan_AppendAndResolve(t *testing.T) {
	plan := NewPlan()

	localKey, err := plan.Append(KindGoal, NewGoal("House", 5_000_000))
	require.NoError(t, err)
	assert.False(t, localKey.IsPersisted())

	saved := NewGoal("Car", 800_000)
	saved.ID = "g-1"
	saved.IsNew = false
	idKey, err := plan.Append(KindGoal, saved)
	require.NoError(t, err)
	assert.True(t, idKey.IsPersisted())

	goals := plan.Entries(KindGoal)
	require.Len(t, goals, 2)
	assert.True(t, goals[0].IsNew)
	assert.Equal(t, 1, goals[0].OrderIndex)
	assert.Equal(t, 2, goals[1].OrderIndex)
	assert.True(t, goals[1].Persisted())

	got, err := plan.Resolve(KindGoal, PersistedKey("g-1"))
	require.NoError(t, err)
	assert.Equal(t, "Car", got.Description)

	// A position never reaches an entry that has an id.
	_, err = plan.Resolve(KindGoal, LocalKey(1))
	require.ErrorIs(t, err, ErrEntryNotFound)

	canonical, err := plan.Canonical(KindGoal, LocalKey(1))
	require.NoError(t, err)
	assert.Equal(t, PersistedKey("g-1"), canonical)
}

func TestPlan_UpdateAt(t *testing.T) {
	plan := NewPlan()
	key, err := plan.Append(KindLoan, NewLoan("Home loan", 0, nil))
	require.NoError(t, err)

	require.NoError(t, plan.UpdateAt(KindLoan, key, "amount", "2,00,000"))
	require.NoError(t, plan.UpdateAt(KindLoan, key, "emi", "5000"))
	require.NoError(t, plan.UpdateAt(KindLoan, key, "name", "Mortgage"))

	loan, err := plan.Resolve(KindLoan, key)
	require.NoError(t, err)
	assert.Equal(t, "Mortgage", loan.Description)
	assert.InDelta(t, 200_000, loan.Amount, 0)
	require.NotNil(t, loan.EMI)
	assert.InDelta(t, 5000, *loan.EMI, 0)

	require.NoError(t, plan.UpdateAt(KindLoan, key, "emi", ""))
	loan, err = plan.Resolve(KindLoan, key)
	require.NoError(t, err)
	assert.Nil(t, loan.EMI)

	require.NoError(t, plan.UpdateAt(KindLoan, key, "amount", "abc"))
	loan, err = plan.Resolve(KindLoan, key)
	require.NoError(t, err)
	assert.InDelta(t, 0, loan.Amount, 0)

	goalKey, err := plan.Append(KindGoal, NewGoal("Trip", 1))
	require.NoError(t, err)
	require.ErrorIs(t, plan.UpdateAt(KindGoal, goalKey, "emi", "1"), ErrUnknownField)
	require.ErrorIs(t, plan.UpdateAt(KindGoal, goalKey, "colour", "1"), ErrUnknownField)
}

func TestPlan_RemoveAt(t *testing.T) {
	plan := NewPlan()
	_, _ = plan.Append(KindExpense, NewExpense("Rent", 1))
	_, _ = plan.Append(KindExpense, NewExpense("Food", 2))
	_, _ = plan.Append(KindExpense, NewExpense("School", 3))

	removed, err := plan.RemoveAt(KindExpense, LocalKey(1))
	require.NoError(t, err)
	assert.Equal(t, "Food", removed.Description)

	left := plan.Entries(KindExpense)
	require.Len(t, left, 2)
	assert.Equal(t, "Rent", left[0].Description)
	assert.Equal(t, "School", left[1].Description)

	_, err = plan.RemoveAt(KindExpense, LocalKey(5))
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPlan_AddDefault(t *testing.T) {
	plan := NewPlan()
	_, err := plan.AddDefault(KindGoal)
	require.NoError(t, err)
	_, err = plan.AddDefault(KindGoal)
	require.NoError(t, err)
	_, err = plan.AddDefault(KindLoan)
	require.NoError(t, err)

	goals := plan.Entries(KindGoal)
	assert.Equal(t, "Goal 1", goals[0].Description)
	assert.Equal(t, "Goal 2", goals[1].Description)
	assert.Empty(t, plan.Entries(KindLoan)[0].Description)

	_, err = plan.AddDefault(EntryKind("pet"))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestPlan_MarkSavedFollowsRef(t *testing.T) {
	plan := NewPlan()
	_, _ = plan.Append(KindGoal, NewGoal("A", 1))
	_, _ = plan.Append(KindGoal, NewGoal("B", 2))

	snap := plan.Snapshot()
	refB := snap.Goals[1].Ref()

	// The entry moves while a save is in flight.
	_, err := plan.RemoveAt(KindGoal, LocalKey(0))
	require.NoError(t, err)

	assert.True(t, plan.MarkSaved(KindGoal, refB, "g-b"))
	goals := plan.Entries(KindGoal)
	require.Len(t, goals, 1)
	assert.Equal(t, "g-b", goals[0].ID)
	assert.False(t, goals[0].IsNew)

	assert.False(t, plan.MarkSaved(KindGoal, snap.Goals[0].Ref(), "gone"))
}

func TestPlan_HandleKeySurvivesRemoval(t *testing.T) {
	p := NewPlan()
	_, err := p.Append(KindGoal, NewGoal("House", 1))
	require.NoError(t, err)
	_, err = p.Append(KindGoal, NewGoal("Car", 2))
	require.NoError(t, err)

	house, err := p.HandleAt(KindGoal, 0)
	require.NoError(t, err)
	car, err := p.HandleAt(KindGoal, 1)
	require.NoError(t, err)
	_, isIndex := car.Index()
	assert.False(t, isIndex)

	_, err = p.RemoveAt(KindGoal, house)
	require.NoError(t, err)

	// The same handle again finds nothing instead of the row that moved up.
	_, err = p.RemoveAt(KindGoal, house)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, p.UpdateAt(KindGoal, car, EntryFieldAmount, "5"))
	e, err := p.Resolve(KindGoal, car)
	require.NoError(t, err)
	assert.Equal(t, "Car", e.Description)
	assert.InDelta(t, 5, e.Amount, 0.001)

	// A handle still resolves after the entry is saved.
	require.True(t, p.MarkSaved(KindGoal, e.Ref(), "g9"))
	e, err = p.Resolve(KindGoal, car)
	require.NoError(t, err)
	assert.Equal(t, "g9", e.ID)

	_, err = p.HandleAt(KindGoal, 3)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPlan_SnapshotIsIsolated(t *testing.T) {
	plan := NewPlan()
	require.NoError(t, plan.SetField("age", "30"))
	_, _ = plan.Append(KindLoan, NewLoan("Car", 10, FloatPtr(1)))

	snap := plan.Snapshot()
	*snap.Profile.Age = 50
	*snap.Loans[0].EMI = 99
	snap.Loans[0].Description = "changed"

	assert.Equal(t, 30, *plan.Profile().Age)
	loan := plan.Entries(KindLoan)[0]
	assert.Equal(t, "Car", loan.Description)
	assert.InDelta(t, 1, *loan.EMI, 0)
}

func TestPlan_ResetAndReplace(t *testing.T) {
	plan := NewPlan()
	require.NoError(t, plan.SetField("age", "30"))
	require.NoError(t, plan.SetField("lifespan", "90"))
	_, _ = plan.Append(KindGoal, NewGoal("A", 1))

	plan.Reset()
	p := plan.Profile()
	assert.Nil(t, p.Age)
	assert.Equal(t, DefaultLifespanYears, p.LifespanYears)
	assert.Empty(t, plan.Entries(KindGoal))

	loaded := Snapshot{
		Profile: Profile{ID: "p-1", Age: IntPtr(40), LifespanYears: 80},
		Loans:   []Entry{{ID: "l-1", Description: "Home", Amount: 5}},
	}
	plan.Replace(loaded)
	loans := plan.Entries(KindLoan)
	require.Len(t, loans, 1)
	assert.Equal(t, KindLoan, loans[0].Kind)
	assert.NotZero(t, loans[0].Ref())
	assert.True(t, loans[0].Persisted())
	assert.Equal(t, "p-1", plan.Profile().ID)

	require.ErrorIs(t, plan.SetField("bogus", "1"), ErrUnknownField)
}

func TestPlan_ApplyHoldings(t *testing.T) {
	plan := NewPlan()
	_, _ = plan.Append(KindLoan, NewLoan("Visa ****1234", 100, nil))

	added := plan.ApplyHoldings(Holdings{Accounts: []AccountBalance{
		{Name: "Savings", Class: ClassAsset, Balance: 1000},
		{Name: "Brokerage", Class: ClassAsset, Balance: 500},
		{Name: "Visa", Mask: "1234", Class: ClassLiability, Balance: -250},
		{Name: "Car loan", Class: ClassLiability, Balance: 4000},
		{Name: "Paid off", Class: ClassLiability, Balance: 0},
	}})

	assert.Equal(t, 1, added)
	assert.InDelta(t, 1500, FloatValue(plan.Profile().TotalAssetGrossMarketValue), 0)

	loans := plan.Entries(KindLoan)
	require.Len(t, loans, 2)
	assert.InDelta(t, 250, loans[0].Amount, 0)
	assert.Equal(t, "Car loan", loans[1].Description)
	assert.True(t, loans[1].IsNew)
}

func TestParseEntryKind(t *testing.T) {
	for input, want := range map[string]EntryKind{"goals": KindGoal, "Expense": KindExpense, "loans": KindLoan} {
		got, err := ParseEntryKind(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEntryKind("assets")
	require.ErrorIs(t, err, ErrUnknownKind)
}
