package tui

import (
	"fmt"
	"slices"

	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
)

const (
	profileInputWidth     = 18
	descriptionInputWidth = 24
	amountInputWidth      = 14
)

// target is what a form field edits: a profile field, or one column of the
// entry at a position in its collection.
type target struct {
	profile model.Field
	kind    model.EntryKind
	column  string
	pos     int
}

func (t target) isProfile() bool {
	return t.profile != ""
}

// name identifies the field in logs and autosave calls.
func (t target) name() string {
	if t.isProfile() {
		return string(t.profile)
	}
	return fmt.Sprintf("%s[%d].%s", t.kind.Plural(), t.pos, t.column)
}

// formField is one text input on the form. ref is the entry's handle for
// entry fields, so edits land on the same row even after rows above it go away.
type formField struct {
	label  string
	target target
	input  textinput.Model
	ref    uint64
}

func newInput(value, placeholder string, width int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.Width = width
	in.SetValue(value)
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

// buildFields lays out the form for a snapshot: profile fields first, then
// goals, expenses and loans row by row.
func buildFields(snap model.Snapshot) []formField {
	fields := make([]formField, 0, len(model.ProfileFields)+3*(len(snap.Goals)+len(snap.Expenses)+len(snap.Loans)))
	for _, spec := range model.ProfileFields {
		fields = append(fields, formField{
			label:  spec.Label,
			target: target{profile: spec.Name},
			input:  newInput(snap.Profile.Get(spec.Name), "", profileInputWidth),
		})
	}

	for _, kind := range model.EntryKinds {
		for pos, e := range snap.Entries(kind) {
			fields = append(fields,
				formField{
					label:  "Description",
					target: target{kind: kind, pos: pos, column: model.EntryFieldDescription},
					input:  newInput(e.Description, kind.Title()+" name", descriptionInputWidth),
					ref:    e.Ref(),
				},
				formField{
					label:  "Amount",
					target: target{kind: kind, pos: pos, column: model.EntryFieldAmount},
					input:  newInput(amountValue(e.Amount), "Amount", amountInputWidth),
					ref:    e.Ref(),
				},
			)
			if kind == model.KindLoan {
				emi := ""
				if e.EMI != nil {
					emi = model.FormatNumber(*e.EMI)
				}
				fields = append(fields, formField{
					label:  "EMI",
					target: target{kind: kind, pos: pos, column: model.EntryFieldEMI},
					input:  newInput(emi, "EMI", amountInputWidth),
					ref:    e.Ref(),
				})
			}
		}
	}
	return fields
}

func amountValue(v float64) string {
	if v == 0 {
		return ""
	}
	return model.FormatNumber(v)
}

// currentValue is the model's value for a field, formatted the way the form shows it.
// Entry fields are looked up by handle; a removed entry reports false.
func currentValue(snap model.Snapshot, f formField) (string, bool) {
	t := f.target
	if t.isProfile() {
		return snap.Profile.Get(t.profile), true
	}
	i := slices.IndexFunc(snap.Entries(t.kind), func(e model.Entry) bool { return e.Ref() == f.ref })
	if i < 0 {
		return "", false
	}
	e := snap.Entries(t.kind)[i]
	switch t.column {
	case model.EntryFieldDescription:
		return e.Description, true
	case model.EntryFieldAmount:
		return amountValue(e.Amount), true
	case model.EntryFieldEMI:
		if e.EMI == nil {
			return "", true
		}
		return model.FormatNumber(*e.EMI), true
	}
	return "", false
}
