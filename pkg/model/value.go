package model

import (
	"slices"
	"strings"
)

type valueKind uint8

const (
	valueText valueKind = iota
	valueFlag
	valueSet
	valueChoice
)

// Value is the current input of a single field: a string, a boolean, a set of
// selected option values or a single choice. Values are immutable; Toggle and
// the constructors always return a fresh copy.
type Value struct {
	kind valueKind
	text string
	flag bool
	set  []string
}

// Text returns a string value.
func Text(s string) Value {
	return Value{kind: valueText, text: s}
}

// Flag returns a boolean value.
func Flag(b bool) Value {
	return Value{kind: valueFlag, flag: b}
}

// Set returns a multi-select value holding the distinct, sorted selections.
func Set(values ...string) Value {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return Value{kind: valueSet, set: slices.Compact(out)}
}

// Choice returns a single selection. The empty choice means nothing is selected.
func Choice(s string) Value {
	return Value{kind: valueChoice, text: s}
}

// Zero returns the initial empty value for kind.
func Zero(kind FieldKind) Value {
	switch kind {
	case KindBoolean:
		return Flag(false)
	case KindMultiSelect:
		return Set()
	case KindChoice:
		return Choice("")
	default:
		return Text("")
	}
}

// Fits reports whether v has the shape a field of kind holds. Text values fit
// text, password and number fields.
func (v Value) Fits(kind FieldKind) bool {
	return v.kind == Zero(kind).kind
}

// String returns the text or choice held by v.
func (v Value) String() string {
	if v.kind == valueSet {
		return strings.Join(v.set, ",")
	}
	if v.kind == valueFlag {
		if v.flag {
			return "true"
		}
		return "false"
	}
	return v.text
}

// Bool returns the boolean held by v.
func (v Value) Bool() bool {
	return v.kind == valueFlag && v.flag
}

// Values returns a copy of the multi-select selections.
func (v Value) Values() []string {
	if len(v.set) == 0 {
		return nil
	}
	return slices.Clone(v.set)
}

// Has reports whether option is selected, either in a set or as the choice.
func (v Value) Has(option string) bool {
	switch v.kind {
	case valueSet:
		_, found := slices.BinarySearch(v.set, option)
		return found
	case valueChoice:
		return v.text == option && option != ""
	}
	return false
}

// Toggle flips option in a multi-select value.
func (v Value) Toggle(option string) Value {
	if v.Has(option) {
		kept := make([]string, 0, len(v.set))
		for _, s := range v.set {
			if s != option {
				kept = append(kept, s)
			}
		}
		return Set(kept...)
	}
	return Set(append(slices.Clone(v.set), option)...)
}

// Empty reports whether v counts as "not provided": a blank string, a false
// flag, no selections or no choice.
func (v Value) Empty() bool {
	switch v.kind {
	case valueFlag:
		return !v.flag
	case valueSet:
		return len(v.set) == 0
	default:
		return strings.TrimSpace(v.text) == ""
	}
}

// Equal reports whether both values hold the same content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case valueFlag:
		return v.flag == other.flag
	case valueSet:
		return slices.Equal(v.set, other.set)
	default:
		return v.text == other.text
	}
}
