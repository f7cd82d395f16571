package internal

import (
	"github.com/cockroachdb/errors"
)

// Configuration maps field keys to selected column names
type Configuration map[FieldKey]string

// Get returns the selected column for key.
func (c Configuration) Get(key FieldKey) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Has reports whether key holds a selection.
func (c Configuration) Has(key FieldKey) bool {
	_, ok := c[key]
	return ok
}

// Clone returns an independent copy.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// FieldDescriptor describes one selector of the configuration form
type FieldDescriptor struct {
	Key         FieldKey
	Label       string
	Placeholder string
	Options     []string
	Selected    string // empty unless IsSet
	IsSet       bool
}

// Display returns the selected column, or the placeholder when nothing is
// chosen. An empty column name is a valid selection.
func (f FieldDescriptor) Display() string {
	if f.IsSet {
		return f.Selected
	}
	return f.Placeholder
}

var fieldLabels = map[FieldKey][2]string{
	FieldInput:   {"Input Column", "Select Column..."},
	FieldTarget:  {"Target Column", "Select Target..."},
	FieldContext: {"Context Column", "Select Context..."},
}

// Label returns the form label of a field.
func (k FieldKey) Label() string {
	return fieldLabels[k][0]
}

// BuildForm lists the selectors a task needs over the given schema, in
// required-field order. Options are the schema columns without duplicates.
func BuildForm(task TaskType, schema []string, cfg Configuration) []FieldDescriptor {
	options := dedupe(schema)
	fields := task.RequiredFields()
	out := make([]FieldDescriptor, 0, len(fields))
	for _, key := range fields {
		fd := FieldDescriptor{
			Key:         key,
			Label:       fieldLabels[key][0],
			Placeholder: fieldLabels[key][1],
			Options:     append([]string(nil), options...),
		}
		if v, ok := cfg.Get(key); ok {
			fd.Selected = v
			fd.IsSet = true
		}
		out = append(out, fd)
	}
	return out
}

// Select sets one key of cfg after checking it against the task and schema.
// Other keys are left untouched.
func Select(cfg Configuration, task TaskType, schema []string, key FieldKey, column string) error {
	if !task.Requires(key) {
		return errors.Wrapf(ErrFieldNotApplicable, "%s for %s", key, task)
	}
	found := false
	for _, c := range schema {
		if c == column {
			found = true
			break
		}
	}
	if !found {
		return errors.Wrapf(ErrUnknownColumn, "%q", column)
	}
	cfg[key] = column
	return nil
}

// ParseFieldKey accepts both the key ("target_col") and the short name ("target").
func ParseFieldKey(s string) (FieldKey, error) {
	switch s {
	case "input_col", "input":
		return FieldInput, nil
	case "target_col", "target":
		return FieldTarget, nil
	case "context_col", "context":
		return FieldContext, nil
	}
	return "", errors.Newf("unknown field %q (expected input, target or context)", s)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
