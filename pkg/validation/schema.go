package validation

import (
	"slices"
	"time"
)

// Check validates one raw value and returns a message, or "" when valid.
type Check func(value string, now time.Time) string

// Field describes one form field of a Schema.
type Field struct {
	// Name is the form key.
	Name string

	// Check validates the raw value.
	Check Check

	// Normalize returns the canonical form of a value so that equal
	// inputs compare equal ("060" and "60"). Nil keeps values as typed.
	Normalize func(string) string
}

// Schema is an ordered set of field checks.
type Schema struct {
	name   string
	fields []Field
	now    func() time.Time
}

// NewSchema returns a schema checking fields in the given order. Date
// checks compare against the wall clock unless WithClock is used.
func NewSchema(name string, fields ...Field) *Schema {
	return &Schema{
		name:   name,
		fields: fields,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Schema) WithClock(now func() time.Time) *Schema {
	c := *s
	c.now = now
	return &c
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Fields returns the field names in check order.
func (s *Schema) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema defines field.
func (s *Schema) Has(field string) bool {
	_, ok := s.field(field)
	return ok
}

// Normalize returns the canonical form of value for field.
func (s *Schema) Normalize(field, value string) string {
	f, ok := s.field(field)
	if !ok || f.Normalize == nil {
		return value
	}
	return f.Normalize(value)
}

// Validate checks every field of form. A Valid result holds a normalized
// copy of the schema's fields; keys outside the schema are dropped.
func (s *Schema) Validate(form Form) Result[Form] {
	now := s.now()
	errs := Errors{}
	out := make(Form, len(s.fields))

	for _, f := range s.fields {
		value := form[f.Name]
		if msg := f.Check(value, now); msg != "" {
			errs[f.Name] = msg
			continue
		}
		out[f.Name] = s.Normalize(f.Name, value)
	}

	if len(errs) > 0 {
		return Invalid[Form](errs)
	}
	return Valid(out)
}

// ValidateField checks a single value for live feedback. Checks never
// depend on other fields. Fields outside the schema are always valid.
func (s *Schema) ValidateField(field, value string) (string, bool) {
	f, ok := s.field(field)
	if !ok {
		return "", true
	}
	msg := f.Check(value, s.now())
	return msg, msg == ""
}

func (s *Schema) field(name string) (Field, bool) {
	i := slices.IndexFunc(s.fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return s.fields[i], true
}
