// Package types provides the record model shared by the resume editor: collection kinds,
// field schemas, and record validation.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
)

// Kind identifies a resume collection.
type Kind string

const (
	// KindExperience is the work experience collection
	KindExperience Kind = "experience"
	// KindEducation is the education collection
	KindEducation Kind = "education"
	// KindPersonalInfo is the single personal info record (no persistence endpoint)
	KindPersonalInfo Kind = "personal_info"
)

// DefaultLogo is the logo assigned to new experience and education drafts
// when no other default is configured.
const DefaultLogo = "example-logo.png"

// Field names shared across kinds
const (
	FieldTitle       = "title"
	FieldCompany     = "company"
	FieldCourse      = "course"
	FieldSchool      = "school"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldGrade       = "grade"
	FieldDescription = "description"
	FieldLogo        = "logo"
	FieldName        = "name"
	FieldPhoneNumber = "phone_number"
	FieldEmail       = "email"
)

var kindFields = map[Kind][]string{
	KindExperience:   {FieldTitle, FieldCompany, FieldStartDate, FieldEndDate, FieldDescription, FieldLogo},
	KindEducation:    {FieldCourse, FieldSchool, FieldStartDate, FieldEndDate, FieldGrade, FieldDescription, FieldLogo},
	KindPersonalInfo: {FieldName, FieldPhoneNumber, FieldEmail},
}

// Kinds returns every known kind in display order.
func Kinds() []Kind {
	return []Kind{KindPersonalInfo, KindExperience, KindEducation}
}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindFields[k]; !ok {
		return "", fmt.Errorf("unknown collection kind %q", s)
	}
	return k, nil
}

// Persisted reports whether the backend exposes endpoints for this kind.
func (k Kind) Persisted() bool {
	return k == KindExperience || k == KindEducation
}

// Fields returns the schema field names for a kind. Unknown kinds yield nil.
func Fields(kind Kind) []string {
	fields := kindFields[kind]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// HasField reports whether field belongs to the kind's schema.
func HasField(kind Kind, field string) bool {
	for _, f := range kindFields[kind] {
		if f == field {
			return true
		}
	}
	return false
}

// Record is a named-field resume entry. The backend stores records as flat JSON objects of strings.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether two records carry the same fields and values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Blank returns a record with every schema field of the kind set to its default.
// Experience and education logos default to defaultLogo, or DefaultLogo when empty.
func Blank(kind Kind, defaultLogo string) Record {
	if defaultLogo == "" {
		defaultLogo = DefaultLogo
	}
	rec := make(Record, len(kindFields[kind]))
	for _, f := range kindFields[kind] {
		rec[f] = ""
	}
	if HasField(kind, FieldLogo) {
		rec[FieldLogo] = defaultLogo
	}
	return rec
}

// Summary returns a short one-line label for a record, used by CLI listings.
func Summary(kind Kind, r Record) string {
	switch kind {
	case KindExperience:
		return fmt.Sprintf("%s at %s", r[FieldTitle], r[FieldCompany])
	case KindEducation:
		return fmt.Sprintf("%s, %s", r[FieldCourse], r[FieldSchool])
	case KindPersonalInfo:
		return fmt.Sprintf("%s <%s> %s", r[FieldName], r[FieldEmail], r[FieldPhoneNumber])
	default:
		return fmt.Sprint(map[string]string(r))
	}
}
