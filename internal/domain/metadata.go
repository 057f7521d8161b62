package domain

import "strings"

// TypeKind enumerates the semantic type labels the classifier can produce.
type TypeKind int

const (
	TypeOther TypeKind = iota
	TypeInteger
	TypeDecimal
	TypeIntegerStoredAsFloat
	TypeBoolean
	TypeDateTime
	TypeDateWithFormat
	TypeString
)

// TypeLabel is a classified column type. Format is set for
// TypeDateWithFormat, Raw for TypeOther.
type TypeLabel struct {
	Kind   TypeKind
	Format string
	Raw    string
}

// Label constructors.
func IntegerLabel() TypeLabel              { return TypeLabel{Kind: TypeInteger} }
func DecimalLabel() TypeLabel              { return TypeLabel{Kind: TypeDecimal} }
func IntegerStoredAsFloatLabel() TypeLabel { return TypeLabel{Kind: TypeIntegerStoredAsFloat} }
func BooleanLabel() TypeLabel              { return TypeLabel{Kind: TypeBoolean} }
func DateTimeLabel() TypeLabel             { return TypeLabel{Kind: TypeDateTime} }
func StringLabel() TypeLabel               { return TypeLabel{Kind: TypeString} }

// DateWithFormatLabel labels a textual date column matching format.
func DateWithFormatLabel(format string) TypeLabel {
	return TypeLabel{Kind: TypeDateWithFormat, Format: format}
}

// OtherLabel falls back to the storage type's own name.
func OtherLabel(rawTypeName string) TypeLabel {
	return TypeLabel{Kind: TypeOther, Raw: rawTypeName}
}

// IsNumeric reports whether min/max statistics apply to the label.
func (l TypeLabel) IsNumeric() bool {
	switch l.Kind {
	case TypeInteger, TypeDecimal, TypeIntegerStoredAsFloat:
		return true
	default:
		return false
	}
}

// String renders the display form used in reports.
func (l TypeLabel) String() string {
	switch l.Kind {
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeIntegerStoredAsFloat:
		return "integer (stored as float)"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "datetime"
	case TypeDateWithFormat:
		return "date (format: " + l.Format + ")"
	case TypeString:
		return "string"
	default:
		return l.Raw
	}
}

// MarshalText encodes the label as its display form.
func (l TypeLabel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Observation keys and flags.
const (
	ObsMin   = "min"
	ObsMax   = "max"
	ObsNote  = "observação"
	ObsNulls = "nulos"

	NoteUniqueKey    = "possível chave única"
	NoteUUID         = "possível UUID"
	NoteISOTimestamp = "possível timestamp ISO"
)

// Observation is a single heuristic note attached to a column.
type Observation struct {
	Key   string
	Value string
}

// Observations is an ordered set of notes. Setting an existing key
// replaces its value in place.
type Observations []Observation

// Set adds or replaces key.
func (o Observations) Set(key, value string) Observations {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Observation{Key: key, Value: value})
}

// Get returns the value stored under key.
func (o Observations) Get(key string) (string, bool) {
	for _, obs := range o {
		if obs.Key == key {
			return obs.Value, true
		}
	}
	return "", false
}

// String joins the notes as "key: value; key: value".
func (o Observations) String() string {
	parts := make([]string, len(o))
	for i, obs := range o {
		parts[i] = obs.Key + ": " + obs.Value
	}
	return strings.Join(parts, "; ")
}

// MarshalText encodes the observations in their joined form.
func (o Observations) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Record is the metadata inferred for one (file, column) pair.
// Description is reserved for manual annotation and is always empty.
type Record struct {
	File         string       `json:"file"`
	Column       string       `json:"column"`
	Type         TypeLabel    `json:"type"`
	Observations Observations `json:"observations"`
	Description  string       `json:"description"`
}
