package models

import "strconv"

// FieldKind tags the variant stored in a FieldValue.
type FieldKind int

const (
	// FieldMissing marks a field the parser could not locate in the payload.
	FieldMissing FieldKind = iota
	FieldInteger
	FieldText
)

// FieldValue is a tagged variant over {Integer, Text, Missing}. Raw PLC
// payloads are noisy, so unparseable or absent values always degrade to the
// Missing kind instead of producing an error.
type FieldValue struct {
	Kind FieldKind `json:"kind"`
	Int  int       `json:"int,omitempty"`
	Text string    `json:"text,omitempty"`
}

// IntField creates an integer-kinded value.
func IntField(v int) FieldValue {
	return FieldValue{Kind: FieldInteger, Int: v}
}

// TextField creates a text-kinded value.
func TextField(s string) FieldValue {
	return FieldValue{Kind: FieldText, Text: s}
}

// IsMissing reports whether the field was absent from the payload.
func (v FieldValue) IsMissing() bool {
	return v.Kind == FieldMissing
}

// String returns the text form of the value, or "" when missing.
func (v FieldValue) String() string {
	switch v.Kind {
	case FieldInteger:
		return strconv.Itoa(v.Int)
	case FieldText:
		return v.Text
	default:
		return ""
	}
}

// AsInt coerces the value to an integer. Text that does not parse as a
// decimal integer yields 0, matching the lenient contract for noisy feeds.
func (v FieldValue) AsInt() int {
	switch v.Kind {
	case FieldInteger:
		return v.Int
	case FieldText:
		n, err := strconv.Atoi(v.Text)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Fields maps a field name to its extracted value. Keys are present only
// when the parser successfully located the field.
type Fields map[string]FieldValue

// Get returns the value for key, or a Missing value when absent.
func (f Fields) Get(key string) FieldValue {
	if v, ok := f[key]; ok {
		return v
	}
	return FieldValue{}
}

// Has reports whether key was extracted.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}
