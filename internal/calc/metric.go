package calc

import "encoding/json"

// Metric is the outcome of a single ratio computation: either a finite
// computed value or an explicit "not computable" marker. The marker is a
// first-class value, distinct from zero and from a missing key.
type Metric struct {
	value  float64
	valid  bool
	reason string
}

// Computed returns a metric holding a computed value.
func Computed(value float64) Metric {
	return Metric{value: value, valid: true}
}

// NotComputable returns a metric marked uncomputable, with the reason the
// required inputs could not produce a value.
func NotComputable(reason string) Metric {
	return Metric{reason: reason}
}

// Valid reports whether the metric holds a computed value.
func (m Metric) Valid() bool { return m.valid }

// Value returns the computed value and whether one exists.
func (m Metric) Value() (float64, bool) { return m.value, m.valid }

// Reason returns why the metric is not computable, or "" if it is.
func (m Metric) Reason() string { return m.reason }

// MarshalJSON encodes a computed metric as its number and an uncomputable
// one as null, mirroring the documented API response shape.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}
