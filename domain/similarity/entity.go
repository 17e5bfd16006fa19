// Package similarity holds the entity-similarity domain: entity references,
// prediction results, and the ports the application layer depends on.
package similarity

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrUnknownEntity is returned when an entity reference does not resolve
// against the loaded vocabulary.
var ErrUnknownEntity = errors.New("unknown entity")

// EntityRef identifies an entity either by its string label or by its
// integer vocabulary id. Exactly one of the two forms is set.
type EntityRef struct {
	label string
	id    int
	byID  bool
}

// NewLabelRef creates a reference by entity label. Surrounding whitespace
// is not significant and is trimmed.
func NewLabelRef(label string) EntityRef {
	return EntityRef{label: strings.TrimSpace(label)}
}

// NewIDRef creates a reference by vocabulary id.
func NewIDRef(id int) EntityRef {
	return EntityRef{id: id, byID: true}
}

// ByID reports whether the reference carries a vocabulary id.
func (r EntityRef) ByID() bool { return r.byID }

// Label returns the entity label. Only meaningful when ByID is false.
func (r EntityRef) Label() string { return r.label }

// ID returns the vocabulary id. Only meaningful when ByID is true.
func (r EntityRef) ID() int { return r.id }

// String renders the reference for cache keys and logs.
func (r EntityRef) String() string {
	if r.byID {
		return strconv.Itoa(r.id)
	}
	return r.label
}

// UnmarshalJSON accepts either a JSON string label or a JSON number id.
// Numbers with a fractional part are rejected.
func (r *EntityRef) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*r = NewLabelRef(label)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errors.New("entity must be a string label or an integer id")
	}
	id, err := strconv.Atoi(num.String())
	if err != nil {
		// Accept float encodings of whole numbers, e.g. 5.0.
		f, ferr := num.Float64()
		if ferr != nil || f != float64(int(f)) {
			return errors.New("entity id must be a whole number")
		}
		id = int(f)
	}
	*r = NewIDRef(id)
	return nil
}

// MarshalJSON renders the label form as a string and the id form as a number.
func (r EntityRef) MarshalJSON() ([]byte, error) {
	if r.byID {
		return json.Marshal(r.id)
	}
	return json.Marshal(r.label)
}
