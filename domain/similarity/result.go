package similarity

import (
	"encoding/json"
	"fmt"
)

// Neighbor is a single scored entity in a prediction.
type Neighbor struct {
	entity string
	score  float64
}

// NewNeighbor creates a Neighbor.
func NewNeighbor(entity string, score float64) Neighbor {
	return Neighbor{entity: entity, score: score}
}

// Entity returns the neighbor's label.
func (n Neighbor) Entity() string { return n.entity }

// Score returns the similarity score. Higher means more similar.
func (n Neighbor) Score() float64 { return n.score }

// MarshalJSON renders the neighbor as a two-element [entity, score] array,
// the shape clients already consume.
func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{n.entity, n.score})
}

// UnmarshalJSON parses the [entity, score] array form.
func (n *Neighbor) UnmarshalJSON(data []byte) error {
	var pair [2]any
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("neighbor: %w", err)
	}
	entity, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("neighbor: entity is %T, want string", pair[0])
	}
	score, ok := pair[1].(float64)
	if !ok {
		return fmt.Errorf("neighbor: score is %T, want number", pair[1])
	}
	*n = Neighbor{entity: entity, score: score}
	return nil
}

// Prediction is an ordered list of neighbors, most similar first.
type Prediction []Neighbor
