package recommend

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Recommendation is one suggested course or degree program.
type Recommendation struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	FitReason   string      `json:"fit_reason"`
	CareerPaths CareerPaths `json:"career_paths"`
}

// CareerPaths is a list of career paths. It also decodes a bare string as a
// one-element list and null as an empty list.
type CareerPaths []string

// UnmarshalJSON accepts an array of strings, a single string, or null.
func (p *CareerPaths) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = CareerPaths{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*p = CareerPaths{single}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if list == nil {
			list = []string{}
		}
		*p = CareerPaths(list)
		return nil
	default:
		return fmt.Errorf("career_paths: expected string or array, got %s", trimmed)
	}
}

// MarshalJSON always renders an array.
func (p CareerPaths) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}

// Input is the profile snapshot a recommendation is generated from.
type Input struct {
	Subjects         []string
	Grades           map[string]string
	FavoriteSubjects []string
	Hobbies          []string
	Interests        []string
	PersonalityType  string
}

// Fallback returns the fixed recommendation used when generation degrades.
// Each call returns a fresh slice.
func Fallback() []Recommendation {
	return []Recommendation{
		{
			Name:        "General Studies",
			Description: "A flexible program allowing exploration of multiple fields.",
			FitReason:   "Based on your diverse interests, this provides flexibility to find your passion.",
			CareerPaths: CareerPaths{"Various fields based on specialization"},
		},
	}
}
