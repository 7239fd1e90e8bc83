package models

import (
	"encoding/json"
	"fmt"
)

// Rating is the user's verdict on an answer. The zero value means no rating yet.
type Rating string

const (
	RatingUnset Rating = ""
	RatingUp    Rating = "up"
	RatingDown  Rating = "down"
)

// ParseRating accepts only the two values a user can submit.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case RatingUp, RatingDown:
		return Rating(s), nil
	}
	return RatingUnset, fmt.Errorf("rating must be %q or %q, got %q", RatingUp, RatingDown, s)
}

// MarshalJSON encodes an unset rating as null.
func (r Rating) MarshalJSON() ([]byte, error) {
	if r == RatingUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RatingUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	*r = Rating(s)
	return nil
}

// Record is one question/answer pair logged for analytics.
type Record struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
	Rating    Rating `json:"rating"`
}

// SameContent reports whether two records carry the same immutable fields.
func (r Record) SameContent(other Record) bool {
	return r.ID == other.ID &&
		r.Question == other.Question &&
		r.Answer == other.Answer &&
		r.Timestamp == other.Timestamp
}
