package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating_UnsetEncodesAsNull(t *testing.T) {
	rec := Record{ID: "a1", Question: "Q", Answer: "A", Timestamp: "t"}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a1","question":"Q","answer":"A","timestamp":"t","rating":null}`, string(data))
}

func TestRating_DecodeNullAndValue(t *testing.T) {
	var recs []Record
	err := json.Unmarshal([]byte(`[{"id":"a","rating":null},{"id":"b","rating":"down"},{"id":"c"}]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, RatingUnset, recs[0].Rating)
	assert.Equal(t, RatingDown, recs[1].Rating)
	assert.Equal(t, RatingUnset, recs[2].Rating)
}

func TestRating_DecodeRejectsNonString(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"id":"a","rating":5}`), &rec)
	assert.Error(t, err)
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating("up")
	require.NoError(t, err)
	assert.Equal(t, RatingUp, r)

	r, err = ParseRating("down")
	require.NoError(t, err)
	assert.Equal(t, RatingDown, r)

	for _, bad := range []string{"", "UP", "sideways", "null"} {
		_, err := ParseRating(bad)
		assert.Error(t, err, "value %q", bad)
	}
}

func TestRecord_SameContentIgnoresRating(t *testing.T) {
	a := Record{ID: "x", Question: "q", Answer: "a", Timestamp: "t"}
	b := a
	b.Rating = RatingUp
	assert.True(t, a.SameContent(b))

	b.Answer = "other"
	assert.False(t, a.SameContent(b))
}
