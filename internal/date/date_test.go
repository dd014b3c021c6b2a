package date

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	d, err := Parse("2024-03-05")
	require.NoError(t, err)

	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 5, d.Day())
	assert.Equal(t, "2024-03-05", d.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-date", "05.03.2024", "2024-13-01"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestNewNormalizes(t *testing.T) {
	// Day overflow rolls into the next month.
	d := New(2024, time.January, 32)
	assert.Equal(t, "2024-02-01", d.String())
}

func TestOrdering(t *testing.T) {
	a := MustParse("2024-01-10")
	b := MustParse("2024-01-11")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, b, a.Add(1))

	// Lexical order of the string form matches chronological order.
	assert.Less(t, a.String(), b.String())
}

func TestFromTimeDropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	d := FromTime(time.Date(2024, time.March, 5, 23, 59, 0, 0, loc))
	assert.Equal(t, "2024-03-05", d.String())
}
