package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSeasonRange(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	r := DefaultSeasonRange(now)
	assert.Equal(t, FirstSeason, r.From)
	assert.Equal(t, 2024, r.To)
	assert.Len(t, r.Years(), 75)
	assert.NoError(t, r.Validate(now))
}

func TestSeasonRange_Validate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, SeasonRange{From: 1949, To: 2000}.Validate(now), ErrInvalidInput)
	assert.ErrorIs(t, SeasonRange{From: 2000, To: 2030}.Validate(now), ErrInvalidInput)
	assert.ErrorIs(t, SeasonRange{From: 2010, To: 2000}.Validate(now), ErrInvalidInput)
	assert.Empty(t, SeasonRange{From: 2010, To: 2000}.Years())
	assert.True(t, SeasonRange{From: 2000, To: 2001}.Contains(2001))
}

func TestYearSet_Operations(t *testing.T) {
	races := NewYearSet(2018, 2019, 2020)
	drivers := NewYearSet(2019, 2020, 2021)
	results := NewYearSet(2019)

	both := races.Intersect(drivers)
	assert.Equal(t, []int{2019, 2020}, both.Sorted())
	assert.Equal(t, []int{2020}, both.Minus(results).Sorted())
	assert.True(t, races.Has(2018))
	assert.False(t, races.Has(2021))
}
