package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
)

func TestApplyDelta_AddsPoints(t *testing.T) {
	p := NewProfile("user-1")

	res, err := ApplyDelta(p, 10)
	require.NoError(t, err)

	assert.Equal(t, Points(10), res.Profile.Points)
	assert.Equal(t, Level(1), res.Profile.Level)
	assert.False(t, res.LeveledUp)
}

func TestApplyDelta_LevelUpAcrossBoundary(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = 95
	p.Level = CalculateLevel(p.Points)

	res, err := ApplyDelta(p, 10)
	require.NoError(t, err)

	assert.Equal(t, Points(105), res.Profile.Points)
	assert.Equal(t, Level(2), res.Profile.Level)
	assert.True(t, res.LeveledUp)
}

func TestApplyDelta_ClampsAtZero(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = 5

	res, err := ApplyDelta(p, -10)
	require.NoError(t, err)

	assert.Equal(t, Points(0), res.Profile.Points)
	assert.Equal(t, Level(1), res.Profile.Level)
	assert.False(t, res.LeveledUp)
}

func TestApplyDelta_LevelDropIsNotLevelUp(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = 100
	p.Level = CalculateLevel(p.Points)
	require.Equal(t, Level(2), p.Level)

	res, err := ApplyDelta(p, -10)
	require.NoError(t, err)

	assert.Equal(t, Points(90), res.Profile.Points)
	assert.Equal(t, Level(1), res.Profile.Level)
	assert.False(t, res.LeveledUp)
}

func TestApplyDelta_NilProfile(t *testing.T) {
	_, err := ApplyDelta(nil, 10)
	assert.ErrorIs(t, err, shared.ErrMissingProfile)
}

func TestApplyDelta_DoesNotMutateInput(t *testing.T) {
	p := NewProfile("user-1")
	p.Points = 50
	p.Level = CalculateLevel(p.Points)

	_, err := ApplyDelta(p, 25)
	require.NoError(t, err)

	assert.Equal(t, Points(50), p.Points)
}

func TestCalculateLevel_Boundaries(t *testing.T) {
	tests := []struct {
		points Points
		level  Level
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{250, 3},
		{-5, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, CalculateLevel(tt.points), "points=%d", tt.points)
	}
}
