package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPointNamesRoundTrip tests the name/ID mapping both ways.
func TestPointNamesRoundTrip(t *testing.T) {
	t.Parallel()

	names := PointNames()
	require.Len(t, names, int(NumPoints))

	for _, name := range names {
		id, ok := ParsePoint(name)
		require.True(t, ok, name)
		assert.Equal(t, name, id.String())
	}

	_, ok := ParsePoint("left_eyebrow")
	assert.False(t, ok)
}

// TestPointMap tests presence tracking in the fixed-size map.
func TestPointMap(t *testing.T) {
	t.Parallel()

	t.Run("zero value is empty", func(t *testing.T) {
		t.Parallel()
		var m PointMap
		assert.True(t, m.Empty())
		assert.Equal(t, 0, m.Len())
		assert.Empty(t, m.Points())
	})

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()
		var m PointMap
		m.Set(LeftWrist, Landmark{X: 10, Y: 20, Visibility: 0.9})

		lm, ok := m.Get(LeftWrist)
		require.True(t, ok)
		assert.Equal(t, 10.0, lm.X)
		assert.Equal(t, 20.0, lm.Y)

		_, ok = m.Get(RightWrist)
		assert.False(t, ok)
		assert.True(t, m.Has(LeftWrist))
		assert.False(t, m.Has(RightWrist))
	})

	t.Run("origin landmark is still present", func(t *testing.T) {
		t.Parallel()
		var m PointMap
		m.Set(Nose, Landmark{})

		assert.True(t, m.Has(Nose))
		assert.Equal(t, 1, m.Len())
	})

	t.Run("set replaces without double counting", func(t *testing.T) {
		t.Parallel()
		var m PointMap
		m.Set(LeftHip, Landmark{X: 1})
		m.Set(LeftHip, Landmark{X: 2})

		assert.Equal(t, 1, m.Len())
		lm, _ := m.Get(LeftHip)
		assert.Equal(t, 2.0, lm.X)
	})

	t.Run("points come back in vocabulary order", func(t *testing.T) {
		t.Parallel()
		var m PointMap
		m.Set(RightHeel, Landmark{})
		m.Set(Nose, Landmark{})
		m.Set(LeftKnee, Landmark{})

		assert.Equal(t, []PointID{Nose, LeftKnee, RightHeel}, m.Points())
	})
}

// TestKeyPoints tests that the key extremity set stays inside the
// vocabulary.
func TestKeyPoints(t *testing.T) {
	t.Parallel()

	for _, id := range KeyPoints() {
		assert.Less(t, id, NumPoints)
	}
	assert.Contains(t, KeyPoints(), LeftWrist)
	assert.Contains(t, KeyPoints(), RightAnkle)
}
