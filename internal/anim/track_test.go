package anim

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-rig/pkg/math"
)

var policies = []Extrapolation{ExtrapolateNone, ExtrapolateNearest, ExtrapolateLinear, ExtrapolateRepeat}

func vecTrack(pre, post Extrapolation) *Track[math.Vec3] {
	return NewVec3Track([]Key[math.Vec3]{
		{Time: 2, Value: math.Vec3{X: 4}},
		{Time: 0, Value: math.Vec3{X: 0}},
		{Time: 1, Value: math.Vec3{X: 1, Y: 1}},
	}, pre, post)
}

func TestTrack_SortsKeys(t *testing.T) {
	tr := vecTrack(ExtrapolateNone, ExtrapolateNone)
	require.Equal(t, 3, tr.Len())
	for i, want := range []float32{0, 1, 2} {
		assert.Equal(t, want, tr.Key(i).Time)
	}
	first, last := tr.Span()
	assert.Equal(t, float32(0), first)
	assert.Equal(t, float32(2), last)
}

func TestTrack_ExactAtKeys(t *testing.T) {
	for _, pre := range policies {
		for _, post := range policies {
			tr := vecTrack(pre, post)
			for i := 0; i < tr.Len(); i++ {
				k := tr.Key(i)
				got, ok, err := tr.Sample(k.Time)
				require.NoError(t, err, "pre=%s post=%s", pre, post)
				assert.True(t, ok)
				assert.Equal(t, k.Value, got, "pre=%s post=%s key %d", pre, post, i)
			}
		}
	}
}

func TestTrack_Interpolates(t *testing.T) {
	tr := vecTrack(ExtrapolateNone, ExtrapolateNone)

	tests := []struct {
		time float32
		want math.Vec3
	}{
		{0.5, math.Vec3{X: 0.5, Y: 0.5}},
		{0.25, math.Vec3{X: 0.25, Y: 0.25}},
		{1.5, math.Vec3{X: 2.5, Y: 0.5}},
	}
	for _, tt := range tests {
		got, ok, err := tr.Sample(tt.time)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, got.ApproxEqual(tt.want, 1e-6), "t=%v got %v want %v", tt.time, got, tt.want)
	}
}

func TestTrack_QuatSlerp(t *testing.T) {
	q0 := math.QuatIdentity()
	q1 := math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/2))
	tr := NewQuatTrack([]Key[math.Quat]{{Time: 0, Value: q0}, {Time: 4, Value: q1}}, ExtrapolateNearest, ExtrapolateNearest)

	got, ok, err := tr.Sample(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.ApproxEqual(q0.Slerp(q1, 0.25), 1e-6))
	assert.True(t, got.ApproxEqual(math.QuatFromAxisAngle(math.Vec3{Y: 1}, float32(gomath.Pi/8)), 1e-4))
}

func TestTrack_Extrapolation(t *testing.T) {
	tests := []struct {
		name    string
		pre     Extrapolation
		post    Extrapolation
		time    float32
		want    math.Vec3
		wantOK  bool
		wantErr error
	}{
		{"pre none", ExtrapolateNone, ExtrapolateNone, -1, math.Vec3{}, false, nil},
		{"pre nearest", ExtrapolateNearest, ExtrapolateNone, -1, math.Vec3{X: 0}, true, nil},
		{"pre linear", ExtrapolateLinear, ExtrapolateNone, -1, math.Vec3{}, false, ErrNotImplemented},
		{"pre repeat", ExtrapolateRepeat, ExtrapolateNone, -1, math.Vec3{}, false, ErrInvalidState},
		{"post none", ExtrapolateNone, ExtrapolateNone, 3, math.Vec3{}, false, nil},
		{"post nearest", ExtrapolateNone, ExtrapolateNearest, 3, math.Vec3{X: 4}, true, nil},
		{"post linear", ExtrapolateNone, ExtrapolateLinear, 3, math.Vec3{}, false, ErrNotImplemented},
		{"post repeat mid", ExtrapolateNone, ExtrapolateRepeat, 2.5, math.Vec3{X: 0.5, Y: 0.5}, true, nil},
		{"post repeat on key", ExtrapolateNone, ExtrapolateRepeat, 3, math.Vec3{X: 1, Y: 1}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := vecTrack(tt.pre, tt.post).Sample(tt.time)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, got.ApproxEqual(tt.want, 1e-6), "got %v want %v", got, tt.want)
		})
	}
}

func TestTrack_RepeatWrapsFromFirstKey(t *testing.T) {
	// Keys start at 1, so the loop restarts at 1 rather than 0.
	tr := NewVec3Track([]Key[math.Vec3]{
		{Time: 1, Value: math.Vec3{X: 10}},
		{Time: 3, Value: math.Vec3{X: 30}},
	}, ExtrapolateNearest, ExtrapolateRepeat)

	first, last := tr.Span()
	duration := last - first

	atFirst, _, err := tr.Sample(first)
	require.NoError(t, err)
	wrapped, ok, err := tr.Sample(last + duration)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, atFirst, wrapped)

	got, _, err := tr.Sample(last + 1)
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(math.Vec3{X: 20}, 1e-5), "got %v", got)
}

func TestTrack_Degenerate(t *testing.T) {
	empty := NewVec3Track(nil, ExtrapolateNearest, ExtrapolateNearest)
	_, ok, err := empty.Sample(1)
	require.NoError(t, err)
	assert.False(t, ok)

	single := NewVec3Track([]Key[math.Vec3]{{Time: 2, Value: math.Vec3{Z: 7}}}, ExtrapolateNearest, ExtrapolateRepeat)
	for _, tm := range []float32{0, 2, 9} {
		got, ok, err := single.Sample(tm)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, math.Vec3{Z: 7}, got)
	}

	loop := NewVec3Track([]Key[math.Vec3]{
		{Time: 0, Value: math.Vec3{}},
		{Time: 1, Value: math.Vec3{X: 10}},
	}, ExtrapolateNearest, ExtrapolateRepeat)
	for _, tm := range []float32{float32(gomath.Inf(1)), float32(gomath.NaN())} {
		got, ok, err := loop.Sample(tm)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, gomath.IsNaN(float64(got.X)), "got %v at %v", got, tm)
	}
}

func TestParseExtrapolation(t *testing.T) {
	for _, e := range policies {
		got, err := ParseExtrapolation(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	got, err := ParseExtrapolation("")
	require.NoError(t, err)
	assert.Equal(t, ExtrapolateNone, got)

	_, err = ParseExtrapolation("bounce")
	assert.Error(t, err)
}
