// SPDX-License-Identifier: Apache-2.0
package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	width, height int
	calls         int
}

func (r *recorder) SetFixedSize(w, h int) {
	r.width, r.height = w, h
	r.calls++
}

func fixed(f Frame) FrameSource {
	return FrameSourceFunc(func() (Frame, bool) { return f, true })
}

func TestNeedsWorkaround(t *testing.T) {
	assert.False(t, NeedsWorkaround(24, 0))
	assert.True(t, NeedsWorkaround(25, 0))
	assert.True(t, NeedsWorkaround(34, 25))
	assert.False(t, NeedsWorkaround(29, 30))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		mode string
		host int
		want bool
	}{
		{"auto", 24, false},
		{"", 30, true},
		{"on", 10, true},
		{"OFF", 40, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := Decide(tt.mode, tt.host, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := Decide("sometimes", 30, 0)
	assert.Error(t, err)
}

func TestTrackerFollowsVisibleFrame(t *testing.T) {
	frame := Frame{Width: 1080, Height: 2340}
	r := &recorder{}
	tr := NewTracker(FrameSourceFunc(func() (Frame, bool) { return frame, true }), func() Surface { return r }, nil)
	events := NewStream()

	assert.Equal(t, Unarmed, tr.State())
	events.Publish()
	assert.Equal(t, 0, r.calls, "unarmed tracker ignores layout changes")

	require.True(t, tr.Arm(events))
	assert.False(t, tr.Arm(events), "arming happens once")
	assert.Equal(t, Armed, tr.State())
	assert.Equal(t, 1, events.Len())

	events.Publish()
	assert.Equal(t, 1080, r.width)
	assert.Equal(t, 2340, r.height)

	frame = Frame{Width: 1080, Height: 1400}
	events.Publish()
	assert.Equal(t, 1400, r.height)
	assert.Equal(t, frame, tr.Applied())
}

func TestTrackerIdempotent(t *testing.T) {
	once := &recorder{}
	twice := &recorder{}
	frame := Frame{Width: 800, Height: 600}

	a := NewTracker(fixed(frame), func() Surface { return once }, nil)
	b := NewTracker(fixed(frame), func() Surface { return twice }, nil)
	a.OnLayout()
	b.OnLayout()
	b.OnLayout()

	assert.Equal(t, once.width, twice.width)
	assert.Equal(t, once.height, twice.height)
	assert.Equal(t, a.Applied(), b.Applied())
}

func TestTrackerWithoutSurface(t *testing.T) {
	var r *recorder
	tr := NewTracker(fixed(Frame{Width: 1, Height: 1}), func() Surface {
		if r == nil {
			return nil
		}
		return r
	}, nil)
	events := NewStream()
	tr.Arm(events)

	assert.NotPanics(t, events.Publish)
	assert.Equal(t, Frame{}, tr.Applied())

	r = &recorder{}
	events.Publish()
	assert.Equal(t, 1, r.calls)
}

func TestTrackerUnknownFrame(t *testing.T) {
	r := &recorder{}
	tr := NewTracker(FrameSourceFunc(func() (Frame, bool) { return Frame{}, false }), func() Surface { return r }, nil)
	tr.OnLayout()
	assert.Equal(t, 0, r.calls)
}

func TestTrackerNilCollaborators(t *testing.T) {
	r := &recorder{}
	noFrames := NewTracker(nil, func() Surface { return r }, nil)
	noSurface := NewTracker(fixed(Frame{Width: 3, Height: 4}), nil, nil)

	assert.NotPanics(t, noFrames.OnLayout)
	assert.NotPanics(t, noSurface.OnLayout)
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, Frame{}, noSurface.Applied())

	assert.False(t, noSurface.Arm(nil))
	assert.Equal(t, Unarmed, noSurface.State())
	assert.NotPanics(t, noSurface.Release)

	events := NewStream()
	assert.True(t, noSurface.Arm(events), "a real stream still arms after a nil one")
	assert.Equal(t, 1, events.Len())
}

func TestTrackerRelease(t *testing.T) {
	r := &recorder{}
	tr := NewTracker(fixed(Frame{Width: 2, Height: 2}), func() Surface { return r }, nil)
	events := NewStream()
	tr.Arm(events)

	tr.Release()
	tr.Release()
	assert.Equal(t, 0, events.Len())
	events.Publish()
	assert.Equal(t, 0, r.calls)
	assert.Equal(t, Armed, tr.State())
}

func TestStreamOrderAndUnsubscribe(t *testing.T) {
	s := NewStream()
	var got []int
	s.Subscribe(func() { got = append(got, 1) })
	unsub := s.Subscribe(func() { got = append(got, 2) })
	s.Subscribe(func() { got = append(got, 3) })

	s.Publish()
	unsub()
	unsub()
	s.Publish()
	assert.Equal(t, []int{1, 2, 3, 1, 3}, got)
}
