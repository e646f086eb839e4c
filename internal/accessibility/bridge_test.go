// SPDX-License-Identifier: Apache-2.0
package accessibility

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	gerrors "github.com/provide-io/gamegate/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	outputs map[string]string
	calls   []string
	err     error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.outputs[line]), nil
}

func bridge(t *testing.T, goos, mode, speak string, r *fakeRunner) *CommandBridge {
	t.Helper()
	b, err := New(mode, speak, nil)
	require.NoError(t, err)
	b.goos = goos
	b.run = r.run
	return b
}

func TestScreenReaderEnabled(t *testing.T) {
	const (
		a11y  = "settings get secure accessibility_enabled"
		touch = "settings get secure touch_exploration_enabled"
		gnome = "gsettings get org.gnome.desktop.a11y.applications screen-reader-enabled"
	)
	tests := []struct {
		name    string
		goos    string
		mode    string
		outputs map[string]string
		want    bool
	}{
		{"android both on", "android", "auto", map[string]string{a11y: "1\n", touch: "1\n"}, true},
		{"android no touch exploration", "android", "auto", map[string]string{a11y: "1\n", touch: "0\n"}, false},
		{"android disabled", "android", "auto", map[string]string{a11y: "0\n"}, false},
		{"gnome on", "linux", "auto", map[string]string{gnome: "true\n"}, true},
		{"gnome off", "linux", "auto", map[string]string{gnome: "false\n"}, false},
		{"forced on", "windows", "on", nil, true},
		{"forced off", "linux", "off", map[string]string{gnome: "true\n"}, false},
		{"windows auto", "windows", "auto", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bridge(t, tt.goos, tt.mode, "", &fakeRunner{outputs: tt.outputs})
			assert.Equal(t, tt.want, b.ScreenReaderEnabled())
		})
	}
}

func TestScreenReaderQueryFailure(t *testing.T) {
	b := bridge(t, "linux", "auto", "", &fakeRunner{err: errors.New("no gsettings")})
	assert.False(t, b.ScreenReaderEnabled())
}

func TestSpeak(t *testing.T) {
	r := &fakeRunner{}
	b := bridge(t, "linux", "auto", "", r)
	require.NoError(t, b.Speak("  Town portal  "))
	assert.Equal(t, []string{"spd-say --wait Town portal"}, r.calls)

	r = &fakeRunner{}
	b = bridge(t, "android", "auto", `espeak -v "en-us"`, r)
	require.NoError(t, b.Speak("Hello"))
	assert.Equal(t, []string{"espeak -v en-us Hello"}, r.calls)

	require.NoError(t, b.Speak("   "))
	assert.Len(t, r.calls, 1, "blank text is not spoken")
}

func TestSpeakUnavailable(t *testing.T) {
	b := bridge(t, "windows", "auto", "", &fakeRunner{})
	assert.ErrorIs(t, b.Speak("hi"), gerrors.ErrSpeechUnavailable)

	b = bridge(t, "linux", "auto", "", &fakeRunner{err: &exec.Error{Name: "spd-say", Err: exec.ErrNotFound}})
	assert.ErrorIs(t, b.Speak("hi"), gerrors.ErrSpeechUnavailable)

	b = bridge(t, "linux", "auto", "", &fakeRunner{err: errors.New("exit status 1")})
	err := b.Speak("hi")
	require.Error(t, err)
	assert.NotErrorIs(t, err, gerrors.ErrSpeechUnavailable)
}

func TestNewRejectsBadCommand(t *testing.T) {
	_, err := New("auto", `say "`, nil)
	assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
}
