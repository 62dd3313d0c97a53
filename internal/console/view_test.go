package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tokenbook/internal/controller"
)

func TestNotifyWithoutColour(t *testing.T) {
	var out bytes.Buffer
	v := New(&out, strings.NewReader(""))

	v.Notify(controller.LevelWarning, "Bookings disabled for 2026-10-25")
	assert.Equal(t, "[WARNING] Bookings disabled for 2026-10-25\n", out.String())
}

func TestShowTokenResult(t *testing.T) {
	var out bytes.Buffer
	v := New(&out, strings.NewReader(""))

	v.ShowTokenResult(controller.TokenDetails{Name: "Asha", Date: "2026-10-20", Token: 3, Status: "CONFIRMED"})
	assert.Equal(t, "Name:   Asha\nDate:   2026-10-20\nToken:  3\nStatus: CONFIRMED\n", out.String())
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		v := New(&out, strings.NewReader(input))
		assert.Equal(t, want, v.Confirm("Sure?"), "input %q", input)
		assert.True(t, strings.HasPrefix(out.String(), "Sure? [y/N]: "))
	}
}

func TestReloadAndResetHooks(t *testing.T) {
	var out bytes.Buffer
	var reloaded, reset bool
	v := New(&out, strings.NewReader(""), WithReload(func() { reloaded = true }), WithReset(func() { reset = true }))

	v.Reload()
	v.ResetBookingForm()
	assert.True(t, reloaded)
	assert.True(t, reset)
	assert.Equal(t, "Refreshing...\n", out.String())
}

func TestSubmitProgress(t *testing.T) {
	var out bytes.Buffer
	v := New(&out, strings.NewReader(""))
	v.SetSubmitEnabled(false)
	v.SetSubmitEnabled(true)
	assert.Equal(t, "Booking...\n", out.String())
}
