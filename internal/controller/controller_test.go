package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenbook/internal/client"
)

type notice struct {
	Level   Level
	Message string
}

// recordingView logs every call in order.
type recordingView struct {
	mu       sync.Mutex
	events   []string
	notices  []notice
	result   *TokenDetails
	visible  bool
	enabled  bool
	resets   int
	reloads  int
	confirm  bool
	prompted []string
}

func newRecordingView() *recordingView { return &recordingView{enabled: true} }

func (v *recordingView) log(e string) { v.events = append(v.events, e) }

func (v *recordingView) Notify(level Level, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, notice{level, message})
	v.log("notify:" + level.String())
}

func (v *recordingView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = enabled
	if enabled {
		v.log("enable")
	} else {
		v.log("disable")
	}
}

func (v *recordingView) ResetBookingForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resets++
	v.log("reset")
}

func (v *recordingView) ShowTokenResult(d TokenDetails) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = &d
	v.visible = true
	v.log("show")
}

func (v *recordingView) HideTokenResult() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = false
	v.log("hide")
}

func (v *recordingView) Confirm(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prompted = append(v.prompted, prompt)
	v.log("confirm")
	return v.confirm
}

func (v *recordingView) Reload() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloads++
	v.log("reload")
}

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

type request struct {
	Path string
	Body map[string]interface{}
}

// fakeBackend answers each path with a fixed status and body and records requests.
type fakeBackend struct {
	mu       sync.Mutex
	requests []request
	replies  map[string]reply
	gate     chan struct{}
	arrived  chan struct{}
}

type reply struct {
	status int
	body   string
}

func newBackend(t *testing.T, replies map[string]reply) (*fakeBackend, *client.Client) {
	t.Helper()
	b := &fakeBackend{replies: replies}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, client.New(srv.URL)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	if len(raw) > 0 {
		json.Unmarshal(raw, &body)
	}
	b.mu.Lock()
	b.requests = append(b.requests, request{Path: r.URL.Path, Body: body})
	rep, ok := b.replies[r.URL.Path]
	gate, arrived := b.gate, b.arrived
	b.mu.Unlock()

	if arrived != nil {
		arrived <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	io.WriteString(w, rep.body)
}

func (b *fakeBackend) Requests() []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.requests...)
}

func TestSubmitBookingSuccess(t *testing.T) {
	backend, api := newBackend(t, map[string]reply{
		client.PathBook: {200, `{"success":true,"token":12,"date":"2026-10-20"}`},
	})
	view := newRecordingView()
	c := New(api, view)

	err := c.SubmitBooking(context.Background(), BookingForm{Name: "  Asha ", Phone: " 9876543210  ", Date: "2026-10-20"})
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, client.PathBook, reqs[0].Path)
	assert.Equal(t, map[string]interface{}{"name": "Asha", "phone": "9876543210", "date": "2026-10-20"}, reqs[0].Body)

	assert.Equal(t, []notice{{LevelSuccess, "Token #12 booked for 2026-10-20"}}, view.notices)
	assert.Equal(t, 1, view.resets)
	assert.Equal(t, []string{"disable", "notify:success", "reset", "enable"}, view.Events())
	assert.True(t, view.enabled)
}

func TestSubmitBookingServerFailure(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		client.PathBook: {409, `{"success":false,"message":"This phone number is already registered for a token."}`},
	})
	view := newRecordingView()

	err := New(api, view).SubmitBooking(context.Background(), BookingForm{Name: "Asha", Phone: "9876543210", Date: "2026-10-20"})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, []notice{{LevelError, "This phone number is already registered for a token."}}, view.notices)
	assert.Zero(t, view.resets, "form stays populated")
	assert.Equal(t, []string{"disable", "notify:error", "enable"}, view.Events())
}

func TestSubmitBookingTransportFailure(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		client.PathBook: {500, `internal`},
	})
	view := newRecordingView()

	err := New(api, view).SubmitBooking(context.Background(), BookingForm{Name: "Asha", Phone: "9876543210", Date: "2026-10-20"})
	var te *client.TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, []notice{{LevelError, msgBookingTransport}}, view.notices)
	assert.Zero(t, view.resets)
	assert.True(t, view.enabled)
}

func TestSubmitBookingBlocksDuplicateWhileInFlight(t *testing.T) {
	backend, api := newBackend(t, map[string]reply{
		client.PathBook: {200, `{"success":true,"token":1,"date":"2026-10-20"}`},
	})
	backend.mu.Lock()
	backend.gate = make(chan struct{})
	backend.arrived = make(chan struct{}, 1)
	backend.mu.Unlock()
	view := newRecordingView()
	c := New(api, view)
	form := BookingForm{Name: "Asha", Phone: "9876543210", Date: "2026-10-20"}

	done := make(chan error, 1)
	go func() { done <- c.SubmitBooking(context.Background(), form) }()

	select {
	case <-backend.arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first request never arrived")
	}
	assert.Equal(t, []string{"disable"}, view.Events())

	assert.ErrorIs(t, c.SubmitBooking(context.Background(), form), ErrSubmitInFlight)

	close(backend.gate)
	require.NoError(t, <-done)
	assert.Len(t, backend.Requests(), 1)
	assert.True(t, view.enabled)

	// the control is usable again once the first call finished
	backend.mu.Lock()
	backend.gate, backend.arrived = nil, nil
	backend.mu.Unlock()
	require.NoError(t, c.SubmitBooking(context.Background(), form))
	assert.Len(t, backend.Requests(), 2)
}

func TestCheckTokenFound(t *testing.T) {
	backend, api := newBackend(t, map[string]reply{
		client.PathCheckToken: {200, `{"found":true,"name":"Asha","date":"2026-10-20","token":3,"status":"confirmed"}`},
	})
	view := newRecordingView()

	require.NoError(t, New(api, view).CheckToken(context.Background(), " 9876543210 "))
	assert.Equal(t, map[string]interface{}{"phone": "9876543210"}, backend.Requests()[0].Body)
	require.NotNil(t, view.result)
	assert.Equal(t, TokenDetails{Name: "Asha", Date: "2026-10-20", Token: 3, Status: "CONFIRMED"}, *view.result)
	assert.True(t, view.visible)
	assert.Empty(t, view.notices)
}

func TestCheckTokenNotFound(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		client.PathCheckToken: {200, `{"found":false,"name":"stale"}`},
	})
	view := newRecordingView()
	view.visible = true

	require.NoError(t, New(api, view).CheckToken(context.Background(), "1111111111"))
	assert.False(t, view.visible)
	assert.Nil(t, view.result, "no fields populated")
	assert.Equal(t, []notice{{LevelInfo, msgNoBooking}}, view.notices)
	assert.Equal(t, []string{"hide", "notify:info"}, view.Events())
}

func TestCheckTokenTransportFailure(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		client.PathCheckToken: {400, `Phone is required`},
	})
	view := newRecordingView()

	assert.Error(t, New(api, view).CheckToken(context.Background(), ""))
	assert.Equal(t, []notice{{LevelError, msgCheckTransport}}, view.notices)
}

func TestDisableDate(t *testing.T) {
	cases := []struct {
		name   string
		reply  reply
		notice notice
		err    bool
	}{
		{"success", reply{200, `{"success":true,"message":"Bookings disabled for 2026-10-25"}`}, notice{LevelWarning, "Bookings disabled for 2026-10-25"}, false},
		{"rejected", reply{400, `{"success":false,"message":"Cannot disable a past date"}`}, notice{LevelError, "Cannot disable a past date"}, true},
		{"rejected without message", reply{200, `{"success":false}`}, notice{LevelError, msgDisableFailed}, true},
		{"transport", reply{502, `bad gateway`}, notice{LevelError, msgDisableTransport}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend, api := newBackend(t, map[string]reply{client.PathDisableDate: tc.reply})
			view := newRecordingView()

			err := New(api, view).DisableDate(context.Background(), "2026-10-25")
			assert.Equal(t, tc.err, err != nil)
			assert.Equal(t, []notice{tc.notice}, view.notices)
			assert.Equal(t, map[string]interface{}{"date": "2026-10-25"}, backend.Requests()[0].Body)
		})
	}
}

func TestCloseTodayDeclined(t *testing.T) {
	backend, api := newBackend(t, map[string]reply{
		client.PathCloseToday: {200, `{"message":"closed"}`},
	})
	view := newRecordingView()
	view.confirm = false

	assert.ErrorIs(t, New(api, view).CloseToday(context.Background()), ErrNotConfirmed)
	assert.Empty(t, backend.Requests())
	assert.Equal(t, []string{CloseTodayPrompt}, view.prompted)
	assert.Zero(t, view.reloads)
}

func TestCloseTodayConfirmed(t *testing.T) {
	backend, api := newBackend(t, map[string]reply{
		client.PathCloseToday: {200, `{"message":"Clinic closed for today. 3 booking(s) cancelled."}`},
	})
	view := newRecordingView()
	view.confirm = true

	require.NoError(t, New(api, view).CloseToday(context.Background()))
	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, client.PathCloseToday, reqs[0].Path)
	assert.Equal(t, []notice{{LevelError, "Clinic closed for today. 3 booking(s) cancelled."}}, view.notices)
	assert.Equal(t, []string{"confirm", "notify:error", "reload"}, view.Events())
}

func TestCloseTodayTransportFailureDoesNotReload(t *testing.T) {
	_, api := newBackend(t, map[string]reply{
		client.PathCloseToday: {500, `boom`},
	})
	view := newRecordingView()
	view.confirm = true

	assert.Error(t, New(api, view).CloseToday(context.Background()))
	assert.Equal(t, []notice{{LevelError, msgCloseTransport}}, view.notices)
	assert.Zero(t, view.reloads)
}

func TestMinBookingDate(t *testing.T) {
	assert.Equal(t, "2026-10-19", MinBookingDate(time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "level(9)", Level(9).String())
}
