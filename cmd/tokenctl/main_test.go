package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func backend(t *testing.T, hits *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits = append(*hits, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/book":
			io.WriteString(w, `{"success":true,"token":2,"date":"2026-10-20"}`)
		case "/api/check-token":
			io.WriteString(w, `{"found":true,"name":"Asha","date":"2026-10-20","token":2,"status":"confirmed"}`)
		case "/api/admin/close-today":
			io.WriteString(w, `{"message":"Clinic closed for today. 1 booking(s) cancelled."}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunBook(t *testing.T) {
	var hits []string
	srv := backend(t, &hits)
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "book", "-name", "Asha", "-phone", "9876543210", "-date", "2026-10-20"},
		strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "[SUCCESS] Token #2 booked for 2026-10-20")
	assert.Equal(t, []string{"/api/book"}, hits)
}

func TestRunCheck(t *testing.T) {
	var hits []string
	srv := backend(t, &hits)
	var out bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "check", "-phone", "9876543210"}, strings.NewReader(""), &out, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Status: CONFIRMED")
}

func TestRunCloseTodayDeclined(t *testing.T) {
	var hits []string
	srv := backend(t, &hits)
	var out bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "close-today"}, strings.NewReader("n\n"), &out, &out)
	assert.Equal(t, 0, code)
	assert.Empty(t, hits)
	assert.Contains(t, out.String(), "Cancelled.")
}

func TestRunCloseTodayConfirmed(t *testing.T) {
	var hits []string
	srv := backend(t, &hits)
	var out bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "-token", "t", "close-today"}, strings.NewReader("y\n"), &out, &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"/api/admin/close-today"}, hits)
	assert.Contains(t, out.String(), "[ERROR] Clinic closed for today. 1 booking(s) cancelled.")
	assert.Contains(t, out.String(), "Refreshing...")
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, strings.NewReader(""), &out, &out))
	assert.Equal(t, 2, run(context.Background(), nil, strings.NewReader(""), &out, &out))
}

func TestRunTransportFailureExitCode(t *testing.T) {
	var hits []string
	srv := backend(t, &hits)
	var out bytes.Buffer

	code := run(context.Background(), []string{"-url", srv.URL, "disable-date", "-date", "2026-10-25"}, strings.NewReader(""), &out, &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "[ERROR] Could not disable the date. Please try again.")
}
