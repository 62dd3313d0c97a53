// Package controller binds the booking page actions to the booking API and
// renders their outcome into a View.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"tokenbook/internal/entities"
	"tokenbook/internal/utils"
)

// Level is the severity a notice is shown with.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// TokenDetails is what the result panel shows for a found booking.
type TokenDetails struct {
	Name   string
	Date   string
	Token  int
	Status string
}

// View is the visible state the controller updates. Implementations must be
// safe for use from multiple goroutines if actions run concurrently.
type View interface {
	Notify(level Level, message string)
	SetSubmitEnabled(enabled bool)
	ResetBookingForm()
	ShowTokenResult(d TokenDetails)
	HideTokenResult()
	Confirm(prompt string) bool
	Reload()
}

// API is the booking backend. *client.Client satisfies it.
type API interface {
	Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error)
	CheckToken(ctx context.Context, req entities.TokenCheckRequest) (*entities.TokenCheckResponse, error)
	DisableDate(ctx context.Context, req entities.DisableDateRequest) (*entities.DisableDateResponse, error)
	CloseToday(ctx context.Context) (*entities.CloseTodayResponse, error)
}

// BookingForm holds the raw booking inputs.
type BookingForm struct {
	Name  string
	Phone string
	Date  string
}

const (
	msgBookingTransport = "Something went wrong. Please try again."
	msgBookingFailed    = "Booking failed."
	msgNoBooking        = "No booking found with this phone number."
	msgCheckTransport   = "Error checking token."
	msgDisableFailed    = "Could not disable the date."
	msgDisableTransport = "Could not disable the date. Please try again."
	msgCloseTransport   = "Could not close today. Please try again."

	// CloseTodayPrompt is the confirmation asked before closing the day.
	CloseTodayPrompt = "Are you sure? This will cancel ALL of today's tokens!"
)

var (
	// ErrSubmitInFlight is returned when a booking is submitted while the
	// previous one has not completed. No request is sent.
	ErrSubmitInFlight = errors.New("booking submission already in progress")
	// ErrNotConfirmed is returned when the close-today prompt is declined.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrRejected wraps a failure reported by the server.
	ErrRejected = errors.New("rejected by server")
)

type Controller struct {
	api      API
	view     View
	inFlight atomic.Bool
}

func New(api API, view View) *Controller {
	return &Controller{api: api, view: view}
}

// MinBookingDate is the earliest date the booking date input should accept.
// The value is only an input constraint; SubmitBooking does not re-check it.
func MinBookingDate(now time.Time) string {
	return now.Format(utils.DateLayout)
}

// SubmitBooking sends the booking form. The submit control is disabled
// until the call completes, whatever the outcome.
func (c *Controller) SubmitBooking(ctx context.Context, form BookingForm) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrSubmitInFlight
	}
	c.view.SetSubmitEnabled(false)
	defer func() {
		c.view.SetSubmitEnabled(true)
		c.inFlight.Store(false)
	}()

	res, err := c.api.Book(ctx, entities.BookingRequest{
		Name:  strings.TrimSpace(form.Name),
		Phone: strings.TrimSpace(form.Phone),
		Date:  form.Date,
	})
	if err != nil {
		c.view.Notify(LevelError, msgBookingTransport)
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = msgBookingFailed
		}
		c.view.Notify(LevelError, msg)
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	c.view.Notify(LevelSuccess, fmt.Sprintf("Token #%d booked for %s", res.Token, res.Date))
	c.view.ResetBookingForm()
	return nil
}

// CheckToken looks up the booking for phone and shows or hides the result panel.
func (c *Controller) CheckToken(ctx context.Context, phone string) error {
	res, err := c.api.CheckToken(ctx, entities.TokenCheckRequest{Phone: strings.TrimSpace(phone)})
	if err != nil {
		c.view.Notify(LevelError, msgCheckTransport)
		return err
	}
	if !res.Found {
		c.view.HideTokenResult()
		c.view.Notify(LevelInfo, msgNoBooking)
		return nil
	}

	c.view.ShowTokenResult(TokenDetails{
		Name:   res.Name,
		Date:   res.Date,
		Token:  res.Token,
		Status: strings.ToUpper(res.Status),
	})
	return nil
}

// DisableDate asks the server to block date for new bookings.
func (c *Controller) DisableDate(ctx context.Context, date string) error {
	res, err := c.api.DisableDate(ctx, entities.DisableDateRequest{Date: date})
	if err != nil {
		c.view.Notify(LevelError, msgDisableTransport)
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = msgDisableFailed
		}
		c.view.Notify(LevelError, msg)
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	c.view.Notify(LevelWarning, res.Message)
	return nil
}

// CloseToday cancels all of today's bookings after the user confirms, then
// reloads the view. Declining sends nothing.
func (c *Controller) CloseToday(ctx context.Context) error {
	if !c.view.Confirm(CloseTodayPrompt) {
		return ErrNotConfirmed
	}

	res, err := c.api.CloseToday(ctx)
	if err != nil {
		c.view.Notify(LevelError, msgCloseTransport)
		return err
	}

	c.view.Notify(LevelError, res.Message)
	c.view.Reload()
	return nil
}
