package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"tokenbook/internal/client"
	"tokenbook/internal/config"
	"tokenbook/internal/console"
	"tokenbook/internal/controller"
)

const usage = `usage: tokenctl [-url URL] [-token TOKEN] [-timeout D] <command> [flags]

commands:
  book          -name NAME -phone PHONE [-date YYYY-MM-DD]
  check         -phone PHONE
  login         -username USER -password PASS
  disable-date  -date YYYY-MM-DD
  close-today
`

func main() {
	godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("tokenctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := global.String("url", config.String("TOKENBOOK_URL", "http://localhost:8080"), "booking server URL")
	token := global.String("token", os.Getenv("TOKENBOOK_ADMIN_TOKEN"), "admin token for admin commands")
	timeout := global.Duration("timeout", 0, "per-request timeout (0 means none)")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	api := client.New(*baseURL,
		client.WithHTTPClient(&http.Client{Timeout: *timeout}),
		client.WithAdminToken(*token),
	)
	view := console.New(stdout, stdin)
	ctl := controller.New(api, view)

	cmd, rest := global.Arg(0), global.Args()[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var err error
	switch cmd {
	case "book":
		name := fs.String("name", "", "patient name")
		phone := fs.String("phone", "", "10-digit phone number")
		date := fs.String("date", controller.MinBookingDate(time.Now()), "booking date")
		if fs.Parse(rest) != nil {
			return 2
		}
		err = ctl.SubmitBooking(ctx, controller.BookingForm{Name: *name, Phone: *phone, Date: *date})
	case "check":
		phone := fs.String("phone", "", "phone used for the booking")
		if fs.Parse(rest) != nil {
			return 2
		}
		err = ctl.CheckToken(ctx, *phone)
	case "login":
		username := fs.String("username", config.String("ADMIN_USERNAME", "admin"), "admin username")
		password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
		if fs.Parse(rest) != nil {
			return 2
		}
		var tok string
		tok, err = api.Login(ctx, *username, *password)
		if err == nil {
			fmt.Fprintln(stdout, tok)
		} else {
			view.Notify(controller.LevelError, "Login failed.")
		}
	case "disable-date":
		date := fs.String("date", "", "date to block")
		if fs.Parse(rest) != nil {
			return 2
		}
		err = ctl.DisableDate(ctx, *date)
	case "close-today":
		if fs.Parse(rest) != nil {
			return 2
		}
		err = ctl.CloseToday(ctx)
		if errors.Is(err, controller.ErrNotConfirmed) {
			fmt.Fprintln(stdout, "Cancelled.")
			return 0
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	if err != nil {
		return 1
	}
	return 0
}
