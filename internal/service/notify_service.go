package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"tokenbook/internal/db"
	"tokenbook/internal/utils"
)

type SenderConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	CountryCode      string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AdminEmail        string
}

// SenderService sends SMS through Twilio and admin mail through SendGrid.
// Every send runs on its own goroutine and only logs failures.
type SenderService struct {
	cfg      SenderConfig
	sendSMS  func(to, body string) error
	sendMail func(subject, plain, html string) error
}

func NewSenderService(cfg SenderConfig) *SenderService {
	s := &SenderService{cfg: cfg}
	s.sendSMS = s.twilioSMS
	s.sendMail = s.sendGridMail
	return s
}

func (s *SenderService) BookingConfirmed(b db.Booking) {
	s.smsAsync(b.Phone, bookingConfirmedMessage(b))
}

func (s *SenderService) BookingCancelled(b db.Booking) {
	s.smsAsync(b.Phone, bookingCancelledMessage(b))
}

func (s *SenderService) DayClosed(date string, cancelled []db.Booking) {
	if s.cfg.AdminEmail == "" {
		return
	}
	subject, plain, html := closureDigest(date, cancelled)
	go func() {
		if err := s.sendMail(subject, plain, html); err != nil {
			log.Printf("ALERT: closure digest for %s not sent: %v", date, err)
		}
	}()
}

func (s *SenderService) smsAsync(phone, body string) {
	to := utils.E164(phone, s.cfg.CountryCode)
	go func() {
		if err := s.sendSMS(to, body); err != nil {
			log.Printf("ALERT: SMS to %s failed: %v", to, err)
		}
	}()
}

func bookingConfirmedMessage(b db.Booking) string {
	return fmt.Sprintf("Hello %s, your token #%d is confirmed for %s.",
		b.PatientName, b.TokenNumber, b.BookingDate.Format(utils.DateLayout))
}

func bookingCancelledMessage(b db.Booking) string {
	return fmt.Sprintf("Hello %s, the clinic is closed on %s. Your token #%d has been cancelled. Please book another day.",
		b.PatientName, b.BookingDate.Format(utils.DateLayout), b.TokenNumber)
}

func closureDigest(date string, cancelled []db.Booking) (subject, plain, html string) {
	subject = fmt.Sprintf("Clinic closed on %s: %d booking(s) cancelled", date, len(cancelled))

	var pb, hb strings.Builder
	fmt.Fprintf(&pb, "The clinic was closed for %s.\n\n", date)
	hb.WriteString("<p>The clinic was closed for " + date + ".</p><ul>")
	for _, b := range cancelled {
		fmt.Fprintf(&pb, "Token #%d - %s (%s)\n", b.TokenNumber, b.PatientName, b.Phone)
		fmt.Fprintf(&hb, "<li>Token #%d - %s (%s)</li>", b.TokenNumber, b.PatientName, b.Phone)
	}
	hb.WriteString("</ul>")
	if len(cancelled) == 0 {
		pb.WriteString("No bookings were affected.\n")
	}
	return subject, pb.String(), hb.String()
}

func (s *SenderService) twilioSMS(to, body string) error {
	if s.cfg.TwilioAccountSID == "" || s.cfg.TwilioAuthToken == "" || s.cfg.TwilioFromNumber == "" {
		return fmt.Errorf("twilio credentials not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   s.cfg.TwilioAccountSID,
		Password:   s.cfg.TwilioAuthToken,
		AccountSid: s.cfg.TwilioAccountSID,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(body)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("SMS sent to %s, SID %s", to, *resp.Sid)
	}
	return nil
}

func (s *SenderService) sendGridMail(subject, plain, html string) error {
	if s.cfg.SendGridAPIKey == "" || s.cfg.SendGridFromEmail == "" {
		return fmt.Errorf("sendgrid not configured")
	}

	from := mail.NewEmail(s.cfg.SendGridFromName, s.cfg.SendGridFromEmail)
	to := mail.NewEmail("Clinic admin", s.cfg.AdminEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := sendgrid.NewSendClient(s.cfg.SendGridAPIKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Printf("Mail sent to %s (%s)", s.cfg.AdminEmail, subject)
	return nil
}
