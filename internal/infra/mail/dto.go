package mail

import "gopkg.in/gomail.v2"

// LeadAlert is the data rendered into the hot lead email.
type LeadAlert struct {
	LeadID      string
	Name        string
	Email       string
	Phone       string
	Route       string
	TravelDates string
	Score       float64
	Reasoning   string
	Summary     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	dialer dialer
}
