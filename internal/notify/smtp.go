package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig contains mail delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPNotifier mails liveness alerts to the operator.
type SMTPNotifier struct {
	cfg SMTPConfig
	// send is swappable for tests; defaults to dialing the relay per event.
	send func(m *gomail.Message) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPNotifier{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

func (n *SMTPNotifier) Notify(_ context.Context, ev Event) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To...)
	m.SetHeader("Subject", fmt.Sprintf("[clusterhead] node %s lost (%s)", ev.SNID, ev.ID))
	m.SetBody("text/plain", fmt.Sprintf(
		"Node %s has not sent a message since %s (idle %s).\n"+
			"Its history has been purged; it will be treated as a new node on reappearance.\n",
		ev.SNID, ev.ArmedAt.Format("2006-01-02 15:04:05 MST"), ev.Idle))

	if err := n.send(m); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}
