package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPでパスワード再設定メールを送る。
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// DI
func NewMailer(host string, port int, username string, password string, from string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendPasswordReset は再設定リンク入りのメールを送信する。
func (m *Mailer) SendPasswordReset(to string, resetURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "[ExpNote] Password Reset")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h2>ExpNote Password Reset</h2>
		<p>You are receiving this email because a password reset was requested for your account.</p>
		<p>Click the link below to reset your password (valid for 1 hour):</p>
		<p><a href="%s">%s</a></p>
		<p>If you did not request a password reset, please ignore this email.</p>
	`, resetURL, resetURL))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
