package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

// SendResetCodeEmail mails the password reset code to email.
func (m *SMTPMailer) SendResetCodeEmail(email, code string) error {
	if m.dialer.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	return m.dialer.DialAndSend(BuildResetCodeMessage(m.from, email, code))
}

// BuildResetCodeMessage renders the plain text and HTML reset email.
func BuildResetCodeMessage(from, to, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "MediChain password reset code")
	msg.SetBody("text/plain", "Your password reset code is: "+code+"\nThe code expires in 15 minutes.")
	msg.AddAlternative("text/html", `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4;">
	<div style="background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px;">
		<h1 style="color: #333333;">Password Reset Code</h1>
		<p>Your password reset code is:</p>
		<p style="font-weight: bold; color: #007bff;">`+code+`</p>
		<p>The code expires in 15 minutes. If you did not request a password reset, please ignore this email.</p>
	</div>
</body>
</html>`)
	return msg
}
