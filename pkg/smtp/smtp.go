package smtp

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	smtpPkg "net/smtp"
	"os"
	"time"
)

// ItfSmtp sends the account e-mails.
type ItfSmtp interface {
	SendVerification(to string, name string, link string) error
	SendPasswordReset(to string, name string, link string) error
}

type sendFunc func(addr string, a smtpPkg.Auth, from string, to []string, msg []byte) error

type smtp struct {
	auth smtpPkg.Auth
	mail string
	addr string
	send sendFunc
}

// New reads SMTP_HOST (default smtp.gmail.com), SMTP_PORT (default 587),
// SMTP_MAIL and SMTP_PASSWORD.
func New() ItfSmtp {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")
	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{auth: auth, mail: mail, addr: host + ":" + port, send: smtpPkg.SendMail}
}

var (
	verifyTemplate = template.Must(template.New("verify").Parse(`<p>Hello {{.Name}},</p>
<p>Thanks for signing up to Fast Grapher. Confirm your e-mail address to start organizing your event photos:</p>
<p><a href="{{.Link}}">Verify my e-mail</a></p>
<p>The link is valid for 24 hours.</p>
<p>&copy; {{.Year}} Fast Grapher</p>`))

	resetTemplate = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>We received a request to reset your Fast Grapher password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link expires in one hour. If you did not ask for it you can ignore this e-mail.</p>
<p>&copy; {{.Year}} Fast Grapher</p>`))
)

type mailData struct {
	Name string
	Link string
	Year int
}

func (s *smtp) SendVerification(to string, name string, link string) error {
	return s.sendTemplate(to, "Fast Grapher - Verify Your Email", verifyTemplate, mailData{Name: name, Link: link, Year: time.Now().Year()})
}

func (s *smtp) SendPasswordReset(to string, name string, link string) error {
	return s.sendTemplate(to, "Fast Grapher - Reset Password", resetTemplate, mailData{Name: name, Link: link, Year: time.Now().Year()})
}

func (s *smtp) sendTemplate(to string, subject string, tmpl *template.Template, data mailData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}

	msg := buildMessage(s.mail, to, subject, body.String())
	if err := s.send(s.addr, s.auth, s.mail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", tmpl.Name(), err)
	}

	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(html)
	return b.Bytes()
}
