package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	storeName string
}

// NewMailer creates a Mailer. With an empty host the mailer is
// unconfigured: sends are logged and dropped instead of failing, which
// keeps local development working without an SMTP account.
func NewMailer(host string, port int, user, password, from, storeName string) *Mailer {
	m := &Mailer{from: from, storeName: storeName}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, user, password)
	}
	return m
}

// Send dispatches a single HTML email. Failures propagate to the
// caller; there is no retry and no fallback channel.
func (m *Mailer) Send(to, subject, html string) error {
	if m.dialer == nil {
		log.Printf("[Mailer] SMTP not configured, dropping mail to %s (%s)", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	return m.dialer.DialAndSend(msg)
}

// SendTwoFactorCode emails a login verification code.
func (m *Mailer) SendTwoFactorCode(to, userName, code string) error {
	subject := fmt.Sprintf("%s - Mã xác thực đăng nhập", m.storeName)
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto">
  <h2 style="color:#7c2d3a">%s</h2>
  <p>Xin chào <b>%s</b>,</p>
  <p>Mã xác thực đăng nhập của bạn là:</p>
  <p style="font-size:32px;letter-spacing:8px;font-weight:bold">%s</p>
  <p>Mã có hiệu lực trong 5 phút và chỉ dùng được một lần.</p>
  <p style="color:#888;font-size:12px">Nếu bạn không yêu cầu mã này, hãy bỏ qua email.</p>
</div>`, m.storeName, userName, code)

	return m.Send(to, subject, html)
}

// SendResetPasswordLink emails a password reset link.
func (m *Mailer) SendResetPasswordLink(to, userName, resetLink string) error {
	subject := fmt.Sprintf("%s - Đặt lại mật khẩu", m.storeName)
	html := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:560px;margin:0 auto">
  <h2 style="color:#7c2d3a">%s</h2>
  <p>Xin chào <b>%s</b>,</p>
  <p>Bạn đã yêu cầu đặt lại mật khẩu. Nhấn vào liên kết dưới đây để tiếp tục:</p>
  <p><a href="%s" style="background:#7c2d3a;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none">Đặt lại mật khẩu</a></p>
  <p>Liên kết có hiệu lực trong 5 phút và chỉ dùng được một lần.</p>
  <p style="color:#888;font-size:12px">Nếu bạn không yêu cầu, hãy bỏ qua email này.</p>
</div>`, m.storeName, userName, resetLink)

	return m.Send(to, subject, html)
}
