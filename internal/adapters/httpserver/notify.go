package httpserver

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/velez/storefront/internal/domain"
)

// NotifyOrderPaid emails the shop inbox about a confirmed payment. It is
// a no-op when SMTP is not configured.
func NotifyOrderPaid(o *domain.Order) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	to := os.Getenv("ORDER_NOTIFY_EMAIL")
	if host == "" || port == "" || user == "" || pass == "" || to == "" {
		log.Warn().Msg("SMTP not configured, skipping order notification")
		return
	}
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Subject: Order paid #%s\r\n", o.ID)
	_, _ = fmt.Fprintf(&buf, "From: %s\r\n", user)
	_, _ = fmt.Fprintf(&buf, "To: %s\r\n", to)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(&buf, "Order: %s\nUser: %s\nStatus: %s\nItems:\n", o.ID, o.UserID, o.Status)
	for _, it := range o.Items {
		_, _ = fmt.Fprintf(&buf, "- product %s x%d\n", it.ProductID, it.Quantity)
	}
	auth := smtp.PlainAuth("", user, pass, host)
	if err := smtp.SendMail(host+":"+port, auth, user, []string{to}, buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("order notification email")
	}
}
