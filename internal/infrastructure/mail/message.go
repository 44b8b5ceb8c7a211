package mail

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	ToName   string
	FromAddr string
	FromName string
	Subject  string
	HTML     string
}

// build encodes the message as an RFC 5322 HTML email.
func (m Message) build(now time.Time) []byte {
	from := netmail.Address{Name: m.FromName, Address: m.FromAddr}
	to := netmail.Address{Name: m.ToName, Address: m.To}
	domain := "localhost"
	if i := strings.LastIndex(m.FromAddr, "@"); i >= 0 {
		domain = m.FromAddr[i+1:]
	}

	var buf bytes.Buffer
	headers := []string{
		"From: " + from.String(),
		"To: " + to.String(),
		"Subject: " + mime.QEncoding.Encode("utf-8", m.Subject),
		"Date: " + now.Format(time.RFC1123Z),
		fmt.Sprintf("Message-ID: <%s@%s>", uuid.NewString(), domain),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"Content-Transfer-Encoding: 8bit",
	}
	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.HTML, "\r\n", "\n"), "\n", "\r\n"))
	return buf.Bytes()
}
