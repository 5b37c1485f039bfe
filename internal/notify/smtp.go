package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/thetechguyfromvietnam/lolibub/internal/order"
)

// SMTPSink emails the order notification, with the payment-proof image
// attached when one was uploaded. Alternative primary sink for merchants
// without a webhook endpoint.
type SMTPSink struct {
	addr       string
	auth       smtp.Auth
	from       string
	fromName   string
	recipients []string
}

// NewSMTPSink creates the sink from plain SMTP credentials. The sender
// address doubles as the authenticated user.
func NewSMTPSink(host, port, user, pass, fromName, recipients string) *SMTPSink {
	return &SMTPSink{
		addr:       net.JoinHostPort(host, port),
		auth:       smtp.PlainAuth("", user, pass, host),
		from:       user,
		fromName:   fromName,
		recipients: splitRecipients(recipients),
	}
}

func (s *SMTPSink) Name() string { return "smtp" }

// Send builds the MIME message and hands it to the SMTP server.
func (s *SMTPSink) Send(ctx context.Context, rec *order.Record, message string) error {
	if len(s.recipients) == 0 {
		return errors.New("no email recipients configured")
	}

	msg, err := s.buildMessage(rec)
	if err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, s.recipients, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// buildMessage assembles multipart/mixed: a text+html alternative pair and,
// when a proof was uploaded, the image as a base64 attachment.
func (s *SMTPSink) buildMessage(rec *order.Record) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	subject := mime.QEncoding.Encode("utf-8", "Đơn hàng mới từ Lolibub")
	fromName := mime.QEncoding.Encode("utf-8", s.fromName)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", fromName, s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(s.recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixed.Boundary())

	if err := writeAlternative(mixed, rec); err != nil {
		return nil, err
	}

	if rec.PaymentProofPath != "" {
		if err := writeAttachment(mixed, rec.PaymentProofPath, rec.PaymentProof); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAlternative(mixed *multipart.Writer, rec *order.Record) error {
	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)

	textPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return err
	}
	fmt.Fprint(textPart, plainBody(rec))

	htmlPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return err
	}
	fmt.Fprint(htmlPart, htmlBody(rec))

	if err := altWriter.Close(); err != nil {
		return err
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%s", altWriter.Boundary())},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(alt.Bytes())
	return err
}

func writeAttachment(mixed *multipart.Writer, path, filename string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payment proof: %w", err)
	}
	if filename == "" {
		filename = filepath.Base(path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// 76-char lines per RFC 2045
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(part, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err = fmt.Fprint(part, encoded)
	return err
}

func htmlBody(rec *order.Record) string {
	name := rec.CustomerName
	if name == "" {
		name = "Khách hàng"
	}

	payment := "Chuyển khoản"
	if rec.PaymentMethod == order.PaymentCash {
		payment = "Tiền mặt"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<h2>Đơn hàng mới từ %s</h2>\n", html.EscapeString(name))
	sb.WriteString("<ul>\n")
	fmt.Fprintf(&sb, "<li><strong>SĐT:</strong> %s</li>\n", html.EscapeString(rec.Phone))
	fmt.Fprintf(&sb, "<li><strong>Địa chỉ:</strong> %s</li>\n", html.EscapeString(rec.Address))
	if rec.Note != "" {
		fmt.Fprintf(&sb, "<li><strong>Ghi chú:</strong> %s</li>\n", html.EscapeString(rec.Note))
	}
	fmt.Fprintf(&sb, "<li><strong>Thanh toán:</strong> %s</li>\n", payment)
	sb.WriteString("</ul>\n")
	sb.WriteString("<p><strong>Chi tiết:</strong></p>\n<ul>\n")
	for _, item := range rec.Items {
		fmt.Fprintf(&sb, "<li>%s (%s) x%d = %s đ</li>\n",
			html.EscapeString(item.Name), html.EscapeString(item.Category),
			item.Quantity, order.FormatPrice(item.Subtotal()))
	}
	sb.WriteString("</ul>\n")
	fmt.Fprintf(&sb, "<p><strong>Tổng tiền:</strong> %s đ</p>\n", order.FormatPrice(rec.Total))
	return sb.String()
}
