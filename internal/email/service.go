package email

import (
	"fmt"
	"net/smtp"

	"github.com/shopspring/decimal"
)

// Service sends transactional mail over SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// OrderItem is one line of the confirmation mail.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Subtotal  decimal.Decimal
}

// SendOrderConfirmation sends the order confirmation, including the
// tracking code the customer uses for status inquiries.
func (s *Service) SendOrderConfirmation(to, trackingCode string, total decimal.Decimal, items []OrderItem) error {
	subject := fmt.Sprintf("Confirmación de pedido %s", trackingCode)
	body := BuildOrderConfirmationBody(trackingCode, total, items)
	return s.send(to, subject, body)
}

// SendStatusUpdate notifies the customer that the order moved to a new
// status. statusLabel is the customer-facing label, not the internal token.
func (s *Service) SendStatusUpdate(to, trackingCode, statusLabel string) error {
	subject := fmt.Sprintf("Actualización de pedido %s", trackingCode)
	body := BuildStatusUpdateBody(trackingCode, statusLabel)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
