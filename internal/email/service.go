package email

import (
	"fmt"
	"mime"
	"net/smtp"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host  string
	port  string
	from  string
	brand string
	send  sendFunc
}

// NewService creates a new email service
func NewService(host, port, from, brand string) *Service {
	return &Service{
		host:  host,
		port:  port,
		from:  from,
		brand: brand,
		send:  smtp.SendMail,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, o OrderSummary) error {
	body, err := BuildOrderConfirmationBody(s.brand, o)
	if err != nil {
		return err
	}
	return s.deliver(to, fmt.Sprintf("Order confirmed: %s", o.OrderID), body)
}

// SendPaymentReceipt confirms a captured payment
func (s *Service) SendPaymentReceipt(to string, o OrderSummary) error {
	body, err := BuildPaymentReceiptBody(s.brand, o)
	if err != nil {
		return err
	}
	return s.deliver(to, fmt.Sprintf("Payment received for order %s", o.OrderID), body)
}

// SendPaymentFailed tells the customer an online payment did not go through
func (s *Service) SendPaymentFailed(to string, o OrderSummary) error {
	body, err := BuildPaymentFailedBody(s.brand, o)
	if err != nil {
		return err
	}
	return s.deliver(to, fmt.Sprintf("Payment not completed for order %s", o.OrderID), body)
}

func (s *Service) deliver(to, subject, body string) error {
	subject = mime.QEncoding.Encode("utf-8", fmt.Sprintf("[%s] %s", s.brand, subject))
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.send(addr, nil, s.from, []string{to}, []byte(msg))
}
