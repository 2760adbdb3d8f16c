// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/order"
)

const sendTimeout = 30 * time.Second

// EmailService renders order emails and sends them in the background. It
// satisfies order.Notifier, so a slow or broken mail server never delays or
// fails a checkout.
type EmailService struct {
	config    config.EmailConfig
	siteName  string
	sender    Sender
	templates map[EmailType]*template.Template
	logger    *logrus.Logger
	wg        sync.WaitGroup
}

var _ order.Notifier = (*EmailService)(nil)

// NewEmailService creates a new email service sending through SMTP
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	return NewEmailServiceWithSender(cfg, NewSMTPSender(cfg.Email), logger)
}

// NewEmailServiceWithSender creates a new email service using sender
func NewEmailServiceWithSender(cfg *config.Config, sender Sender, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config:   cfg.Email,
		siteName: cfg.App.Name,
		sender:   sender,
		templates: map[EmailType]*template.Template{
			EmailTypeOrderConfirmation: template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate)),
			EmailTypeOrderStatusUpdate: template.Must(template.New("order_status_update").Parse(orderStatusUpdateTemplate)),
		},
		logger: logger,
	}
}

// OrderPlaced sends the order confirmation to the customer
func (s *EmailService) OrderPlaced(ctx context.Context, o *order.Order) {
	if o.User == nil {
		return
	}
	data := s.orderData(o)
	s.dispatch(ctx, EmailTypeOrderConfirmation, o, fmt.Sprintf("Order Confirmation - %s", data.OrderNumber), data)
}

// OrderStatusChanged tells the customer about a lifecycle change
func (s *EmailService) OrderStatusChanged(ctx context.Context, o *order.Order, from order.OrderStatus) {
	if o.User == nil {
		return
	}
	data := s.orderData(o)
	data.StatusMessage = statusMessage(o.Status)
	s.dispatch(ctx, EmailTypeOrderStatusUpdate, o, fmt.Sprintf("Order Update - %s is %s", data.OrderNumber, o.Status), data)
}

// Wait blocks until queued emails have been attempted
func (s *EmailService) Wait() {
	s.wg.Wait()
}

func (s *EmailService) dispatch(ctx context.Context, kind EmailType, o *order.Order, subject string, data OrderEmailData) {
	log := s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"type":     kind,
	})

	html, err := s.renderTemplate(kind, data)
	if err != nil {
		log.WithError(err).Error("Failed to render email")
		return
	}

	msg := &Email{
		To:          []string{o.User.Email},
		Subject:     subject,
		HTMLContent: html,
		Type:        kind,
	}

	// The request context ends with the response; sending must outlive it
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := s.sender.Send(sendCtx, msg); err != nil {
			emailsSentTotal.WithLabelValues(string(kind), "error").Inc()
			log.WithError(err).Warn("Failed to send email")
			return
		}
		emailsSentTotal.WithLabelValues(string(kind), "sent").Inc()
		log.Debug("Email sent")
	}()
}

func (s *EmailService) orderData(o *order.Order) OrderEmailData {
	data := OrderEmailData{
		EmailTemplateData: GetBaseTemplateData(s.siteName, s.config.BaseURL, o.User.FullName(), o.User.Email),
		OrderNumber:       o.Reference(),
		OrderDate:         o.CreatedAt.Format("02 Jan 2006"),
		OrderTotal:        o.Total.StringFixed(2),
		Status:            string(o.Status),
		TrackURL:          fmt.Sprintf("%s/track-order?order_id=%d", s.config.BaseURL, o.ID),
		Address: Address{
			Name:         o.CustomerName,
			AddressLine1: o.AddressLine1,
			AddressLine2: o.AddressLine2,
			City:         o.City,
			Pincode:      o.Pincode,
			Phone:        o.Phone,
		},
	}
	for i := range o.Items {
		item := &o.Items[i]
		data.Items = append(data.Items, OrderItem{
			Name:     item.VariantLabel,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Total:    item.Subtotal().StringFixed(2),
		})
	}
	return data
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(kind EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[kind]
	if !exists {
		return "", fmt.Errorf("template %s not found", kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", kind, err)
	}
	return buf.String(), nil
}

func statusMessage(status order.OrderStatus) string {
	switch status {
	case order.OrderStatusConfirmed:
		return "Your order has been confirmed and will be packed soon."
	case order.OrderStatusPacked:
		return "Your order has been packed and is waiting for pickup."
	case order.OrderStatusShipped:
		return "Your order is on its way."
	case order.OrderStatusDelivered:
		return "Your order has been delivered. Please keep the cash ready if you have not paid yet."
	case order.OrderStatusCancelled:
		return "Your order has been cancelled."
	default:
		return "Your order status has changed."
	}
}
