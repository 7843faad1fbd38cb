package utils

import (
	"fmt"

	"github.com/keighl/postmark"

	"shopkart/models"
)

// EmailService handles sending emails using Postmark. All order-related mail
// is best effort: callers send from a goroutine and only log failures.
type EmailService struct {
	client  *postmark.Client
	sender  string
	baseURL string
}

// NewEmailService builds an EmailService with an injected API token.
func NewEmailService(apiToken, sender, baseURL string) *EmailService {
	return &EmailService{
		client:  postmark.NewClient(apiToken, ""),
		sender:  sender,
		baseURL: baseURL,
	}
}

// SendEmail sends a basic email to the specified recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends an email verification link to the user.
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", es.baseURL, token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation to the customer.
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order *models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>Total Amount: <strong>%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.OrderID,
		order.TotalPrice,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail notifies the customer of a status change.
func (es *EmailService) SendOrderStatusEmail(toEmail string, order *models.Order) error {
	subject := "Order Status Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Your order <strong>%s</strong> is now <strong>%s</strong>.<br><br>Thank you for shopping with us!",
		order.OrderID,
		order.Status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
