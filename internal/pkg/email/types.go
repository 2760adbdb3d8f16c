// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string
	SiteURL   string
	UserName  string
	UserEmail string
	Year      int
}

// OrderEmailData is rendered into both order templates
type OrderEmailData struct {
	EmailTemplateData
	OrderNumber   string
	OrderDate     string
	OrderTotal    string
	Status        string
	StatusMessage string
	TrackURL      string
	Items         []OrderItem
	Address       Address
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// Address represents the shipping address
type Address struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	Pincode      string
	Phone        string
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
