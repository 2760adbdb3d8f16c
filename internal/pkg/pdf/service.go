// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/order"
)

// DocumentKind selects the heading and number prefix of the document
type DocumentKind string

const (
	// Invoice is the operator's copy
	Invoice DocumentKind = "invoice"
	// Receipt is the customer's copy
	Receipt DocumentKind = "receipt"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
	tmpl   *template.Template
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		tmpl:   template.Must(template.New("document").Parse(documentTemplate)),
		now:    time.Now,
	}
}

// Generate renders the order as a PDF invoice or receipt. It needs the
// wkhtmltopdf binary on PATH or in WKHTMLTOPDF_PATH.
func (s *Service) Generate(o *order.Order, kind DocumentKind) ([]byte, error) {
	htmlContent, err := s.RenderHTML(o, kind)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// RenderHTML renders the HTML that Generate converts
func (s *Service) RenderHTML(o *order.Order, kind DocumentKind) ([]byte, error) {
	data := DocumentData{
		Title:     "Tax Invoice",
		Number:    fmt.Sprintf("INV-%06d", o.ID),
		IssuedOn:  s.now().Format("January 2, 2006"),
		OrderRef:  o.Reference(),
		OrderDate: o.CreatedAt.Format("January 2, 2006"),
		Order:     o,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
	}
	if kind == Receipt {
		data.Title = "Order Receipt"
		data.Number = fmt.Sprintf("RCT-%06d", o.ID)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentData represents the data passed to the document template
type DocumentData struct {
	Title     string
	Number    string
	IssuedOn  string
	OrderRef  string
	OrderDate string
	Order     *order.Order
	Company   CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}} {{.Number}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; font-size: 13px; }
        .header { display: flex; justify-content: space-between; border-bottom: 2px solid #8b1a1a; padding-bottom: 12px; }
        .company h1 { color: #8b1a1a; margin: 0 0 6px 0; font-size: 24px; }
        .meta { text-align: right; }
        .meta h2 { margin: 0 0 6px 0; }
        .section { margin-top: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th { background: #f6eee6; text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
        td { padding: 8px; border-bottom: 1px solid #eee; }
        .num { text-align: right; }
        .total td { font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 30px; font-size: 11px; color: #777; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company">
            <h1>{{.Company.Name}}</h1>
            <div>{{.Company.Address}}</div>
            <div>{{.Company.Phone}} | {{.Company.Email}}</div>
            <div>{{.Company.Website}}</div>
        </div>
        <div class="meta">
            <h2>{{.Title}}</h2>
            <div>No: {{.Number}}</div>
            <div>Issued: {{.IssuedOn}}</div>
            <div>Order: {{.OrderRef}} ({{.OrderDate}})</div>
            <div>Status: {{.Order.Status}}</div>
        </div>
    </div>

    <div class="section">
        <strong>Ship to</strong><br>
        {{.Order.CustomerName}}<br>
        {{.Order.AddressLine1}}<br>
        {{if .Order.AddressLine2}}{{.Order.AddressLine2}}<br>{{end}}
        {{.Order.City}} - {{.Order.Pincode}}<br>
        Phone: {{.Order.Phone}}
    </div>

    <table>
        <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Amount</th></tr>
        {{range .Order.Items}}
        <tr>
            <td>{{.VariantLabel}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">&#8377;{{.Price.StringFixed 2}}</td>
            <td class="num">&#8377;{{.Subtotal.StringFixed 2}}</td>
        </tr>
        {{end}}
        <tr class="total"><td colspan="3" class="num">Total</td><td class="num">&#8377;{{.Order.Total.StringFixed 2}}</td></tr>
    </table>

    <div class="section">
        Payment: Cash on delivery ({{.Order.PaymentStatus}})
    </div>

    <div class="footer">Thank you for shopping with {{.Company.Name}}.</div>
</body>
</html>`
