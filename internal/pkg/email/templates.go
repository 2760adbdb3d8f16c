package email

const layoutHead = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
<h1 style="color: #8b1a1a;">{{.SiteName}}</h1>
<p>Hello {{.UserName}},</p>
`

const layoutFoot = `<hr>
<p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
</div>
</body>
</html>`

const itemsTable = `<table style="width: 100%; border-collapse: collapse;">
<tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td align="center">{{.Quantity}}</td><td align="right">&#8377;{{.Price}}</td><td align="right">&#8377;{{.Total}}</td></tr>
{{end}}<tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>&#8377;{{.OrderTotal}}</strong></td></tr>
</table>
`

const orderConfirmationTemplate = layoutHead + `<p>Thank you for your order <strong>{{.OrderNumber}}</strong> placed on {{.OrderDate}}. You will pay cash on delivery.</p>
` + itemsTable + `<p>Delivering to:<br>{{.Address.Name}}<br>{{.Address.AddressLine1}}<br>{{if .Address.AddressLine2}}{{.Address.AddressLine2}}<br>{{end}}{{.Address.City}} - {{.Address.Pincode}}<br>Phone: {{.Address.Phone}}</p>
<p><a href="{{.TrackURL}}">Track your order</a></p>
` + layoutFoot

const orderStatusUpdateTemplate = layoutHead + `<p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
<p>{{.StatusMessage}}</p>
<p><a href="{{.TrackURL}}">Track your order</a></p>
` + layoutFoot
