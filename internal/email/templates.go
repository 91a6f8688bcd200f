package email

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem is one line as shown in a mail.
type OrderItem struct {
	ProductID string
	Name      string
	Pack      string
	Quantity  int
	Price     *float64
}

// OrderSummary carries what the templates need from an order.
type OrderSummary struct {
	OrderID       string
	CustomerName  string
	PaymentMethod string
	Items         []OrderItem
	Total         *float64
	Currency      string
}

type itemRow struct {
	Name     string
	Pack     string
	Quantity int
	Price    string
	Subtotal string
}

type pageData struct {
	Brand    string
	Heading  string
	Intro    string
	OrderID  string
	Customer string
	Rows     []itemRow
	Total    string
	Footer   string
}

var orderTemplate = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #2f6b3a; padding: 30px; border-radius: 10px 10px 0 0;">
		<p style="color: #d7ecd9; margin: 0; font-size: 14px;">{{.Brand}}</p>
		<h1 style="color: white; margin: 0; font-size: 24px;">{{.Heading}}</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi {{.Customer}},</p>
		<p>{{.Intro}}</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Price</th>
					<th style="padding: 12px; text-align: right;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Rows}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}{{if .Pack}} <span style="color: #999;">({{.Pack}})</span>{{end}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.Price}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.Subtotal}}</td>
				</tr>
			{{- end}}
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #2f6b3a; margin-left: 10px;">{{.Total}}</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">{{.Footer}}</p>
	</div>
</body>
</html>`))

const footer = "This is an automated message. Reply to this mail if anything looks wrong with your order."

// BuildOrderConfirmationBody renders the mail sent when an order is placed.
func BuildOrderConfirmationBody(brand string, o OrderSummary) (string, error) {
	intro := "Thank you for your order. We will call you before delivery; please keep the amount ready for cash on delivery."
	if strings.EqualFold(o.PaymentMethod, "RAZORPAY") {
		intro = "Thank you for your order. We have received it and will start packing as soon as the payment is confirmed."
	}
	return render(brand, "Thank you for your order", intro, o)
}

// BuildPaymentReceiptBody renders the mail sent once a payment is confirmed.
func BuildPaymentReceiptBody(brand string, o OrderSummary) (string, error) {
	return render(brand, "Payment received", "We have received your payment. Your order is now being prepared for dispatch.", o)
}

// BuildPaymentFailedBody renders the mail sent when an online payment fails.
func BuildPaymentFailedBody(brand string, o OrderSummary) (string, error) {
	return render(brand, "Payment not completed",
		"We could not confirm the payment for this order. No amount has been captured; you can place the order again or choose cash on delivery.", o)
}

func render(brand, heading, intro string, o OrderSummary) (string, error) {
	data := pageData{
		Brand:    brand,
		Heading:  heading,
		Intro:    intro,
		OrderID:  o.OrderID,
		Customer: o.CustomerName,
		Total:    FormatMoney(o.Total, o.Currency),
		Footer:   footer,
	}
	for _, item := range o.Items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		row := itemRow{
			Name:     name,
			Pack:     item.Pack,
			Quantity: item.Quantity,
			Price:    FormatMoney(item.Price, o.Currency),
			Subtotal: FormatMoney(nil, o.Currency),
		}
		if item.Price != nil {
			sub, _ := decimal.NewFromFloat(*item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))).Float64()
			row.Subtotal = FormatMoney(&sub, o.Currency)
		}
		data.Rows = append(data.Rows, row)
	}

	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatMoney renders an amount with two decimals and comma separators.
// A nil amount means the price is on request.
func FormatMoney(amount *float64, currency string) string {
	if amount == nil {
		return "Price on request"
	}

	fixed := decimal.NewFromFloat(*amount).StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	symbol := currency + " "
	if currency == "" || strings.EqualFold(currency, "INR") {
		symbol = "₹"
	}
	return sign + symbol + groupThousands(whole) + "." + frac
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var result strings.Builder
	remainder := len(digits) % 3
	if remainder > 0 {
		result.WriteString(digits[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < len(digits); i += 3 {
		result.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			result.WriteString(",")
		}
	}
	return result.String()
}
