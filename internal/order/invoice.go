package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// receiptWidth is the character width of an 80 mm thermal receipt.
const receiptWidth = 42

// RenderInvoice prints the order as a plain-text receipt.
func RenderInvoice(o Order, shop string) string {
	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth)

	b.WriteString(center(shop) + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Date: %s\n", o.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Customer: %s\n", o.Customer)
	fmt.Fprintf(&b, "Phone: %s\n", o.Phone)
	fmt.Fprintf(&b, "Address: %s\n", o.Address)
	if o.District != "" {
		fmt.Fprintf(&b, "District: %s\n", o.District)
	}

	b.WriteString(rule + "\nITEMS\n" + rule + "\n")
	for _, it := range o.Items {
		b.WriteString(columns(fmt.Sprintf("%d x %s", it.Quantity, it.Name), FormatMoney(it.Total())) + "\n")
		b.WriteString("   @ " + FormatMoney(it.Price) + "\n")
	}

	b.WriteString(rule + "\nTOTALS\n" + rule + "\n")
	b.WriteString(columns("Subtotal:", FormatMoney(o.Subtotal)) + "\n")
	b.WriteString(columns("Shipping:", FormatMoney(o.Shipping)) + "\n")
	b.WriteString(columns("Total:", "BDT "+FormatMoney(o.Amount)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(center("Thank you for your purchase!") + "\n")
	return b.String()
}

// columns left-aligns left and right-aligns right on one receipt line,
// shortening left when both do not fit.
func columns(left, right string) string {
	l, r := []rune(left), []rune(right)
	space := receiptWidth - len(r) - 1
	if space < 1 {
		return left + " " + right
	}
	if len(l) > space {
		l = l[:space]
	}
	return string(l) + strings.Repeat(" ", receiptWidth-len(l)-len(r)) + right
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	return strings.Repeat(" ", (receiptWidth-len(s))/2) + s
}

// FormatMoney renders an amount with thousands separators, dropping a zero fraction.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	s = strings.TrimSuffix(s, ".00")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
