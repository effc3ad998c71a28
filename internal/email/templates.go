package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// BuildOrderConfirmationBody renders the confirmation mail as HTML.
func BuildOrderConfirmationBody(trackingCode string, total decimal.Decimal, items []OrderItem) string {
	var sb strings.Builder

	sb.WriteString("<html><body>")
	sb.WriteString("<h2>Pedido creado exitosamente</h2>")
	fmt.Fprintf(&sb, "<p>Código de seguimiento: <strong>%s</strong></p>", html.EscapeString(trackingCode))
	sb.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	sb.WriteString("<tr><th>Producto</th><th>Cantidad</th><th>Subtotal</th></tr>")

	for _, item := range items {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(item.Name), item.Quantity, item.Subtotal.StringFixed(2))
	}

	sb.WriteString("</table>")
	fmt.Fprintf(&sb, "<p><strong>Total: %s</strong></p>", total.StringFixed(2))
	sb.WriteString("<p>Gracias por su compra.</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

// BuildStatusUpdateBody renders the status-change mail as HTML.
func BuildStatusUpdateBody(trackingCode, statusLabel string) string {
	var sb strings.Builder

	sb.WriteString("<html><body>")
	sb.WriteString("<h2>Su pedido cambió de estado</h2>")
	fmt.Fprintf(&sb, "<p>Código de seguimiento: <strong>%s</strong></p>", html.EscapeString(trackingCode))
	fmt.Fprintf(&sb, "<p>Estado actual: <strong>%s</strong></p>", html.EscapeString(statusLabel))
	sb.WriteString("</body></html>")

	return sb.String()
}
