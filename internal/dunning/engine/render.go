package engine

import (
	"fmt"
	"strings"
	"time"
)

// RenderData carries the fields a message template can reference.
type RenderData struct {
	CustomerName   string
	AmountCents    int64
	DueDate        time.Time
	Description    string
	PaymentLinkURL string
}

// Render substitutes the known placeholders into a step template. This
// is literal find/replace, not a template language: unknown tokens are
// left verbatim so authoring mistakes surface in the message itself.
func Render(template string, data RenderData) string {
	out := template
	out = strings.ReplaceAll(out, "{{nome}}", data.CustomerName)
	out = strings.ReplaceAll(out, "{{valor}}", FormatAmountBRL(data.AmountCents))
	out = strings.ReplaceAll(out, "{{vencimento}}", FormatDateBR(data.DueDate))
	out = strings.ReplaceAll(out, "{{descricao}}", data.Description)
	out = strings.ReplaceAll(out, "{{link_boleto}}", data.PaymentLinkURL)
	return out
}

// FormatAmountBRL formats minor currency units as pt-BR currency,
// e.g. 123456 -> "R$ 1.234,56".
func FormatAmountBRL(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), frac)
}

// FormatDateBR formats a date as dd/mm/yyyy.
func FormatDateBR(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}
