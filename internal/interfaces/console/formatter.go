package console

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"etfmon/internal/application/service"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

func colorize(s, c string) string { return c + s + ansiReset }

// Formatter renders positions as single terminal lines.
type Formatter struct {
	Color bool
}

func (f *Formatter) paint(s, c string) string {
	if !f.Color {
		return s
	}
	return colorize(s, c)
}

// Line renders one position: name, price, shares, values and gain.
func (f *Formatter) Line(pos service.Position) string {
	var sb strings.Builder
	sb.WriteString(f.paint("[ETF] ", ansiDim))
	sb.WriteString(pos.Name)
	sb.WriteString(" ")

	price := "--"
	if pos.HasQuote || !pos.Price.IsZero() {
		price = pos.Price.StringFixed(2)
	}
	pCol := ansiYellow
	if !pos.HasQuote {
		pCol = ansiDim
	}
	sb.WriteString(f.paint("px="+price, pCol))

	fmt.Fprintf(&sb, " shares=%s buy=%s value=%s ",
		decimal.NewFromFloat(pos.Shares).String(),
		pos.PurchaseValue.StringFixed(2),
		pos.CurrentValue.StringFixed(2))
	sb.WriteString(f.gain(pos.Gain))
	return sb.String()
}

// Total renders the portfolio totals.
func (f *Formatter) Total(positions []service.Position) string {
	purchase, current, gain := service.Totals(positions)
	return fmt.Sprintf("%s buy=%s value=%s %s",
		f.paint("[TOTAL]", ansiDim),
		purchase.StringFixed(2),
		current.StringFixed(2),
		f.gain(gain))
}

func (f *Formatter) gain(g decimal.Decimal) string {
	s := "gain=" + g.StringFixed(2)
	switch g.Sign() {
	case 1:
		return f.paint("gain=+"+g.StringFixed(2), ansiGreen)
	case -1:
		return f.paint(s, ansiRed)
	default:
		return f.paint(s, ansiYellow)
	}
}
