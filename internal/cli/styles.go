package cli

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nathanj/homeledger/internal/database/repository"
)

var (
	negAmountStyle = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("0"))
	posAmountStyle = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("15"))
	dateStyle      = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
)

func renderAmount(symbol string, d decimal.Decimal) string {
	s := symbol + d.StringFixed(repository.AmountPlaces)
	if d.IsNegative() {
		return negAmountStyle.Render(s)
	}
	return posAmountStyle.Render(s)
}

func renderDate(t time.Time) string {
	return dateStyle.Render(t.Format("2006-01-02(Mon)"))
}

func orBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
