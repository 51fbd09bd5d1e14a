package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/krypton/internal/client/client"
)

// renderMarkdown turns markdown into terminal output. Swapped in tests.
var renderMarkdown = glamour.Render

const portfolioTemplate = `
{{- if not .Holdings }}
_Portfolio is empty._
{{- else }}
| Asset | Amount | Bought at | Price | Value | P/L |
|:---|---:|---:|---:|---:|---:|
{{- range .Holdings }}
| {{ .CryptoID }} | {{ amount .Amount }} | {{ fiat .PurchasePrice }} | {{ fiat .CurrentPrice }} | {{ fiat .CurrentValue }} | {{ signed .ProfitLoss }} |
{{- end }}
{{- if .Totals }}
| **Total** | | **{{ fiat .TotalCost }}** | | **{{ fiat .TotalValue }}** | **{{ signed .TotalProfitLoss }}** |
{{- end }}
{{- end }}
`

const watchlistTemplate = `
{{- if not . }}
_Watchlist is empty._
{{- else }}
| Asset | Added |
|:---|:---|
{{- range . }}
| {{ .CryptoID }} | {{ .AddedAt.Format "2006-01-02 15:04" }} |
{{- end }}
{{- end }}
`

type portfolioView struct {
	Holdings        []client.Holding
	Totals          bool
	TotalCost       float64
	TotalValue      float64
	TotalProfitLoss float64
}

// formatMoney renders v in the given ISO currency using its symbol and
// fraction digits. Unknown codes fall back to a plain two-digit format.
func formatMoney(v float64, code string) string {
	cur := *money.New(0, strings.ToUpper(code)).Currency()
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"fiat": func(v float64) string { return formatMoney(v, currency) },
		"signed": func(v float64) string {
			if v > 0 {
				return "+" + formatMoney(v, currency)
			}
			return formatMoney(v, currency)
		},
		"amount": func(v float64) string { return decimal.NewFromFloat(v).String() },
	}
}

func executeTemplate(name, text, currency string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs(currency)).Parse(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func portfolioMarkdown(holdings []client.Holding, currency string) (string, error) {
	return executeTemplate("portfolio", portfolioTemplate, currency, portfolioView{Holdings: holdings})
}

func summaryMarkdown(s *client.Summary) (string, error) {
	return executeTemplate("summary", portfolioTemplate, s.Currency, portfolioView{
		Holdings:        s.Holdings,
		Totals:          true,
		TotalCost:       s.TotalCost,
		TotalValue:      s.TotalValue,
		TotalProfitLoss: s.TotalProfitLoss,
	})
}

func watchlistMarkdown(entries []client.WatchlistEntry) (string, error) {
	return executeTemplate("watchlist", watchlistTemplate, "", entries)
}

// display renders md with the app's style, printing the raw markdown when
// the renderer fails.
func (a *App) display(md string) {
	out, err := renderMarkdown(md, a.style)
	if err != nil {
		out = md + "\n"
	}
	fmt.Fprint(a.out, out)
}
