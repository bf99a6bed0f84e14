// Package report renders a player's evaluation as markdown and HTML
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"evalboard/domain/evaluation"
	"evalboard/internal/engine"
	"evalboard/internal/injury"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// PlayerReport is everything the report shows for one subject
type PlayerReport struct {
	Subject     string
	Category    string
	GeneratedAt time.Time
	Profile     []engine.BilateralReading
	Comparison  []evaluation.ComparisonRecord
	ZScores     []evaluation.ZScorePoint
	Injuries    *injury.PlayerSummary
}

// Markdown renders the report
func (r *PlayerReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", mdText(r.Subject))
	fmt.Fprintf(&b, "Categoría: **%s** · Generado: %s\n\n", mdText(r.Category), r.GeneratedAt.Format("2006-01-02 15:04"))

	if len(r.Profile) > 0 {
		b.WriteString("## Perfil bilateral\n\n")
		b.WriteString("| Métrica | Der | Izq | LSI (%) |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, p := range r.Profile {
			lsi := "-"
			if p.LSI != nil {
				lsi = fmt.Sprintf("%.1f (%s)", *p.LSI, LSIZone(*p.LSI))
			}
			fmt.Fprintf(&b, "| %s | %.1f | %.1f | %s |\n", mdText(p.Metric.Label), p.Right, p.Left, lsi)
		}
		b.WriteString("\n")
	}

	if len(r.Comparison) > 0 {
		b.WriteString("## Comparación con el grupo\n\n")
		b.WriteString("| Métrica | Lado | Jugador | Media grupo | DE | Dif. | Dif. % | Z rel. |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
		for _, c := range r.Comparison {
			fmt.Fprintf(&b, "| %s | %s | %.1f | %.1f | %.1f | %+.1f | %+.1f | %+.2f |\n",
				mdText(c.Metric), SideLabel(c.Side), c.SubjectValue, c.GroupMean, c.GroupStd, c.Difference, c.DifferencePct, c.RelativeZ)
		}
		b.WriteString("\n")
	}

	if len(r.ZScores) > 0 {
		b.WriteString("## Z-scores\n\n")
		b.WriteString("| Métrica | Z |\n|---|---:|\n")
		for _, z := range r.ZScores {
			fmt.Fprintf(&b, "| %s | %+.2f |\n", mdText(z.Label), z.Raw)
		}
		b.WriteString("\n")
	}

	if r.Injuries != nil {
		b.WriteString("## Lesiones\n\n")
		fmt.Fprintf(&b, "- Lesiones registradas: %d\n", r.Injuries.Injuries)
		fmt.Fprintf(&b, "- Días de baja acumulados: %d\n", r.Injuries.DaysOut)
		fmt.Fprintf(&b, "- Lesiones activas: %d\n", r.Injuries.Active)
		for _, e := range r.Injuries.Events {
			fmt.Fprintf(&b, "  - %s\n", mdText(e))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the markdown report to an HTML fragment
func (r *PlayerReport) HTML() []byte {
	return ToHTML([]byte(r.Markdown()))
}

// ToHTML converts markdown with tables to HTML
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.Render(doc, renderer)
}

// mdEscaper backslash-escapes what the workbook and injury log may carry that
// markdown would otherwise read as markup or as a table cell boundary.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`&`, `\&`,
	`|`, `\|`,
)

// mdText makes source text safe to interpolate into the report
func mdText(s string) string {
	return mdEscaper.Replace(s)
}

// LSI zones used to colour symmetry values
const (
	ZoneOptimal = "óptimo"
	ZoneAlert   = "alerta"
	ZoneRisk    = "riesgo"
)

// LSIZone classifies a limb symmetry index: 90-110 optimal, 80-90 and
// 110-120 alert, anything else risk.
func LSIZone(lsi float64) string {
	switch {
	case math.IsNaN(lsi):
		return ZoneRisk
	case lsi >= 90 && lsi <= 110:
		return ZoneOptimal
	case lsi >= 80 && lsi <= 120:
		return ZoneAlert
	default:
		return ZoneRisk
	}
}

// SideLabel names a side the way the sheets do
func SideLabel(side evaluation.Side) string {
	if side == evaluation.SideLeft {
		return "Izq"
	}
	return "Der"
}
