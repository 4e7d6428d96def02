// Package explain renders the audit's fairness signal as plain language. The
// formatter is a pure template over the summary values handed to it: it never
// recomputes a metric and never decides anything.
package explain

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fairlens/domain/audit"
)

// Narrative formats one markdown document covering every family summary.
// Undefined values are spelled out rather than coerced to numbers.
func Narrative(summaries []audit.Summary) string {
	var b strings.Builder
	b.WriteString("# Fairness Audit\n")

	if len(summaries) == 0 {
		b.WriteString("\nNo model produced an evaluation for this run.\n")
		return b.String()
	}

	for _, s := range summaries {
		fmt.Fprintf(&b, "\n## %s\n\n", familyTitle(s.Family))
		for _, gr := range s.GroupRecalls {
			fmt.Fprintf(&b, "- Recall for `%s`: %s\n", gr.Group, formatRate(gr.Recall))
		}
		b.WriteString("\n")
		b.WriteString(gapSentence(s))
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the narrative markdown for the browser.
func HTML(summaries []audit.Summary) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(Narrative(summaries)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func gapSentence(s audit.Summary) string {
	if !s.Gap.Defined {
		return "The recall gap is undefined: fewer than two groups had positive instances to measure recall on.\n"
	}

	lowest, highest := "", ""
	var low, high float64
	for _, gr := range s.GroupRecalls {
		if !gr.Recall.Defined {
			continue
		}
		if lowest == "" || gr.Recall.Value < low {
			lowest, low = gr.Group, gr.Recall.Value
		}
		if highest == "" || gr.Recall.Value > high {
			highest, high = gr.Group, gr.Recall.Value
		}
	}
	return fmt.Sprintf(
		"The recall gap is **%.3f**: the model recovers true positives for `%s` at %.3f but for `%s` at only %.3f, so qualifying `%s` records are missed more often.\n",
		s.Gap.Value, highest, high, lowest, low, lowest)
}

func formatRate(r audit.Rate) string {
	if !r.Defined {
		return "undefined (no positive instances in this group)"
	}
	return fmt.Sprintf("%.3f", r.Value)
}

func familyTitle(family string) string {
	words := strings.Split(strings.ReplaceAll(family, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
