package layering

import (
	"strings"

	"github.com/matthewbaird/signatures/internal/types"
)

// Assemble joins the base text and the resolved lines into a Payload. With no
// lines the final text is the trimmed base; otherwise the lines follow a
// blank line as "- " bullets, one per line.
func Assemble(base string, lines []types.CandidateLine, why []string) types.Payload {
	base = strings.TrimSpace(base)
	p := types.Payload{
		Base:     base,
		Addons:   make([]string, 0, len(lines)),
		WhyAdded: dedupeStrings(why),
		Final:    base,
	}
	for _, l := range lines {
		if text := singleLine(l.Text); text != "" {
			p.Addons = append(p.Addons, text)
		}
	}
	if len(p.Addons) == 0 {
		return p
	}
	p.Final = strings.TrimSpace(base + "\n\n" + Bullets(p.Addons))
	return p
}

// Bullets renders addons as a "- " bulleted list.
func Bullets(addons []string) string {
	var b strings.Builder
	for i, a := range addons {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(singleLine(a))
	}
	return b.String()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
