package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/incdep/incdep/pkg/models"
)

// WriteMermaid renders the annotated include graph as a mermaid flowchart.
// Redundant includes are drawn dashed, unresolved targets as a labeled
// terminal node.
func WriteMermaid(w io.Writer, g models.Graph) error {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	for _, f := range g.Files {
		fmt.Fprintf(&b, "    n%d[\"%s\"]\n", f.ID, escapeMermaid(f.Rel))
	}

	// Link style indices count rendered links in order, missing-target
	// links included.
	missing, link := 0, 0
	var redundant []string
	for _, e := range g.Edges {
		switch {
		case e.State == models.StateNotFound:
			fmt.Fprintf(&b, "    n%d -.-> m%d[\"%s (missing)\"]\n", e.From, missing, escapeMermaid(includePath(e.Raw)))
			missing++
		case e.Verdict == models.VerdictRedundant || e.Verdict == models.VerdictRemoved:
			fmt.Fprintf(&b, "    n%d -.-> n%d\n", e.From, e.To)
			redundant = append(redundant, fmt.Sprintf("%d", link))
		default:
			fmt.Fprintf(&b, "    n%d --> n%d\n", e.From, e.To)
		}
		link++
	}

	if len(redundant) > 0 {
		fmt.Fprintf(&b, "    linkStyle %s stroke:#e05252,stroke-width:2px\n", strings.Join(redundant, ","))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeMermaid(s string) string {
	return strings.NewReplacer("\"", "&quot;", "[", "(", "]", ")").Replace(s)
}

// includePath extracts the header path from a raw directive.
func includePath(raw string) string {
	if i := strings.IndexAny(raw, "\"<"); i >= 0 {
		if j := strings.IndexAny(raw[i+1:], "\">"); j >= 0 {
			return raw[i+1 : i+1+j]
		}
	}
	return raw
}
