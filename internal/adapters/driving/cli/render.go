package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss/tree"
	"golang.org/x/term"

	"github.com/custodia-labs/mapping-builder/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// stylesFor picks coloured styles for terminals and plain ones otherwise.
func stylesFor(w io.Writer) *styles.Styles {
	if isTerminal(w) {
		return styles.DefaultStyles()
	}
	return styles.PlainStyles()
}

// renderTree draws root and its descendants, highlighting the mapping
// with the focus id.
func renderTree(root *domain.NodeMapping, focus int, st *styles.Styles) string {
	return buildTree(root, focus, st).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.Branch).
		String()
}

func buildTree(m *domain.NodeMapping, focus int, st *styles.Styles) *tree.Tree {
	t := tree.Root(mappingLine(m, focus, st))
	for _, c := range m.Children {
		if c.HasChildren() {
			t.Child(buildTree(c, focus, st))
			continue
		}
		t.Child(mappingLine(c, focus, st))
	}
	return t
}

func mappingLine(m *domain.NodeMapping, focus int, st *styles.Styles) string {
	label := m.Name
	if label == "" {
		label = "(unnamed)"
	}
	if m.ID == focus {
		label = st.Selected.Render(label)
	} else {
		label = st.Normal.Render(label)
	}
	line := st.ID.Render(fmt.Sprintf("#%d", m.ID)) + " " + label
	if m.Source != "" {
		line += " " + st.Muted.Render("<- "+m.Source)
	}
	return line
}

// writeJSON writes data, indented when w is a terminal.
func writeJSON(w io.Writer, data []byte) error {
	if isTerminal(w) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err == nil {
			data = buf.Bytes()
		}
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
