// Package report implements the symbol-table reporter (R1, spec.md
// §6.2): renders the global scope and every subordinate scope as
// nested ASCII boxes, five-space indent per nesting level, fixed box
// width, one line per entry showing kind/name/type/visibility.
//
// Grounded on spec.md §6's "Streams written" paragraph 2. No repo in
// the retrieval pack prints a symbol table as boxes, so the box
// characters and column layout below are this package's own
// unambiguous rendering of that paragraph's requirements rather than
// a pattern copied from any one file.
package report

import (
	"fmt"
	"strings"

	"softwares_for_struct_lang/symtab"
)

// boxWidth is the fixed interior width of every box line, wide enough
// for the longest field combination this language's grammar produces
// without truncation in the scenarios spec.md §8 exercises.
const boxWidth = 56

const indentUnit = "     " // five spaces per spec.md §6.2

// Render walks global's Box snapshot and returns the full nested-box
// report text (spec.md §6 stream 2).
func Render(global *symtab.Scope) string {
	var b strings.Builder
	renderBox(&b, global.Snapshot(), 0)
	return b.String()
}

func renderBox(b *strings.Builder, box *symtab.Box, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	title := box.Name
	if title == "" {
		title = "global"
	}
	writeBorder(b, indent)
	writeLine(b, indent, fmt.Sprintf("scope %s (level %d)", title, box.Level))
	writeBorder(b, indent)
	for _, e := range box.Entries {
		writeLine(b, indent, entryLine(e))
	}
	writeBorder(b, indent)
	for _, nested := range box.Nested {
		renderBox(b, nested, depth+1)
	}
}

func entryLine(e *symtab.Entry) string {
	vis := e.Visibility.String()
	if vis == "" {
		vis = "-"
	}
	return fmt.Sprintf("%-8s %-16s %-16s %s", e.Kind, e.Name, e.Type, vis)
}

func writeBorder(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteByte('+')
	b.WriteString(strings.Repeat("-", boxWidth))
	b.WriteByte('+')
	b.WriteByte('\n')
}

func writeLine(b *strings.Builder, indent, content string) {
	if len(content) > boxWidth-2 {
		content = content[:boxWidth-2]
	}
	b.WriteString(indent)
	b.WriteByte('|')
	b.WriteByte(' ')
	b.WriteString(content)
	b.WriteString(strings.Repeat(" ", boxWidth-2-len(content)))
	b.WriteByte(' ')
	b.WriteByte('|')
	b.WriteByte('\n')
}
