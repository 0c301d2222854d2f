// Package slc is the compiler driver library (D1, SPEC_FULL.md §4.9):
// it chains the lexer/parser, the scope builder, the impl relocator,
// the cycle detector, the semantic checker, the layout pass, and the
// code emitter into one call, exactly as the teacher's
// compiler/internal/compiler.go chains
// parse→symbols→existence→typecheck→returns→codegen.
package slc

import (
	"fmt"
	"log"
	"strings"

	"softwares_for_struct_lang/codegen"
	"softwares_for_struct_lang/frontend"
	"softwares_for_struct_lang/layout"
	"softwares_for_struct_lang/report"
	"softwares_for_struct_lang/sema"
)

// Result bundles the three streams spec.md §6 names: the generated
// assembly (empty when any gate in spec.md §7 is tripped), the
// symbol-table report, and every diagnostic collected across passes.
type Result struct {
	Assembly    string
	Report      string
	Diagnostics []sema.Diagnostic
	Accepted    bool
}

// Compile runs the full pipeline over src (the already-read file
// contents). It never returns a non-nil error for a source-level
// problem — those become diagnostics in Result.Diagnostics, per
// spec.md §7's "errors do not abort the pipeline" — only a malformed
// input the lexer/parser itself cannot tokenize produces an error.
func Compile(src string) (Result, error) {
	log.Printf("slc: start F1/F2 (lex+parse)")
	p := frontend.NewParser()
	prog, err := p.Parse(strings.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("slc: parse: %w", err)
	}

	log.Printf("slc: start C2 (scope builder)")
	global, diags := sema.BuildScopes(prog)

	log.Printf("slc: start C3 (impl relocator + graph builder)")
	sema.RelocateImpls(global, diags)
	inherit, depend := sema.BuildGraphs(global)

	log.Printf("slc: start C4 (cycle detector)")
	inheritCycle, dependCycle := sema.DiagnoseCycles(inherit, depend, diags)

	log.Printf("slc: start C5 (semantic checker)")
	checkDiags := sema.Check(global, prog)
	diags.Merge(checkDiags)

	log.Printf("slc: start R1 (symbol-table report)")
	reportText := report.Render(global)

	gatesPassed := !inheritCycle && !dependCycle && diags.Accept()
	var asm string
	if gatesPassed {
		log.Printf("slc: start C6 (layout)")
		layout.Run(global, prog)
		log.Printf("slc: start C7 (code emitter)")
		asm = codegen.Emit(global, prog)
	} else {
		log.Printf("slc: skipping C6/C7, a gate failed (inheritCycle=%v dependCycle=%v accept=%v)",
			inheritCycle, dependCycle, diags.Accept())
	}

	return Result{
		Assembly:    asm,
		Report:      reportText,
		Diagnostics: diags.Items,
		Accepted:    gatesPassed,
	}, nil
}

// DiagnosticsText renders every diagnostic as one line, matching
// Diagnostic.String()'s "<code> <severity> line <n>: <message>" shape.
func DiagnosticsText(items []sema.Diagnostic) string {
	var b strings.Builder
	for _, d := range items {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}
