package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"softwares_for_struct_lang/frontend"
	"softwares_for_struct_lang/sema"
)

func TestRender_GlobalAndStructScopesNest(t *testing.T) {
	p := frontend.NewParser()
	prog, err := p.Parse(strings.NewReader(`
	struct Point {
		public let x: integer;
		public func getX(): integer;
	}
	impl Point {
		func getX(): integer { return (x); }
	}
	func main(): void {
		let p: Point;
		write(p.getX());
	}
	`))
	require.NoError(t, err)

	global, diags := sema.BuildScopes(prog)
	sema.RelocateImpls(global, diags)
	require.True(t, diags.Accept(), diags.Items)
	checkDiags := sema.Check(global, prog)
	require.True(t, checkDiags.Accept(), checkDiags.Items)

	text := Render(global)
	assert.Contains(t, text, "global")
	assert.Contains(t, text, "Point")
	assert.Contains(t, text, "struct")
	assert.Contains(t, text, "x")
	assert.Contains(t, text, "getX")
	assert.Contains(t, text, "public")
	assert.Contains(t, text, "+--")
}

func TestRender_EmptyProgramStillEmitsGlobalBox(t *testing.T) {
	p := frontend.NewParser()
	prog, err := p.Parse(strings.NewReader(""))
	require.NoError(t, err)
	global, _ := sema.BuildScopes(prog)

	text := Render(global)
	assert.Contains(t, text, "global")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "+") || strings.HasPrefix(l, "|"))
	}
}
