package sema

import "strings"

// Graph is a directed graph over struct names: Order is DFS root order
// (struct declaration order), Edges[name] is that struct's out-edges
// in declaration order (inherit list order, or member declaration
// order for the dependency graph).
type Graph struct {
	Order []string
	Edges map[string][]string
}

const (
	white = 0
	gray  = 1
	black = 2
)

// DetectCycle runs the three-color DFS of spec.md §4.4: a gray-to-gray
// edge closes a cycle, reported as the path from the cycle's first
// node back to itself. Roots are visited in g.Order for determinism.
func DetectCycle(g *Graph) (path []string, found bool) {
	color := make(map[string]int, len(g.Order))
	var stack []string
	var cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, next := range g.Edges[node] {
			switch color[next] {
			case gray:
				idx := indexOf(stack, next)
				cycle = append(append([]string{}, stack[idx:]...), next)
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	for _, root := range g.Order {
		if color[root] == white {
			if dfs(root) {
				return cycle, true
			}
		}
	}
	return nil, false
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// PathString renders a cycle path as "a -> b -> ... -> a" for
// diagnostic messages (spec.md §4.4).
func PathString(path []string) string {
	return strings.Join(path, " -> ")
}

// DiagnoseCycles runs C4 over both graphs built by C3 and records 14.1
// for each one found. The two booleans tell the driver (D1) whether
// inheritance resolution and/or layout may proceed — spec.md §7's gate.
func DiagnoseCycles(inherit, depend *Graph, diags *Diagnostics) (inheritCycle, dependCycle bool) {
	if path, found := DetectCycle(inherit); found {
		diags.Error(CodeCycle, "inheritance cycle: "+PathString(path), 0)
		inheritCycle = true
	}
	if path, found := DetectCycle(depend); found {
		diags.Error(CodeCycle, "struct member dependency cycle: "+PathString(path), 0)
		dependCycle = true
	}
	return inheritCycle, dependCycle
}
