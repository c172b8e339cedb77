package pipeline

import (
	"sort"
	"strings"
)

// Pseudo-stage names accepted in configured orders for readability.
// Import and merge run under the orchestrator's concurrency guard before
// any step does; Resolve strips them so the runner never sees them.
const (
	PseudoStageImport = "import"
	PseudoStageMerge  = "merge"
)

// OrderResolver decides which steps run for a source, in which order.
type OrderResolver struct {
	defaultOrder []string
	sourceOrders map[string][]string
}

// NewOrderResolver creates a resolver with a default order and optional
// per-source overrides.
func NewOrderResolver(defaultOrder []string, sourceOrders map[string][]string) *OrderResolver {
	return &OrderResolver{
		defaultOrder: defaultOrder,
		sourceOrders: sourceOrders,
	}
}

// Resolve returns the step order for a source: its configured override when
// one exists, otherwise the default order. Source matching is
// case-insensitive because TOML table keys arrive lowercased. The returned
// slice is a copy with pseudo-stage names stripped.
func (r *OrderResolver) Resolve(sourceCode string) []string {
	order := r.defaultOrder
	for code, steps := range r.sourceOrders {
		if strings.EqualFold(code, sourceCode) && len(steps) > 0 {
			order = steps
			break
		}
	}

	resolved := make([]string, 0, len(order))
	for _, name := range order {
		if name == PseudoStageImport || name == PseudoStageMerge {
			continue
		}
		resolved = append(resolved, name)
	}
	return resolved
}

// ConfiguredNames returns every step name any order can resolve to,
// deduplicated and sorted, with pseudo-stages stripped. Used to
// validate the whole configuration against the registry at startup.
func (r *OrderResolver) ConfiguredNames() []string {
	seen := make(map[string]bool)
	collect := func(order []string) {
		for _, name := range order {
			if name == PseudoStageImport || name == PseudoStageMerge {
				continue
			}
			seen[name] = true
		}
	}
	collect(r.defaultOrder)
	for _, order := range r.sourceOrders {
		collect(order)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
