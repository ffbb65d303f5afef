package filter

import (
	"fmt"

	"github.com/sandevgo/motorbot/internal/core"
	"github.com/sandevgo/motorbot/pkg/numeral"
)

// Compiler turns classifier filters into store-ready predicates.
// Predicate order follows filter order, nothing is reordered.
type Compiler struct {
	aliases *AliasTable
}

func NewCompiler(aliases *AliasTable) *Compiler {
	if aliases == nil {
		aliases = DefaultAliasTable()
	}
	return &Compiler{aliases: aliases}
}

// Compile emits one predicate per usable filter. Range and equality
// values run through numeral normalization so "500萬" compares as
// 5000000; everything else becomes a Contains predicate. Filters with
// nil or empty-string values never produce a predicate.
func (c *Compiler) Compile(filters []core.Filter) []core.Predicate {
	preds := make([]core.Predicate, 0, len(filters))
	for _, f := range filters {
		if f.Value == nil {
			continue
		}
		if s, ok := f.Value.(string); ok && s == "" {
			continue
		}

		field := c.aliases.ColumnFor(f.Field)
		switch f.Op {
		case core.OpEq, core.OpGte, core.OpLte:
			preds = append(preds, core.Predicate{
				Field: field,
				Op:    f.Op,
				Value: encode(numeral.Normalize(f.Value)),
			})
		default:
			preds = append(preds, core.Predicate{
				Field: field,
				Op:    core.OpContains,
				Value: encode(f.Value),
			})
		}
	}
	return preds
}

func encode(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case int:
		return fmt.Sprintf("%d", n)
	case int64:
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%v", v)
}
