package visitors

import (
	"fmt"

	"github.com/bawdo/ctebee/nodes"
)

// Engines lists the dialect names accepted by ForEngine.
var Engines = []string{"postgres", "mysql", "sqlite"}

// ForEngine returns the visitor for a dialect name.
func ForEngine(engine string, opts ...Option) (nodes.Visitor, error) {
	switch engine {
	case "postgres":
		return NewPostgresVisitor(opts...), nil
	case "mysql":
		return NewMySQLVisitor(opts...), nil
	case "sqlite":
		return NewSQLiteVisitor(opts...), nil
	default:
		return nil, fmt.Errorf("visitors: unknown engine %q", engine)
	}
}

// ParamOption maps a parameterize setting to WithParams or WithoutParams.
func ParamOption(on bool) Option {
	if on {
		return WithParams()
	}
	return WithoutParams()
}
