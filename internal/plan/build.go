package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/ctebee/cte"
	"github.com/bawdo/ctebee/managers"
	"github.com/bawdo/ctebee/nodes"
	"github.com/bawdo/ctebee/plugins/softdelete"
)

// Build compiles the plan into the main SelectManager. Errors name the
// query they came from.
func (p *Plan) Build() (*managers.SelectManager, error) {
	b := builder{bodies: make(map[string]nodes.Node, len(p.Queries))}
	for _, nq := range p.Queries {
		if err := cte.ValidateName(nq.Name); err != nil {
			return nil, fmt.Errorf("plan: query %q: %w", nq.Name, err)
		}
		body, err := b.body(nq.Query)
		if err != nil {
			return nil, fmt.Errorf("plan: query %q: %w", nq.Name, err)
		}
		b.bodies[nq.Name] = body
	}

	if p.Main == nil {
		return nil, fmt.Errorf("plan: %w", ErrNoMain)
	}
	if p.Main.Raw != "" {
		return nil, errors.New("plan: main: raw SQL is only allowed for named queries")
	}
	m, err := b.selectQuery(*p.Main)
	if err != nil {
		return nil, fmt.Errorf("plan: main: %w", err)
	}
	if p.SoftDelete != nil {
		m = m.Use(p.SoftDelete.transformer())
	}
	return m, nil
}

func (sd *SoftDelete) transformer() *softdelete.SoftDelete {
	var opts []softdelete.Option
	if sd.Column != "" {
		opts = append(opts, softdelete.WithColumn(sd.Column))
	}
	if len(sd.Tables) > 0 {
		opts = append(opts, softdelete.WithTables(sd.Tables...))
	}
	return softdelete.New(opts...)
}

// builder holds the bodies of the queries compiled so far.
type builder struct {
	bodies map[string]nodes.Node
}

func (b *builder) body(q Query) (nodes.Node, error) {
	if q.Raw == "" {
		return b.selectQuery(q)
	}
	if q.From != "" || len(q.Select) > 0 || len(q.Where) > 0 || len(q.Joins) > 0 {
		return nil, errors.New("raw cannot be combined with from, select, where or joins")
	}
	return nodes.NewSqlLiteral(q.Raw, q.Binds...), nil
}

func (b *builder) lookup(name string) (nodes.Node, error) {
	body, ok := b.bodies[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownQuery, name)
	}
	return body, nil
}

func (b *builder) selectQuery(q Query) (*managers.SelectManager, error) {
	if q.From == "" {
		return nil, errors.New("from is required")
	}
	from := nodes.NewTable(q.From)
	m := managers.NewSelectManager(from)

	if len(q.Select) > 0 {
		projections := make([]nodes.Node, len(q.Select))
		for i, ref := range q.Select {
			col, err := Column(ref, from)
			if err != nil {
				return nil, fmt.Errorf("select: %w", err)
			}
			projections[i] = col
		}
		m = m.Select(projections...)
	}
	if q.Distinct {
		m = m.Distinct()
	}

	for i, j := range q.Joins {
		var err error
		if m, err = addJoin(m, j); err != nil {
			return nil, fmt.Errorf("joins[%d]: %w", i, err)
		}
	}

	for i, c := range q.Where {
		cond, err := c.Node(from)
		if err != nil {
			return nil, fmt.Errorf("where[%d]: %w", i, err)
		}
		m = m.Where(cond)
	}

	for i, o := range q.Order {
		col, err := attribute(o.Column, from)
		if err != nil {
			return nil, fmt.Errorf("order[%d]: %w", i, err)
		}
		if o.Desc {
			m = m.Order(col.Desc())
		} else {
			m = m.Order(col.Asc())
		}
	}
	if q.Limit != nil {
		m = m.Limit(*q.Limit)
	}
	if q.Offset != nil {
		m = m.Offset(*q.Offset)
	}

	defs := make([]cte.Definition, 0, len(q.With))
	for _, name := range q.With {
		body, err := b.lookup(name)
		if err != nil {
			return nil, fmt.Errorf("with: %w", err)
		}
		defs = append(defs, cte.Define(name, body))
	}
	var err error
	if m, err = m.TryWith(defs...); err != nil {
		return nil, fmt.Errorf("with: %w", err)
	}
	if q.Recursive {
		m = m.WithRecursive()
	}

	for _, name := range q.Merge {
		body, err := b.lookup(name)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		other, ok := body.(*managers.SelectManager)
		if !ok {
			return nil, fmt.Errorf("merge: query %q is raw SQL", name)
		}
		m = m.Merge(other)
	}
	return m, nil
}

func addJoin(m *managers.SelectManager, j Join) (*managers.SelectManager, error) {
	if j.Raw != "" {
		if j.Table != "" || j.On != nil {
			return nil, errors.New("raw cannot be combined with table or on")
		}
		return m.StringJoin(j.Raw), nil
	}
	if j.Table == "" {
		return nil, errors.New("table is required")
	}
	table := nodes.NewTable(j.Table)

	jt, err := joinType(j.Type)
	if err != nil {
		return nil, err
	}
	if jt == nodes.CrossJoin {
		if j.On != nil {
			return nil, errors.New("cross join takes no on clause")
		}
		return m.CrossJoin(table), nil
	}
	if j.On == nil {
		return nil, fmt.Errorf("%s needs an on clause", strings.ToLower(jt.String()))
	}
	left, err := attribute(j.On.Left, m.Core.From)
	if err != nil {
		return nil, fmt.Errorf("on: %w", err)
	}
	right, err := attribute(j.On.Right, table)
	if err != nil {
		return nil, fmt.Errorf("on: %w", err)
	}
	return m.Join(table, jt).On(left.Eq(right)), nil
}

func joinType(name string) (nodes.JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "inner":
		return nodes.InnerJoin, nil
	case "left", "left outer":
		return nodes.LeftOuterJoin, nil
	case "right", "right outer":
		return nodes.RightOuterJoin, nil
	case "full", "full outer":
		return nodes.FullOuterJoin, nil
	case "cross":
		return nodes.CrossJoin, nil
	default:
		return 0, fmt.Errorf("unknown join type %q", name)
	}
}
