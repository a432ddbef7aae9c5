// Package plan reads YAML query plans and compiles them into managers.
//
// A plan names a list of queries and one main query. Queries become CTE
// bodies when another query lists them under "with", and can be folded into
// a later query with "merge". References only look backwards: a query may
// use the queries defined above it, which rules out cycles.
//
//	queries:
//	  active:
//	    from: users
//	    where:
//	      - {column: active, op: "=", value: true}
//	main:
//	  from: active
//	  with: [active]
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownQuery is returned for references to a query that is not
	// defined earlier in the plan.
	ErrUnknownQuery = errors.New("unknown query")

	// ErrNoMain is returned when a plan has no main query.
	ErrNoMain = errors.New("main query is required")
)

// Plan is a parsed plan file.
type Plan struct {
	Engine     string      `yaml:"engine"`
	Queries    Queries     `yaml:"queries"`
	Main       *Query      `yaml:"main"`
	SoftDelete *SoftDelete `yaml:"softdelete"`
}

// Query describes one SELECT, or a raw SQL body when Raw is set.
type Query struct {
	From      string      `yaml:"from"`
	Select    []string    `yaml:"select"`
	Distinct  bool        `yaml:"distinct"`
	Where     []Condition `yaml:"where"`
	Joins     []Join      `yaml:"joins"`
	With      []string    `yaml:"with"`
	Recursive bool        `yaml:"recursive"`
	Merge     []string    `yaml:"merge"`
	Order     []Order     `yaml:"order"`
	Limit     *int        `yaml:"limit"`
	Offset    *int        `yaml:"offset"`

	Raw   string `yaml:"raw"`
	Binds []any  `yaml:"binds"`
}

// Condition is a single "column op value" predicate.
type Condition struct {
	Column string `yaml:"column"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value"`
}

// Join adds a table or CTE to the query. Raw joins are copied verbatim.
type Join struct {
	Table string  `yaml:"table"`
	Type  string  `yaml:"type"`
	On    *JoinOn `yaml:"on"`
	Raw   string  `yaml:"raw"`
}

// JoinOn is an equality between two column references.
type JoinOn struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// Order sorts by a column.
type Order struct {
	Column string `yaml:"column"`
	Desc   bool   `yaml:"desc"`
}

// SoftDelete enables the softdelete transformer for the main query and
// every SELECT body it pulls in.
type SoftDelete struct {
	Column string   `yaml:"column"`
	Tables []string `yaml:"tables"`
}

// NamedQuery is an entry of Queries.
type NamedQuery struct {
	Name  string
	Query Query
}

// Queries keeps plan queries in file order.
type Queries []NamedQuery

// UnmarshalYAML decodes a mapping while preserving key order.
func (q *Queries) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: queries must be a mapping", value.Line)
	}
	seen := make(map[string]bool, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var nq NamedQuery
		if err := value.Content[i].Decode(&nq.Name); err != nil {
			return err
		}
		if seen[nq.Name] {
			return fmt.Errorf("line %d: query %q defined twice", value.Content[i].Line, nq.Name)
		}
		seen[nq.Name] = true
		if err := decodeStrict(value.Content[i+1], &nq.Query); err != nil {
			return fmt.Errorf("query %q: %w", nq.Name, err)
		}
		*q = append(*q, nq)
	}
	return nil
}

// decodeStrict decodes n into out, rejecting unknown fields. Node.Decode
// does not inherit the outer decoder's KnownFields setting.
func decodeStrict(n *yaml.Node, out any) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// Parse decodes a plan document. Unknown top-level and query fields are
// rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plan: empty document")
		}
		return nil, fmt.Errorf("plan: decode: %w", err)
	}
	return &p, nil
}

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return Parse(data)
}
