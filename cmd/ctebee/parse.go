package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/ctebee/internal/plan"
)

// tokenize splits input into tokens, keeping single-quoted strings whole
// and recognising the comparison operators and punctuation.
func tokenize(input string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if inQuote {
			cur.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(input) && input[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inQuote = false
					flush()
				}
			}
			continue
		}

		switch {
		case ch == '\'':
			flush()
			cur.WriteByte(ch)
			inQuote = true
		case ch == '(' || ch == ')' || ch == ',':
			flush()
			tokens = append(tokens, string(ch))
		case ch == '!' && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, "!=")
			i++
		case (ch == '<' || ch == '>') && i+1 < len(input) && input[i+1] == '=':
			flush()
			tokens = append(tokens, string(ch)+"=")
			i++
		case ch == '<' && i+1 < len(input) && input[i+1] == '>':
			flush()
			tokens = append(tokens, "<>")
			i++
		case ch == '=' || ch == '>' || ch == '<':
			flush()
			tokens = append(tokens, string(ch))
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return tokens
}

// parseValue converts a token to a Go value suitable for a literal.
func parseValue(token string) (any, error) {
	switch strings.ToLower(token) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if len(token) >= 2 && strings.HasPrefix(token, "'") && strings.HasSuffix(token, "'") {
		return strings.ReplaceAll(token[1:len(token)-1], "''", "'"), nil
	}
	if i, err := strconv.Atoi(token); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("cannot parse value: %s", token)
}

// parseCondition reads "column op value" into a plan.Condition. Supported
// forms: comparisons, [not] like, [not] in (v, ...), is [not] null.
func parseCondition(input string) (plan.Condition, error) {
	tokens := tokenize(input)
	if len(tokens) < 2 {
		return plan.Condition{}, errors.New("expected: <column> <op> <value>")
	}
	c := plan.Condition{Column: tokens[0]}
	rest := tokens[1:]
	lower := func(i int) string {
		if i < len(rest) {
			return strings.ToLower(rest[i])
		}
		return ""
	}

	switch lower(0) {
	case "is":
		switch {
		case lower(1) == "null" && len(rest) == 2:
			c.Op = "is null"
		case lower(1) == "not" && lower(2) == "null" && len(rest) == 3:
			c.Op = "is not null"
		default:
			return plan.Condition{}, errors.New("expected NULL or NOT NULL after IS")
		}
		return c, nil
	case "not":
		switch lower(1) {
		case "like":
			c.Op = "not like"
			return single(c, rest[2:])
		case "in":
			c.Op = "not in"
			return list(c, rest[2:])
		default:
			return plan.Condition{}, errors.New("expected LIKE or IN after NOT")
		}
	case "like":
		c.Op = "like"
		return single(c, rest[1:])
	case "in":
		c.Op = "in"
		return list(c, rest[1:])
	case "=", "!=", "<>", ">", ">=", "<", "<=":
		c.Op = rest[0]
		return single(c, rest[1:])
	default:
		return plan.Condition{}, fmt.Errorf("unknown operator %q", rest[0])
	}
}

func single(c plan.Condition, tokens []string) (plan.Condition, error) {
	if len(tokens) != 1 {
		return plan.Condition{}, fmt.Errorf("%s takes exactly one value", strings.ToUpper(c.Op))
	}
	v, err := parseValue(tokens[0])
	if err != nil {
		return plan.Condition{}, err
	}
	c.Value = v
	return c, nil
}

func list(c plan.Condition, tokens []string) (plan.Condition, error) {
	var vals []any
	for _, t := range tokens {
		if t == "(" || t == ")" || t == "," {
			continue
		}
		v, err := parseValue(t)
		if err != nil {
			return plan.Condition{}, err
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return plan.Condition{}, fmt.Errorf("%s requires at least one value", strings.ToUpper(c.Op))
	}
	c.Value = vals
	return c, nil
}

// splitList splits a comma separated argument list, dropping blanks.
func splitList(args string) []string {
	var out []string
	for _, p := range strings.Split(args, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
