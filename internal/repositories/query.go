package repositories

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Dialect selects the parameter syntax an entity query compiles to.
type Dialect int

const (
	SQLite   Dialect = iota // ?N positional, :name named
	Postgres                // $N positional, @name named
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Query is an entity query compiled to native SQL for one [Dialect].
type Query struct {
	Source     string   // Source is the entity query as written
	SQL        string   // SQL is the compiled native statement
	Positional int      // Positional is the highest ?N index referenced
	Named      []string // Named lists named parameters in order of first use
}

var queryHead = regexp.MustCompile(`(?is)^\s*select\s+(\w+)\s+from\s+(\w+)\s+(\w+)\s*(?:where\s+(.+?))?\s*$`)

// CompileQuery translates an entity query of the form
//
//	select <alias> from <Entity> <alias> [where <condition>]
//
// into native SQL. Inside the condition, <alias>.<field> references are replaced by their
// columns and parameters are rewritten for the dialect. Quoted literals are copied verbatim.
// A query may not mix positional and named parameters.
func CompileQuery(source string, entity Entity, dialect Dialect) (*Query, error) {
	m := queryHead.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("malformed entity query: %q", source)
	}

	selectAlias, entityName, alias, where := m[1], m[2], m[3], m[4]
	if entityName != entity.Name {
		return nil, fmt.Errorf("unknown entity %q, expected %q", entityName, entity.Name)
	}
	if selectAlias != alias {
		return nil, fmt.Errorf("select alias %q does not match entity alias %q", selectAlias, alias)
	}

	q := &Query{Source: source}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s %s", entity.SelectList(alias), entity.Table, alias)

	if where != "" {
		cond, err := q.compileCondition(where, alias, entity, dialect)
		if err != nil {
			return nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}

	if q.Positional > 0 && len(q.Named) > 0 {
		return nil, fmt.Errorf("entity query mixes positional and named parameters: %q", source)
	}

	q.SQL = b.String()
	return q, nil
}

// MustCompileQuery is like [CompileQuery] but panics on error. Intended for package-level queries.
func MustCompileQuery(source string, entity Entity, dialect Dialect) *Query {
	q, err := CompileQuery(source, entity, dialect)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) compileCondition(cond, alias string, entity Entity, dialect Dialect) (string, error) {
	var out strings.Builder
	runes := []rune(cond)

	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case r == '\'':
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\'' {
					if j+1 < len(runes) && runes[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			if j >= len(runes) {
				return "", fmt.Errorf("unterminated string literal in %q", cond)
			}
			out.WriteString(string(runes[i : j+1]))
			i = j + 1

		case r == '?':
			j := i + 1
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("positional parameter without index in %q", cond)
			}
			n, _ := strconv.Atoi(string(runes[i+1 : j]))
			if n < 1 {
				return "", fmt.Errorf("positional parameters start at 1 in %q", cond)
			}
			if n > q.Positional {
				q.Positional = n
			}
			if dialect == Postgres {
				fmt.Fprintf(&out, "$%d", n)
			} else {
				fmt.Fprintf(&out, "?%d", n)
			}
			i = j

		case r == ':':
			j := i + 1
			for j < len(runes) && isIdent(runes[j]) {
				j++
			}
			if j == i+1 {
				return "", fmt.Errorf("named parameter without name in %q", cond)
			}
			name := string(runes[i+1 : j])
			q.addNamed(name)
			if dialect == Postgres {
				out.WriteString("@" + name)
			} else {
				out.WriteString(":" + name)
			}
			i = j

		case isIdent(r):
			j := i
			for j < len(runes) && isIdent(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			if j < len(runes) && runes[j] == '.' && word == alias {
				k := j + 1
				for k < len(runes) && isIdent(runes[k]) {
					k++
				}
				field := string(runes[j+1 : k])
				col, ok := entity.ColumnFor(field)
				if !ok {
					return "", fmt.Errorf("entity %s has no field %q", entity.Name, field)
				}
				out.WriteString(alias + "." + col)
				i = k
				continue
			}
			out.WriteString(word)
			i = j

		default:
			out.WriteRune(r)
			i++
		}
	}

	return out.String(), nil
}

func (q *Query) addNamed(name string) {
	for _, n := range q.Named {
		if n == name {
			return
		}
	}
	q.Named = append(q.Named, name)
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
