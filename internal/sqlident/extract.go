// Package sqlident extracts the table and column names a SQL statement
// refers to.
//
// Extraction is token based and dialect tolerant. It does not validate or
// rewrite the statement; it only collects the identifiers the
// reconciliation engine needs.
package sqlident

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/schemafix/pkg/reconcile"
)

// ParseError reports input that could not be tokenized or that names
// nothing.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// clause is the extraction state for the current token.
type clause int

const (
	clauseNone         clause = iota
	clauseSelect              // select list
	clauseExpr                // WHERE, ON, HAVING, GROUP BY, ORDER BY, SET, ...
	clauseTable               // expecting a table reference
	clauseAfterTable          // after a table reference: alias, comma, join
	clauseInsertTable         // after INSERT INTO t: optional column list
	clauseInsertCols          // INSERT column list
	clauseCTEName             // WITH: expecting a CTE name
	clauseCTEAfterName        // after the CTE name: column list or AS
	clauseCTEBody             // after AS: expecting the body
	clauseCTEDone             // after the body: comma or the main statement
	clauseSkip                // ignore identifiers
)

// frame is the state saved when entering parentheses.
type frame struct {
	restore clause
	call    bool // function call arguments
}

type extractor struct {
	toks    []Token
	i       int
	clause  clause
	stack   []frame
	insert  bool
	ctes    map[string]bool
	aliases map[string]bool
	tables  orderedSet
	columns orderedSet
}

// Extract returns the tables and columns sql refers to, in order of first
// appearance and without duplicates.
//
//   - Tables follow FROM, JOIN, UPDATE and INTO. Only the last segment of a
//     qualified name is kept.
//   - Columns come from select lists, WHERE, ON, USING, GROUP BY, ORDER BY,
//     HAVING, SET, RETURNING and INSERT column lists. A qualified reference
//     t.c yields c.
//   - Aliases, CTE names, function names, type names, keywords, literals,
//     bind parameters and * are skipped.
//
// Empty input yields empty identifiers. Input that has tokens but names
// nothing is an error.
func Extract(sql string) (reconcile.Identifiers, error) {
	toks, err := Tokenize(sql)
	if err != nil {
		return reconcile.Identifiers{}, err
	}

	e := &extractor{
		toks:    toks,
		ctes:    make(map[string]bool),
		aliases: make(map[string]bool),
	}
	e.run()

	ids := reconcile.Identifiers{Columns: e.columns.items}
	for _, t := range e.tables.items {
		if !e.ctes[strings.ToLower(t)] {
			ids.Tables = append(ids.Tables, t)
		}
	}

	if len(ids.Tables) == 0 && len(ids.Columns) == 0 && toks[0].Type != TOKEN_EOF {
		return reconcile.Identifiers{}, &ParseError{Pos: toks[0].Pos, Message: "no table or column names found"}
	}
	return ids, nil
}

func (e *extractor) peek(n int) Token {
	if j := e.i + n; j >= 0 && j < len(e.toks) {
		return e.toks[j]
	}
	return Token{Type: TOKEN_EOF}
}

func (e *extractor) run() {
	for ; e.i < len(e.toks); e.i++ {
		tok := e.toks[e.i]
		switch tok.Type {
		case TOKEN_EOF:
			return
		case TOKEN_SEMICOLON:
			e.clause = clauseNone
			e.stack = e.stack[:0]
			e.insert = false
		case TOKEN_SELECT:
			e.clause = clauseSelect
		case TOKEN_FROM, TOKEN_UPDATE:
			if !e.inCall() {
				e.clause = clauseTable
			}
		case TOKEN_JOIN:
			e.clause = clauseTable
		case TOKEN_INTO:
			e.clause = clauseTable
			e.insert = true
		case TOKEN_WHERE, TOKEN_ON, TOKEN_HAVING, TOKEN_QUALIFY, TOKEN_SET,
			TOKEN_RETURNING, TOKEN_VALUES, TOKEN_USING, TOKEN_LIMIT, TOKEN_OFFSET:
			e.clause = clauseExpr
		case TOKEN_BY:
			// GROUP BY, ORDER BY, PARTITION BY
			e.clause = clauseExpr
		case TOKEN_WITH:
			e.clause = clauseCTEName
		case TOKEN_NULLS:
			// NULLS FIRST / NULLS LAST
			if e.peek(1).Type == TOKEN_IDENT {
				e.i++
			}
		case TOKEN_AS:
			e.onAs()
		case TOKEN_DCOLON:
			if e.peek(1).Type == TOKEN_IDENT {
				e.i++
			}
		case TOKEN_COMMA:
			switch e.clause {
			case clauseAfterTable:
				e.clause = clauseTable
			case clauseCTEDone:
				e.clause = clauseCTEName
			}
		case TOKEN_LPAREN:
			e.onOpen()
		case TOKEN_RPAREN:
			if n := len(e.stack); n > 0 {
				e.clause = e.stack[n-1].restore
				e.stack = e.stack[:n-1]
			}
		case TOKEN_IDENT:
			e.onIdent(tok)
		}
	}
}

func (e *extractor) inCall() bool {
	return len(e.stack) > 0 && e.stack[len(e.stack)-1].call
}

func (e *extractor) onAs() {
	switch e.clause {
	case clauseCTEAfterName:
		e.clause = clauseCTEBody
	case clauseSelect:
		if e.inCall() {
			// CAST(x AS type)
			if e.peek(1).Type == TOKEN_IDENT {
				e.i++
			}
			return
		}
		if next := e.peek(1); next.Type == TOKEN_IDENT {
			e.aliases[strings.ToLower(next.Literal)] = true
			e.i++
		}
	default:
		// table aliases and CAST(x AS type)
		if e.peek(1).Type == TOKEN_IDENT {
			e.i++
		}
	}
}

func (e *extractor) onOpen() {
	prev := e.peek(-1)
	call := prev.Type == TOKEN_IDENT || prev.Type == TOKEN_CAST || prev.Type == TOKEN_FILTER || prev.Type == TOKEN_OVER

	switch {
	case e.clause == clauseCTEAfterName:
		e.push(clauseCTEAfterName, false)
		e.clause = clauseSkip
	case e.clause == clauseCTEBody:
		e.push(clauseCTEDone, false)
		e.clause = clauseNone
	case e.clause == clauseInsertTable:
		e.push(clauseNone, false)
		e.clause = clauseInsertCols
	case e.clause == clauseTable && call:
		// table function: its arguments are expressions
		e.push(clauseAfterTable, true)
		e.clause = clauseExpr
	case e.clause == clauseTable:
		// subquery or parenthesized join
		e.push(clauseAfterTable, false)
	case e.clause == clauseAfterTable:
		// column list of a table alias: t AS x(a, b)
		e.push(clauseAfterTable, false)
		e.clause = clauseSkip
	default:
		e.push(e.clause, call)
	}
}

func (e *extractor) push(restore clause, call bool) {
	e.stack = append(e.stack, frame{restore: restore, call: call})
}

func (e *extractor) onIdent(tok Token) {
	next := e.peek(1)

	switch e.clause {
	case clauseCTEName:
		e.ctes[strings.ToLower(tok.Literal)] = true
		e.clause = clauseCTEAfterName

	case clauseTable:
		name := tok.Literal
		for e.peek(1).Type == TOKEN_DOT && e.peek(2).Type == TOKEN_IDENT {
			e.i += 2
			name = e.toks[e.i].Literal
		}
		if e.insert {
			// INSERT INTO t (a, b): the list names columns of t
			e.tables.add(name)
			e.insert = false
			e.clause = clauseInsertTable
			return
		}
		if e.peek(1).Type == TOKEN_LPAREN {
			// table function, handled by onOpen
			return
		}
		e.tables.add(name)
		e.clause = clauseAfterTable

	case clauseSelect, clauseExpr:
		switch {
		case next.Type == TOKEN_DOT:
			// qualifier: t.c, s.t.c
		case next.Type == TOKEN_LPAREN:
			// function name
		case next.Type == TOKEN_STRING:
			// typed literal: DATE '2024-01-01'
		case next.Type == TOKEN_FROM && e.inCall():
			// date part: EXTRACT(YEAR FROM ts)
		case e.clause == clauseSelect && endsExpr(e.peek(-1)):
			// bare alias: SELECT count(*) n
			e.aliases[strings.ToLower(tok.Literal)] = true
		case e.clause == clauseExpr && e.aliases[strings.ToLower(tok.Literal)]:
			// reference to a select alias
		default:
			e.columns.add(tok.Literal)
		}

	case clauseInsertCols:
		e.columns.add(tok.Literal)
	}
}

// endsExpr reports whether tok can end a select-list expression, making a
// following identifier an alias.
func endsExpr(tok Token) bool {
	switch tok.Type {
	case TOKEN_IDENT, TOKEN_RPAREN, TOKEN_NUMBER, TOKEN_STRING, TOKEN_STAR,
		TOKEN_END, TOKEN_NULL, TOKEN_TRUE, TOKEN_FALSE, TOKEN_PARAM:
		return true
	}
	return false
}

// orderedSet keeps first occurrences in order.
type orderedSet struct {
	items []string
	seen  map[string]bool
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}
