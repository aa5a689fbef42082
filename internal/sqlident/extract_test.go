package sqlident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Statements
// =============================================================================

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		tables  []string
		columns []string
	}{
		{
			name:    "simple select",
			sql:     `SELECT name, surname FROM persons WHERE lastname = 'x'`,
			tables:  []string{"persons"},
			columns: []string{"name", "surname", "lastname"},
		},
		{
			name: "aliases and joins",
			sql: `SELECT p.name AS n, COUNT(*) AS cnt
			      FROM people p JOIN orders o ON p.id = o.person_id
			      GROUP BY p.name ORDER BY cnt DESC`,
			tables:  []string{"people", "orders"},
			columns: []string{"name", "id", "person_id"},
		},
		{
			name:    "schema qualified table",
			sql:     `SELECT a FROM sales.t1, s.t2 WHERE b = 1`,
			tables:  []string{"t1", "t2"},
			columns: []string{"a", "b"},
		},
		{
			name:    "cte is not a table",
			sql:     `WITH recent AS (SELECT id, created FROM orders) SELECT r.id FROM recent r`,
			tables:  []string{"orders"},
			columns: []string{"id", "created"},
		},
		{
			name: "several ctes with column list",
			sql: `WITH a(x) AS (SELECT 1), b AS (SELECT y FROM a)
			      SELECT * FROM b JOIN real_t ON b.y = real_t.z`,
			tables:  []string{"real_t"},
			columns: []string{"y", "z"},
		},
		{
			name:    "insert column list",
			sql:     `INSERT INTO staff (surname, email) VALUES ('a', 'b')`,
			tables:  []string{"staff"},
			columns: []string{"surname", "email"},
		},
		{
			name:    "misspelled insert target with column list",
			sql:     `INSERT INTO staf (surname) VALUES ('a')`,
			tables:  []string{"staf"},
			columns: []string{"surname"},
		},
		{
			name:    "qualified insert target with column list",
			sql:     `INSERT INTO hr.staff (surname, email) SELECT lastname, mail FROM people`,
			tables:  []string{"staff", "people"},
			columns: []string{"surname", "email", "lastname", "mail"},
		},
		{
			name:    "insert without column list",
			sql:     `INSERT INTO staf VALUES ('a')`,
			tables:  []string{"staf"},
			columns: nil,
		},
		{
			name:    "insert select",
			sql:     `INSERT INTO archive SELECT surname FROM people`,
			tables:  []string{"archive", "people"},
			columns: []string{"surname"},
		},
		{
			name:    "update",
			sql:     `UPDATE people SET surname = 'x', mail = other WHERE id = 1`,
			tables:  []string{"people"},
			columns: []string{"surname", "mail", "other", "id"},
		},
		{
			name:    "delete",
			sql:     `DELETE FROM people WHERE surname = 'x'`,
			tables:  []string{"people"},
			columns: []string{"surname"},
		},
		{
			name:    "functions casts and typed literals",
			sql:     `SELECT CAST(age AS integer), lower(name) FROM users WHERE created::date > DATE '2020-01-01'`,
			tables:  []string{"users"},
			columns: []string{"age", "name", "created"},
		},
		{
			name:    "extract date part",
			sql:     `SELECT EXTRACT(YEAR FROM created_at) FROM orders`,
			tables:  []string{"orders"},
			columns: []string{"created_at"},
		},
		{
			name:    "subquery in where",
			sql:     `SELECT name FROM people WHERE id IN (SELECT person_id FROM orders)`,
			tables:  []string{"people", "orders"},
			columns: []string{"name", "id", "person_id"},
		},
		{
			name:    "subquery in from",
			sql:     `SELECT total FROM (SELECT amount AS total FROM payments) x`,
			tables:  []string{"payments"},
			columns: []string{"total", "amount"},
		},
		{
			name:    "using",
			sql:     `SELECT * FROM a JOIN b USING (id)`,
			tables:  []string{"a", "b"},
			columns: []string{"id"},
		},
		{
			name:    "window function",
			sql:     `SELECT ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) rn FROM emp`,
			tables:  []string{"emp"},
			columns: []string{"dept", "salary"},
		},
		{
			name:    "case with bare alias",
			sql:     `SELECT CASE WHEN status = 'a' THEN 1 ELSE 0 END flag FROM t ORDER BY flag`,
			tables:  []string{"t"},
			columns: []string{"status"},
		},
		{
			name:    "quoted identifiers",
			sql:     `SELECT "Last Name", ` + "`e-mail`" + ` FROM "People"`,
			tables:  []string{"People"},
			columns: []string{"Last Name", "e-mail"},
		},
		{
			name:    "bind parameters",
			sql:     `SELECT name FROM people WHERE id = $1 AND surname = :s OR nick = ?`,
			tables:  []string{"people"},
			columns: []string{"name", "id", "surname", "nick"},
		},
		{
			name:    "nulls last",
			sql:     `SELECT name FROM people ORDER BY name NULLS LAST`,
			tables:  []string{"people"},
			columns: []string{"name"},
		},
		{
			name: "comments",
			sql: `-- find people
			      SELECT /* the name */ name FROM people`,
			tables:  []string{"people"},
			columns: []string{"name"},
		},
		{
			name:    "two statements",
			sql:     `SELECT a FROM t1; SELECT b FROM t2 WHERE a = 1`,
			tables:  []string{"t1", "t2"},
			columns: []string{"a", "b"},
		},
		{
			name:    "table only",
			sql:     `SELECT * FROM persons`,
			tables:  []string{"persons"},
			columns: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := Extract(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.tables, ids.Tables, "tables")
			assert.Equal(t, tt.columns, ids.Columns, "columns")
		})
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		line    int
		column  int
		message string
	}{
		{"unterminated string", `SELECT 'oops FROM t`, 1, 8, "unterminated string literal"},
		{"unterminated identifier", "SELECT name\nFROM \"people", 2, 6, "unterminated quoted identifier"},
		{"unterminated comment", `SELECT a /* b`, 1, 10, "unterminated block comment"},
		{"nothing named", `SELECT 1 + 2`, 1, 1, "no table or column names found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.sql)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Pos.Line)
			assert.Equal(t, tt.column, pe.Pos.Column)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	for _, sql := range []string{"", "   ", "-- just a comment"} {
		ids, err := Extract(sql)
		require.NoError(t, err, sql)
		assert.Empty(t, ids.Tables)
		assert.Empty(t, ids.Columns)
	}
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Pos: Position{Line: 3, Column: 7}, Message: "boom"}
	assert.Equal(t, "line 3, column 7: boom", err.Error())
}

// =============================================================================
// Lexer
// =============================================================================

func TestTokenize(t *testing.T) {
	toks, err := Tokenize("SELECT a.b, 'it''s', 1.5e3 <> $1 :: int")
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TOKEN_SELECT, TOKEN_IDENT, TOKEN_DOT, TOKEN_IDENT, TOKEN_COMMA,
		TOKEN_STRING, TOKEN_COMMA, TOKEN_NUMBER, TOKEN_OPERATOR, TOKEN_PARAM,
		TOKEN_DCOLON, TOKEN_IDENT, TOKEN_EOF,
	}, types)

	assert.Equal(t, "it's", toks[5].Literal)
	assert.Equal(t, "1.5e3", toks[7].Literal)
	assert.Equal(t, "<>", toks[8].Literal)
	assert.Equal(t, "$1", toks[9].Literal)
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := Tokenize("SELECT\n  name")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 9}, toks[1].Pos)
}

func TestTokenize_Unicode(t *testing.T) {
	toks, err := Tokenize("SELECT größe FROM maße")
	require.NoError(t, err)
	assert.Equal(t, "größe", toks[1].Literal)
	assert.Equal(t, "maße", toks[3].Literal)
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "IDENT", TOKEN_IDENT.String())
	assert.Equal(t, "select", TOKEN_SELECT.String())
	assert.True(t, TOKEN_WHERE.IsKeyword())
	assert.False(t, TOKEN_IDENT.IsKeyword())
}
