package sqlscan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/pkg/sqlscan"
	"github.com/ae-kit/tools/pkg/token"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
	}{
		{
			name:  "casts quoting and macros",
			input: "select a::int, \"Quoted Col\", `bt` from {{ ref('x') }} -- trailing\n;",
			want: []token.TokenType{
				token.SELECT, token.IDENT, token.DCOLON, token.IDENT, token.COMMA,
				token.IDENT, token.COMMA, token.IDENT, token.FROM, token.MACRO,
				token.SEMICOLON, token.EOF,
			},
		},
		{
			name:  "jinja statements and comments are skipped",
			input: "{% if is_incremental() %}select 1{% endif %}{# note #}",
			want:  []token.TokenType{token.SELECT, token.NUMBER, token.EOF},
		},
		{
			name:  "block comments are skipped",
			input: "/* header */ select /* inline */ x",
			want:  []token.TokenType{token.SELECT, token.IDENT, token.EOF},
		},
		{
			name:  "operators",
			input: "a <> b >= c || d -> e",
			want: []token.TokenType{
				token.IDENT, token.NE, token.IDENT, token.GE, token.IDENT,
				token.DPIPE, token.IDENT, token.ARROW, token.IDENT, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := sqlscan.Tokenize(tt.input)
			got := make([]token.TokenType, 0, len(toks))
			for _, tok := range toks {
				got = append(got, tok.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenizeLiterals(t *testing.T) {
	toks := sqlscan.Tokenize(`'it''s' "Mixed ""Case""" {{ source('raw', 'a}}b') }} 1.5e3`)
	require.Len(t, toks, 5)

	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "it's", toks[0].Literal)

	assert.Equal(t, token.IDENT, toks[1].Type)
	assert.Equal(t, `Mixed "Case"`, toks[1].Literal)
	assert.True(t, toks[1].Quoted)

	assert.Equal(t, token.MACRO, toks[2].Type)
	assert.Equal(t, "{{ source('raw', 'a}}b') }}", toks[2].Literal)

	assert.Equal(t, token.NUMBER, toks[3].Type)
	assert.Equal(t, "1.5e3", toks[3].Literal)
}

func TestTokenPositions(t *testing.T) {
	toks := sqlscan.Tokenize("select\n  id")
	require.Len(t, toks, 3)
	assert.Equal(t, "1:1", toks[0].Pos.String())
	assert.Equal(t, "2:3", toks[1].Pos.String())
}
