// Package sqlscan infers the output column names of a dbt model's SQL.
//
// It is a heuristic scanner, not a parser: it finds the CTE list and the
// final SELECT by token lookahead and names each select item from its alias,
// its trailing identifier, or the last part of a qualified column reference.
// Star items are expanded against the CTE or subquery they select from.
package sqlscan

import (
	"errors"
	"strings"

	"github.com/ae-kit/tools/pkg/token"
)

// ErrNoSelect is returned when the input contains no SELECT statement.
var ErrNoSelect = errors.New("no SELECT statement found")

// Options tunes column inference.
type Options struct {
	// LastCTE resolves a star select in the final statement against the last
	// CTE, whatever the FROM clause names.
	LastCTE bool
}

// Result is the outcome of scanning a model.
type Result struct {
	// Columns are the inferred output columns, in order, without duplicates.
	Columns []string
	// Star reports whether the final SELECT selected *.
	Star bool
	// Source is the CTE a final star select was resolved against.
	Source string
	// CTEs lists the top-level CTE names in declaration order.
	CTEs []string
	// Skipped lists select items that have no derivable name, such as an
	// unaliased function call.
	Skipped []string
	// Unresolved lists star items whose relation could not be expanded,
	// such as SELECT * FROM {{ ref('orders') }}.
	Unresolved []string
}

// OutputColumns scans sql with default options.
func OutputColumns(sql string) (*Result, error) {
	return Scan(sql, Options{})
}

// Scan infers the output columns of the first SELECT statement in sql.
func Scan(sql string, opts Options) (*Result, error) {
	s := &scanner{opts: opts, res: &Result{}}
	cols, ok := s.query(statement(Tokenize(sql)), nil, true)
	if !ok {
		return nil, ErrNoSelect
	}
	s.res.Columns = dedupe(cols)
	s.res.Skipped = dedupe(s.res.Skipped)
	s.res.Unresolved = dedupe(s.res.Unresolved)
	if s.root != nil {
		for _, c := range s.root.order {
			s.res.CTEs = append(s.res.CTEs, c.name)
		}
	}
	return s.res, nil
}

type scanner struct {
	opts Options
	res  *Result
	root *scope
}

type cte struct {
	name    string
	columns []string // explicit column list: name (a, b) as (...)
	body    []token.Token
	scope   *scope

	resolving bool
	done      bool
	ok        bool
	resolved  []string
}

type scope struct {
	parent *scope
	ctes   map[string]*cte
	order  []*cte
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, ctes: make(map[string]*cte)}
}

func (sc *scope) add(c *cte) {
	c.scope = sc
	sc.ctes[strings.ToLower(c.name)] = c
	sc.order = append(sc.order, c)
}

func (sc *scope) lookup(name string) *cte {
	key := strings.ToLower(name)
	for cur := sc; cur != nil; cur = cur.parent {
		if c, ok := cur.ctes[key]; ok {
			return c
		}
	}
	return nil
}

func (sc *scope) last() *cte {
	for cur := sc; cur != nil; cur = cur.parent {
		if n := len(cur.order); n > 0 {
			return cur.order[n-1]
		}
	}
	return nil
}

type relation struct {
	name  string
	alias string
	sub   []token.Token
	// opaque relations (jinja refs, table functions) never resolve
	opaque bool
}

type selectItem struct {
	name      string
	star      bool
	qualifier string
	exclude   []string
	rename    map[string]string
}

// query returns the output columns of a (possibly WITH-prefixed) query.
func (s *scanner) query(toks []token.Token, parent *scope, top bool) ([]string, bool) {
	for len(toks) > 0 && toks[0].Type == token.MACRO {
		toks = toks[1:]
	}

	sc := newScope(parent)
	if top && s.root == nil {
		s.root = sc
	}
	rest := toks[parseWith(toks, sc):]

	start := indexAtDepth0(rest, token.SELECT)
	if start < 0 {
		if len(rest) > 0 && rest[0].Type == token.LPAREN {
			if end := matchParen(rest, 0); end > 0 {
				return s.query(rest[1:end], sc, top)
			}
		}
		return nil, false
	}

	body := rest[start+1:]
	items, end := selectList(body)
	rels := fromClause(body[end:])

	var cols []string
	for _, item := range items {
		it := nameItem(item)
		switch {
		case it.star:
			if top {
				s.res.Star = true
			}
			cols = append(cols, s.expandStar(it, rels, sc, top, render(item))...)
		case it.name != "":
			cols = append(cols, it.name)
		default:
			s.res.Skipped = append(s.res.Skipped, render(item))
		}
	}
	return cols, true
}

func (s *scanner) expandStar(it selectItem, rels []relation, sc *scope, top bool, text string) []string {
	if top && s.opts.LastCTE {
		if last := sc.last(); last != nil {
			if cols, ok := s.cteColumns(last); ok {
				s.res.Source = last.name
				return it.apply(cols)
			}
		}
	}

	targets := rels
	if it.qualifier != "" {
		targets = nil
		for _, r := range rels {
			if strings.EqualFold(r.alias, it.qualifier) || (r.alias == "" && strings.EqualFold(r.name, it.qualifier)) {
				targets = append(targets, r)
			}
		}
	}

	var cols []string
	resolved := false
	for _, r := range targets {
		c, ok := s.relationColumns(r, sc)
		if !ok {
			continue
		}
		if top && s.res.Source == "" && r.sub == nil {
			s.res.Source = r.name
		}
		resolved = true
		cols = append(cols, c...)
	}

	if !resolved && top {
		if last := sc.last(); last != nil {
			if c, ok := s.cteColumns(last); ok {
				s.res.Source = last.name
				return it.apply(c)
			}
		}
	}
	if !resolved {
		s.res.Unresolved = append(s.res.Unresolved, text)
		return nil
	}
	return it.apply(cols)
}

func (s *scanner) relationColumns(r relation, sc *scope) ([]string, bool) {
	switch {
	case r.sub != nil:
		return s.query(r.sub, sc, false)
	case r.opaque:
		return nil, false
	}
	if c := sc.lookup(r.name); c != nil {
		return s.cteColumns(c)
	}
	return nil, false
}

func (s *scanner) cteColumns(c *cte) ([]string, bool) {
	if len(c.columns) > 0 {
		return c.columns, true
	}
	if c.done {
		return c.resolved, c.ok
	}
	if c.resolving {
		return nil, false
	}
	c.resolving = true
	c.resolved, c.ok = s.query(c.body, c.scope, false)
	c.resolving = false
	c.done = true
	return c.resolved, c.ok
}

func (it selectItem) apply(cols []string) []string {
	if len(it.exclude) == 0 && len(it.rename) == 0 {
		return cols
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if containsFold(it.exclude, c) {
			continue
		}
		if to, ok := it.rename[strings.ToLower(c)]; ok {
			c = to
		}
		out = append(out, c)
	}
	return out
}

// parseWith registers the CTEs of a leading WITH clause in sc and returns the
// index of the first token after the CTE list.
func parseWith(toks []token.Token, sc *scope) int {
	if len(toks) == 0 || toks[0].Type != token.WITH {
		return 0
	}
	i := 1
	if i < len(toks) && toks[i].Type == token.RECURSIVE {
		i++
	}
	for i < len(toks) {
		if !toks[i].IsWord() {
			return i
		}
		c := &cte{name: toks[i].Literal}
		i++

		if i < len(toks) && toks[i].Type == token.LPAREN {
			end := matchParen(toks, i)
			if end < 0 {
				return len(toks)
			}
			for _, t := range toks[i+1 : end] {
				if t.IsWord() {
					c.columns = append(c.columns, t.Literal)
				}
			}
			i = end + 1
		}

		if i >= len(toks) || toks[i].Type != token.AS {
			return i
		}
		i++
		// [NOT] MATERIALIZED
		for i < len(toks) && toks[i].Type == token.IDENT {
			i++
		}
		if i >= len(toks) || toks[i].Type != token.LPAREN {
			return i
		}
		end := matchParen(toks, i)
		if end < 0 {
			return len(toks)
		}
		c.body = toks[i+1 : end]
		sc.add(c)

		i = end + 1
		if i < len(toks) && toks[i].Type == token.COMMA {
			i++
			continue
		}
		return i
	}
	return i
}

// selectList splits the tokens following SELECT into items and returns the
// index of the token that ended the list.
func selectList(body []token.Token) ([][]token.Token, int) {
	i := 0
modifiers:
	for i < len(body) {
		switch body[i].Type {
		case token.DISTINCT:
			i++
			if i+1 < len(body) && body[i].Type == token.ON && body[i+1].Type == token.LPAREN {
				if end := matchParen(body, i+1); end > 0 {
					i = end + 1
				}
			}
		case token.ALL:
			i++
		case token.TOP:
			i++
			if i < len(body) && body[i].Type == token.NUMBER {
				i++
			}
		default:
			break modifiers
		}
	}

	var items [][]token.Token
	depth := 0
	start := i
	for ; i < len(body); i++ {
		t := body[i]
		switch {
		case opens(t.Type):
			depth++
		case closes(t.Type):
			depth--
			if depth < 0 {
				return appendItem(items, body[start:i]), i
			}
		case depth > 0:
		case t.Type == token.COMMA:
			items = appendItem(items, body[start:i])
			start = i + 1
		case endsSelectList(body, i):
			return appendItem(items, body[start:i]), i
		}
	}
	return appendItem(items, body[start:]), len(body)
}

func endsSelectList(toks []token.Token, i int) bool {
	switch toks[i].Type {
	case token.EXCEPT:
		// BigQuery: SELECT * EXCEPT (a, b)
		starBefore := i > 0 && toks[i-1].Type == token.STAR
		parenAfter := i+1 < len(toks) && toks[i+1].Type == token.LPAREN
		return !(starBefore && parenAfter)
	case token.FROM, token.WHERE, token.GROUP, token.HAVING, token.ORDER, token.LIMIT,
		token.UNION, token.INTERSECT, token.MINUS_KW, token.QUALIFY, token.WINDOW,
		token.SEMICOLON, token.EOF:
		return true
	}
	return false
}

func endsFrom(tt token.TokenType) bool {
	switch tt {
	case token.WHERE, token.GROUP, token.HAVING, token.ORDER, token.LIMIT,
		token.UNION, token.EXCEPT, token.INTERSECT, token.MINUS_KW, token.QUALIFY,
		token.WINDOW, token.SEMICOLON, token.EOF, token.RPAREN:
		return true
	}
	return false
}

// fromClause collects the relations of a FROM clause. toks starts at the
// token that ended the select list.
func fromClause(toks []token.Token) []relation {
	if len(toks) == 0 || toks[0].Type != token.FROM {
		return nil
	}
	var rels []relation
	expect := true
	for i := 1; i < len(toks); {
		t := toks[i]
		if endsFrom(t.Type) {
			break
		}
		if expect {
			rel, next := readRelation(toks, i)
			if rel.name != "" || rel.sub != nil || rel.opaque {
				rels = append(rels, rel)
			}
			i = next
			expect = false
			continue
		}
		switch t.Type {
		case token.COMMA, token.JOIN:
			expect = true
		case token.LPAREN:
			// ON (...) or USING (...)
			if end := matchParen(toks, i); end > 0 {
				i = end
			}
		}
		i++
	}
	return rels
}

func readRelation(toks []token.Token, i int) (relation, int) {
	var rel relation
	if i < len(toks) && toks[i].Type == token.LATERAL {
		i++
	}
	if i >= len(toks) {
		return rel, i
	}

	switch t := toks[i]; {
	case t.Type == token.LPAREN:
		end := matchParen(toks, i)
		if end < 0 {
			return rel, len(toks)
		}
		rel.sub = toks[i+1 : end]
		i = end + 1
	case t.Type == token.MACRO:
		rel.name = t.Literal
		rel.opaque = true
		i++
	case t.IsWord():
		rel.name = t.Literal
		i++
		for i+1 < len(toks) && toks[i].Type == token.DOT && toks[i+1].IsWord() {
			rel.name = toks[i+1].Literal
			i += 2
		}
		if i < len(toks) && toks[i].Type == token.LPAREN {
			end := matchParen(toks, i)
			if end < 0 {
				return rel, len(toks)
			}
			rel.opaque = true
			i = end + 1
		}
	default:
		return rel, i + 1
	}

	if i < len(toks) && toks[i].Type == token.AS {
		i++
	}
	if i < len(toks) && toks[i].Type == token.IDENT {
		rel.alias = toks[i].Literal
		i++
	}
	return rel, i
}

// nameItem derives the output name of a single select item.
func nameItem(item []token.Token) selectItem {
	if it, ok := starItem(item); ok {
		return it
	}

	last := item[len(item)-1]
	if len(item) >= 2 && item[len(item)-2].Type == token.AS && last.IsWord() {
		return selectItem{name: last.Literal}
	}
	if len(item) >= 2 && implicitAlias(item) {
		return selectItem{name: last.Literal}
	}
	if name, ok := columnRef(stripCast(item)); ok {
		return selectItem{name: name}
	}
	return selectItem{}
}

// starItem recognises *, t.*, schema.t.* and their EXCLUDE / EXCEPT /
// RENAME / REPLACE modifiers.
func starItem(item []token.Token) (selectItem, bool) {
	var it selectItem
	j := 0
	for j+1 < len(item) && item[j].IsWord() && item[j+1].Type == token.DOT {
		it.qualifier = item[j].Literal
		j += 2
	}
	if j >= len(item) || item[j].Type != token.STAR {
		return it, false
	}
	it.star = true

	for i := j + 1; i < len(item); {
		kw := strings.ToLower(item[i].Literal)
		i++
		var group []token.Token
		if i < len(item) && item[i].Type == token.LPAREN {
			end := matchParen(item, i)
			if end < 0 {
				end = len(item)
			}
			group = item[i+1 : end]
			i = end + 1
		} else if i < len(item) {
			group = item[i : i+1]
			i++
		}

		switch kw {
		case "exclude", "except":
			for _, t := range group {
				if t.IsWord() {
					it.exclude = append(it.exclude, t.Literal)
				}
			}
		case "rename":
			if it.rename == nil {
				it.rename = make(map[string]string)
			}
			for k := 0; k+2 < len(group); k++ {
				if group[k].IsWord() && group[k+1].Type == token.AS && group[k+2].IsWord() {
					it.rename[strings.ToLower(group[k].Literal)] = group[k+2].Literal
					k += 2
				}
			}
		}
	}
	return it, true
}

// words that end an expression rather than alias it
var notAlias = map[string]bool{
	"null": true, "true": true, "false": true, "asc": true, "desc": true,
	"nulls": true, "first": true, "last": true,
}

// words after which a trailing identifier is an operand, not an alias
var notAliasAfter = map[string]bool{
	"is": true, "not": true, "and": true, "or": true, "like": true, "ilike": true,
	"rlike": true, "in": true, "between": true, "then": true, "else": true,
	"when": true, "interval": true, "escape": true,
}

func implicitAlias(item []token.Token) bool {
	last := item[len(item)-1]
	if last.Type != token.IDENT {
		return false
	}
	if !last.Quoted && notAlias[strings.ToLower(last.Literal)] {
		return false
	}
	prev := item[len(item)-2]
	switch prev.Type {
	case token.IDENT:
		return prev.Quoted || !notAliasAfter[strings.ToLower(prev.Literal)]
	case token.NUMBER, token.STRING, token.RPAREN, token.RBRACKET, token.MACRO, token.END:
		return true
	}
	return false
}

// stripCast drops a trailing ::type cast from a select item.
func stripCast(item []token.Token) []token.Token {
	depth := 0
	for i, t := range item {
		switch {
		case opens(t.Type):
			depth++
		case closes(t.Type):
			depth--
		case depth == 0 && t.Type == token.DCOLON:
			return item[:i]
		}
	}
	return item
}

// columnRef names a bare or qualified column reference: col, t.col, db.t.col.
func columnRef(expr []token.Token) (string, bool) {
	if len(expr) == 0 || len(expr)%2 == 0 {
		return "", false
	}
	for i, t := range expr {
		if i%2 == 1 {
			if t.Type != token.DOT {
				return "", false
			}
			continue
		}
		if t.Type != token.IDENT {
			return "", false
		}
	}
	return expr[len(expr)-1].Literal, true
}

// statement returns the tokens of the first ;-separated statement that
// contains a SELECT, terminated by EOF.
func statement(toks []token.Token) []token.Token {
	depth := 0
	start := 0
	hasSelect := false
	for i, t := range toks {
		switch {
		case opens(t.Type):
			depth++
		case closes(t.Type):
			depth--
		case t.Type == token.SELECT:
			hasSelect = true
		case depth == 0 && (t.Type == token.SEMICOLON || t.Type == token.EOF):
			if hasSelect {
				stmt := append([]token.Token{}, toks[start:i]...)
				return append(stmt, token.Token{Type: token.EOF, Pos: t.Pos})
			}
			start = i + 1
		}
	}
	return toks
}

func indexAtDepth0(toks []token.Token, tt token.TokenType) int {
	depth := 0
	for i, t := range toks {
		switch {
		case opens(t.Type):
			depth++
		case closes(t.Type):
			depth--
		case depth == 0 && t.Type == tt:
			return i
		}
	}
	return -1
}

// matchParen returns the index of the ')' matching the '(' at i, or -1.
func matchParen(toks []token.Token, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch toks[j].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func opens(tt token.TokenType) bool {
	return tt == token.LPAREN || tt == token.LBRACKET || tt == token.LBRACE
}

func closes(tt token.TokenType) bool {
	return tt == token.RPAREN || tt == token.RBRACKET || tt == token.RBRACE
}

func appendItem(items [][]token.Token, item []token.Token) [][]token.Token {
	if len(item) == 0 {
		return items
	}
	return append(items, item)
}

// render rebuilds a compact text form of a token run for messages.
func render(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		lit := t.Literal
		switch {
		case t.Type == token.STRING:
			lit = "'" + lit + "'"
		case t.Quoted:
			lit = `"` + lit + `"`
		}
		if i > 0 && !tight(toks[i-1].Type, t.Type) {
			b.WriteByte(' ')
		}
		b.WriteString(lit)
	}
	return b.String()
}

func tight(prev, cur token.TokenType) bool {
	switch {
	case prev == token.DOT || cur == token.DOT:
		return true
	case prev == token.LPAREN || cur == token.RPAREN:
		return true
	case cur == token.LPAREN && prev == token.IDENT:
		return true
	case cur == token.COMMA || prev == token.DCOLON || cur == token.DCOLON:
		return true
	}
	return false
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
