package parser

import (
	"fmt"
	"strconv"
	"strings"

	"ddl-lint/internal/model"
)

// RuleIDParse identifies findings produced by the parser itself.
const RuleIDParse = "PARSE"

// ParseError describes a statement the parser could not structure.
// It is recovered into a WARNING finding, never returned to callers
// of Parse; only exported for tests and direct statement parsing.
type ParseError struct {
	Line   int
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d (offset %d): %s", e.Line, e.Offset, e.Msg)
}

// Result holds the objects parsed from one input buffer plus any
// findings raised during parsing (recovered constructs, skipped text).
type Result struct {
	Objects  []model.SchemaObject
	Findings []model.Finding
}

// Parser turns raw DDL text into schema object descriptors.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse processes all statements in input. Statements it cannot fully
// structure become partial objects plus WARNING findings; the batch is
// never aborted.
func (p *Parser) Parse(input, filePath string) *Result {
	res := &Result{}
	toks := lex(input)

	start := 0
	for i := 0; i <= len(toks); i++ {
		atEnd := i == len(toks) || toks[i].typ == tokenEOF
		if !atEnd && !toks[i].isSymbol(";") {
			continue
		}
		stmt := toks[start:i]
		start = i + 1
		if len(stmt) == 0 {
			if atEnd {
				break
			}
			continue
		}
		p.parseStatement(stmt, filePath, res)
		if atEnd {
			break
		}
	}

	return res
}

func (p *Parser) parseStatement(toks []token, filePath string, res *Result) {
	if !toks[0].is("CREATE") {
		return // DML, GRANT etc. are out of scope for a DDL checker
	}

	sp := &stmtParser{toks: toks, file: filePath, res: res}
	obj := sp.parseCreate()
	if obj != nil {
		res.Objects = append(res.Objects, *obj)
	}
}

// stmtParser is cursor state over one statement's tokens.
type stmtParser struct {
	toks []token
	pos  int
	file string
	res  *Result

	objName string
	partial bool
}

func (sp *stmtParser) cur() token {
	if sp.pos >= len(sp.toks) {
		last := sp.toks[len(sp.toks)-1]
		return token{typ: tokenEOF, line: last.line, offset: last.offset}
	}
	return sp.toks[sp.pos]
}

func (sp *stmtParser) advance() token {
	t := sp.cur()
	if sp.pos < len(sp.toks) {
		sp.pos++
	}
	return t
}

// accept consumes the next token when it matches the given keyword.
func (sp *stmtParser) accept(kw string) bool {
	if sp.cur().is(kw) {
		sp.pos++
		return true
	}
	return false
}

func (sp *stmtParser) acceptSymbol(s string) bool {
	if sp.cur().isSymbol(s) {
		sp.pos++
		return true
	}
	return false
}

func (sp *stmtParser) warn(colName, msg string) {
	name := sp.objName
	if name == "" {
		name = "(unknown)"
	}
	sp.partial = true
	sp.res.Findings = append(sp.res.Findings, model.Finding{
		RuleID:     RuleIDParse,
		Severity:   model.SeverityWarning,
		ObjectName: name,
		ColumnName: colName,
		Message:    msg,
		Location:   model.Location{FilePath: sp.file, Line: sp.cur().line},
	})
}

func (sp *stmtParser) warnHere(colName, what string) {
	t := sp.cur()
	text := t.text
	if t.typ == tokenEOF {
		text = "end of statement"
	} else {
		text = fmt.Sprintf("%q", text)
	}
	sp.warn(colName, fmt.Sprintf("%s: unexpected %s at offset %d", what, text, t.offset))
}

func (sp *stmtParser) parseCreate() *model.SchemaObject {
	startLine := sp.cur().line
	sp.advance() // CREATE
	if sp.accept("OR") {
		sp.accept("REPLACE")
	}
	// Table/view modifiers that carry no structure we check
	for sp.accept("TRANSIENT") || sp.accept("TEMPORARY") || sp.accept("TEMP") || sp.accept("SECURE") {
	}

	var kind model.ObjectKind
	switch {
	case sp.accept("TABLE"):
		kind = model.KindTable
	case sp.accept("MATERIALIZED"):
		if !sp.accept("VIEW") {
			sp.warnHere("", "CREATE MATERIALIZED")
			return nil
		}
		kind = model.KindMaterializedView
	case sp.accept("VIEW"):
		kind = model.KindView
	default:
		return nil // CREATE SCHEMA, SEQUENCE etc.
	}

	if sp.accept("IF") {
		sp.accept("NOT")
		sp.accept("EXISTS")
	}

	name, ok := sp.parseQualifiedName()
	if !ok {
		sp.warnHere("", string(kind)+" statement")
		return nil
	}

	obj := &model.SchemaObject{
		Name:     name,
		Kind:     kind,
		Location: model.Location{FilePath: sp.file, Line: startLine},
	}
	sp.objName = name

	if kind == model.KindTable {
		sp.parseTableBody(obj)
	} else {
		sp.parseViewBody(obj)
	}

	obj.Partial = sp.partial
	return obj
}

// parseQualifiedName reads IDENT (. IDENT)* and returns the final
// component, which is the name the standards apply to.
func (sp *stmtParser) parseQualifiedName() (string, bool) {
	if sp.cur().typ != tokenIdent {
		return "", false
	}
	name := sp.advance().text
	for sp.acceptSymbol(".") {
		if sp.cur().typ != tokenIdent {
			return name, true
		}
		name = sp.advance().text
	}
	return name, true
}

func (sp *stmtParser) parseTableBody(obj *model.SchemaObject) {
	if !sp.acceptSymbol("(") {
		sp.warnHere("", "table body")
		return
	}

	for {
		switch {
		case sp.cur().typ == tokenEOF:
			sp.warn("", "table body: missing closing parenthesis")
			return
		case sp.acceptSymbol(")"):
			sp.parseTableTail(obj)
			return
		case sp.cur().is("CONSTRAINT"), sp.cur().is("PRIMARY"), sp.cur().is("FOREIGN"), sp.cur().is("UNIQUE"):
			sp.parseTableConstraint(obj)
		default:
			sp.parseColumnDef(obj)
		}

		if sp.acceptSymbol(",") {
			continue
		}
	}
}

func (sp *stmtParser) parseTableConstraint(obj *model.SchemaObject) {
	constraintName := ""
	if sp.accept("CONSTRAINT") {
		if sp.cur().typ != tokenIdent {
			sp.warnHere("", "constraint")
			sp.skipElement()
			return
		}
		constraintName = sp.advance().text
	}

	switch {
	case sp.accept("PRIMARY"):
		if !sp.accept("KEY") {
			sp.warnHere("", "primary key constraint")
			sp.skipElement()
			return
		}
		cols, ok := sp.parseColumnList()
		if !ok {
			sp.warnHere("", "primary key constraint")
			sp.skipElement()
			return
		}
		obj.PrimaryKey = append(obj.PrimaryKey, cols...)
	case sp.accept("FOREIGN"):
		if !sp.accept("KEY") {
			sp.warnHere("", "foreign key constraint")
			sp.skipElement()
			return
		}
		fk := model.ForeignKeyRef{ConstraintName: constraintName, Enforced: true}
		var ok bool
		if fk.ChildColumns, ok = sp.parseColumnList(); !ok {
			sp.warnHere("", "foreign key constraint")
			sp.skipElement()
			return
		}
		if !sp.accept("REFERENCES") {
			sp.warnHere("", "foreign key constraint")
			sp.skipElement()
			return
		}
		if fk.ParentTable, ok = sp.parseQualifiedName(); !ok {
			sp.warnHere("", "foreign key constraint")
			sp.skipElement()
			return
		}
		if sp.cur().isSymbol("(") {
			fk.ParentColumns, _ = sp.parseColumnList()
		}
		if sp.accept("NOT") {
			sp.accept("ENFORCED")
			fk.Enforced = false
		} else {
			sp.accept("ENFORCED")
		}
		obj.ForeignKeys = append(obj.ForeignKeys, fk)
	case sp.accept("UNIQUE"):
		if sp.cur().isSymbol("(") {
			sp.parseColumnList()
		}
	default:
		sp.warnHere("", "constraint")
		sp.skipElement()
	}
}

// parseColumnList reads "( IDENT, IDENT, ... )".
func (sp *stmtParser) parseColumnList() ([]string, bool) {
	if !sp.acceptSymbol("(") {
		return nil, false
	}
	var cols []string
	for {
		if sp.cur().typ != tokenIdent {
			return nil, false
		}
		cols = append(cols, sp.advance().text)
		if sp.acceptSymbol(",") {
			continue
		}
		if sp.acceptSymbol(")") {
			return cols, true
		}
		return nil, false
	}
}

func (sp *stmtParser) parseColumnDef(obj *model.SchemaObject) {
	if sp.cur().typ != tokenIdent {
		sp.warnHere("", "column definition")
		sp.skipElement()
		return
	}
	col := model.Column{Name: sp.advance().text, Nullable: true}

	if sp.cur().typ != tokenIdent {
		sp.warnHere(col.Name, "column type")
		sp.skipElement()
		obj.Columns = append(obj.Columns, col)
		return
	}
	col.DataType.Base = strings.ToUpper(sp.advance().text)
	if sp.acceptSymbol("(") {
		for {
			if sp.cur().typ == tokenNumber {
				n, _ := strconv.Atoi(sp.advance().text)
				col.DataType.Args = append(col.DataType.Args, n)
				if sp.acceptSymbol(",") {
					continue
				}
			}
			if sp.acceptSymbol(")") {
				break
			}
			sp.warnHere(col.Name, "type parameters")
			sp.skipPast(")")
			break
		}
	}

	sp.parseColumnClauses(obj, &col)
	obj.Columns = append(obj.Columns, col)
}

// parseColumnClauses consumes the trailing clauses of a column
// definition up to the element-terminating comma or paren.
func (sp *stmtParser) parseColumnClauses(obj *model.SchemaObject, col *model.Column) {
	for {
		t := sp.cur()
		if t.typ == tokenEOF || t.isSymbol(",") || t.isSymbol(")") {
			return
		}

		switch {
		case sp.accept("NOT"):
			if !sp.accept("NULL") {
				sp.warnHere(col.Name, "column clause")
				sp.skipElement()
				return
			}
			col.Nullable = false
		case sp.accept("NULL"):
			col.Nullable = true
		case sp.accept("DEFAULT"):
			col.DefaultExpr = sp.captureExpr()
		case sp.accept("WITH"):
			// WITH MASKING POLICY / WITH TAG; Snowflake allows the
			// bare forms too, handled below.
		case sp.accept("MASKING"):
			if !sp.accept("POLICY") || sp.cur().typ != tokenIdent {
				sp.warnHere(col.Name, "masking policy")
				sp.skipElement()
				return
			}
			name, _ := sp.parseQualifiedName()
			col.MaskingPolicy = name
			if sp.accept("USING") {
				sp.skipParenGroup()
			}
		case sp.accept("TAG"):
			if !sp.parseTagList(col) {
				sp.warnHere(col.Name, "tag list")
				sp.skipElement()
				return
			}
		case sp.accept("PRIMARY"):
			if !sp.accept("KEY") {
				sp.warnHere(col.Name, "column clause")
				sp.skipElement()
				return
			}
			obj.PrimaryKey = append(obj.PrimaryKey, col.Name)
		case sp.accept("UNIQUE"):
		case sp.accept("IDENTITY"), sp.accept("AUTOINCREMENT"):
			sp.skipParenGroup()
		case sp.accept("COLLATE"):
			sp.advance()
		case sp.accept("COMMENT"):
			sp.acceptSymbol("=")
			if sp.cur().typ != tokenString {
				sp.warnHere(col.Name, "column comment")
				sp.skipElement()
				return
			}
			col.Comment = sp.advance().text
		case sp.accept("REFERENCES"):
			// Inline, unnamed foreign key
			fk := model.ForeignKeyRef{ChildColumns: []string{col.Name}, Enforced: true}
			var ok bool
			if fk.ParentTable, ok = sp.parseQualifiedName(); !ok {
				sp.warnHere(col.Name, "column references")
				sp.skipElement()
				return
			}
			if sp.cur().isSymbol("(") {
				fk.ParentColumns, _ = sp.parseColumnList()
			}
			obj.ForeignKeys = append(obj.ForeignKeys, fk)
		default:
			sp.warnHere(col.Name, "column clause")
			sp.skipElement()
			return
		}
	}
}

// parseTagList reads "( name = 'value', ... )" into the column's tags.
func (sp *stmtParser) parseTagList(col *model.Column) bool {
	if !sp.acceptSymbol("(") {
		return false
	}
	for {
		if sp.cur().typ != tokenIdent {
			return false
		}
		name, _ := sp.parseQualifiedName()
		if !sp.acceptSymbol("=") || sp.cur().typ != tokenString {
			return false
		}
		value := sp.advance().text
		if col.Tags == nil {
			col.Tags = map[string]string{}
		}
		col.Tags[strings.ToUpper(name)] = value
		if sp.acceptSymbol(",") {
			continue
		}
		return sp.acceptSymbol(")")
	}
}

// captureExpr consumes a default expression: everything up to the next
// clause keyword or element terminator, tracking nested parens.
func (sp *stmtParser) captureExpr() string {
	var parts []string
	depth := 0
	for {
		t := sp.cur()
		if t.typ == tokenEOF {
			break
		}
		if depth == 0 {
			if t.isSymbol(",") || t.isSymbol(")") {
				break
			}
			if t.typ == tokenIdent && !t.quoted {
				switch t.keyword() {
				case "NOT", "NULL", "WITH", "MASKING", "TAG", "COMMENT", "PRIMARY", "UNIQUE", "REFERENCES", "COLLATE":
					return strings.Join(parts, " ")
				}
			}
		}
		if t.isSymbol("(") {
			depth++
		}
		if t.isSymbol(")") {
			depth--
		}
		if t.typ == tokenString {
			parts = append(parts, "'"+t.text+"'")
		} else {
			parts = append(parts, t.text)
		}
		sp.advance()
	}
	return strings.Join(parts, " ")
}

// parseTableTail handles options after the closing paren: the object
// COMMENT is captured, everything else is skipped without warnings.
func (sp *stmtParser) parseTableTail(obj *model.SchemaObject) {
	for sp.cur().typ != tokenEOF {
		if sp.accept("COMMENT") {
			sp.acceptSymbol("=")
			if sp.cur().typ == tokenString {
				obj.Comment = sp.advance().text
				continue
			}
		}
		sp.advance()
	}
}

func (sp *stmtParser) parseViewBody(obj *model.SchemaObject) {
	if sp.cur().isSymbol("(") {
		cols, ok := sp.parseColumnList()
		if !ok {
			sp.warnHere("", "view column list")
			sp.skipPast(")")
		}
		for _, c := range cols {
			obj.Columns = append(obj.Columns, model.Column{Name: c, Nullable: true})
		}
	}

	for sp.cur().typ != tokenEOF {
		if sp.accept("COMMENT") {
			sp.acceptSymbol("=")
			if sp.cur().typ == tokenString {
				obj.Comment = sp.advance().text
				continue
			}
		}
		if sp.accept("AS") {
			// The defining query is not subject to DDL standards
			sp.pos = len(sp.toks)
			return
		}
		sp.advance()
	}
}

// skipElement recovers to the end of the current table element: the
// next comma at paren depth zero, or the body's closing paren.
func (sp *stmtParser) skipElement() {
	depth := 0
	for {
		t := sp.cur()
		if t.typ == tokenEOF {
			return
		}
		if depth == 0 && (t.isSymbol(",") || t.isSymbol(")")) {
			return
		}
		if t.isSymbol("(") {
			depth++
		}
		if t.isSymbol(")") {
			depth--
		}
		sp.advance()
	}
}

// skipParenGroup consumes an optional balanced "( ... )" group.
func (sp *stmtParser) skipParenGroup() {
	if !sp.cur().isSymbol("(") {
		return
	}
	depth := 0
	for sp.cur().typ != tokenEOF {
		t := sp.advance()
		if t.isSymbol("(") {
			depth++
		}
		if t.isSymbol(")") {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// skipPast consumes tokens through the next occurrence of symbol s.
func (sp *stmtParser) skipPast(s string) {
	for sp.cur().typ != tokenEOF {
		if sp.advance().isSymbol(s) {
			return
		}
	}
}
