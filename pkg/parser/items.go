package parser

import (
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/ast"
	"github.com/maia-s/sdl3-sys-rs-sub004/pkg/token"
)

var (
	Attribute      = attributeFrag()
	InnerAttribute = innerAttributeFrag()
	Visibility     = visibilityFrag()
	ConstItem      = constItemFrag()
	TypeAlias      = typeAliasFrag()
	Item           = itemFrag()
	ImplBlock      = implBlockFrag()
)

func attributeFrag() Fragment[ast.Attribute] { return fragment("attribute", tryParseAttribute) }
func innerAttributeFrag() Fragment[ast.InnerAttribute] {
	return fragment("inner attribute", tryParseInnerAttribute)
}
func visibilityFrag() Fragment[ast.Visibility] { return fragment("visibility", tryParseVisibility) }
func constItemFrag() Fragment[*ast.ConstItem]  { return fragment("const item", tryParseConstItem) }
func typeAliasFrag() Fragment[*ast.TypeAlias]  { return fragment("type alias", tryParseTypeAlias) }
func itemFrag() Fragment[ast.Item]             { return fragment("item", tryParseItem) }
func implBlockFrag() Fragment[*ast.ImplBlock]  { return fragment("impl block", tryParseImplBlock) }

func tryParseAttribute(c *Cursor) (ast.Attribute, bool, error) {
	hash, ok := c.Peek()
	if !ok || !hash.IsPunct('#') || c.checkPunct(1, '!') {
		return ast.Attribute{}, false, nil
	}
	c.Next()
	group, ok := TryParseGroup(c, token.Bracket)
	if !ok {
		return ast.Attribute{}, false, expected(c, "`[`")
	}
	return ast.Attribute{Span: hash.Span, Tokens: group.Stream}, true, nil
}

func tryParseInnerAttribute(c *Cursor) (ast.InnerAttribute, bool, error) {
	span, ok := TryParseOp(c, "#!")
	if !ok {
		return ast.InnerAttribute{}, false, nil
	}
	group, ok := TryParseGroup(c, token.Bracket)
	if !ok {
		return ast.InnerAttribute{}, false, expected(c, "`[`")
	}
	return ast.InnerAttribute{Span: span, Tokens: group.Stream}, true, nil
}

func tryParseVisibility(c *Cursor) (ast.Visibility, bool, error) {
	kw, ok := TryParseKeyword(c, "pub")
	if !ok {
		return ast.Visibility{}, false, nil
	}
	vis := ast.Visibility{Span: kw.Span}
	if group, ok := c.Peek(); ok && group.IsGroup(token.Parenthesis) && isRestriction(group) {
		c.Next()
		vis.Restriction = &group
	}
	return vis, true, nil
}

// isRestriction tells `pub(crate)` apart from a tuple field type such as `pub (u8, u8)`
func isRestriction(group token.TokenTree) bool {
	if len(group.Stream) == 0 {
		return false
	}
	first := group.Stream[0].Flatten()
	switch {
	case first.IsIdent("crate"), first.IsIdent("super"), first.IsIdent("self"):
		return len(group.Stream) == 1
	case first.IsIdent("in"):
		return len(group.Stream) > 1
	}
	return false
}

func parseItemPrefix(c *Cursor) ([]ast.Attribute, *ast.Visibility, error) {
	attrs, _, err := Many(attributeFrag()).TryParse(c)
	if err != nil {
		return nil, nil, err
	}
	vis, ok, err := visibilityFrag().TryParse(c)
	if err != nil || !ok {
		return attrs, nil, err
	}
	return attrs, &vis, nil
}

func tryParseConstItem(c *Cursor) (*ast.ConstItem, bool, error) {
	attrs, vis, err := parseItemPrefix(c)
	if err != nil {
		return nil, false, err
	}
	// `const fn` belongs to functions
	if !c.checkIdent(0, "const") || c.checkIdent(1, "fn") || c.checkIdent(1, "unsafe") ||
		c.checkIdent(1, "async") || c.checkIdent(1, "extern") {
		return nil, false, nil
	}
	c.Next()

	item := &ast.ConstItem{Attrs: attrs, Vis: vis}
	if item.Ident, err = ParseIdent(c, "constant name"); err != nil {
		return nil, false, err
	}
	if _, err := ParseOp(c, ":"); err != nil {
		return nil, false, err
	}
	if item.Type, err = parseType(c); err != nil {
		return nil, false, err
	}
	if _, err := ParseOp(c, "="); err != nil {
		return nil, false, err
	}
	for {
		tt, ok := c.Peek()
		if !ok {
			return nil, false, expected(c, "`;`")
		}
		if tt.IsPunct(';') {
			c.Next()
			break
		}
		c.Next()
		item.Value = append(item.Value, tt)
	}
	if len(item.Value) == 0 {
		return nil, false, errorAt(c.Span(), "expected constant value")
	}
	return item, true, nil
}

func tryParseTypeAlias(c *Cursor) (*ast.TypeAlias, bool, error) {
	attrs, vis, err := parseItemPrefix(c)
	if err != nil {
		return nil, false, err
	}
	if _, ok := TryParseKeyword(c, "type"); !ok {
		return nil, false, nil
	}

	alias := &ast.TypeAlias{Attrs: attrs, Vis: vis}
	if alias.Ident, err = ParseIdent(c, "type name"); err != nil {
		return nil, false, err
	}
	generics, ok, err := genericsFrag().TryParse(c)
	if err != nil {
		return nil, false, err
	}
	if ok {
		alias.Generics = &generics
	}
	if _, err := ParseOp(c, "="); err != nil {
		return nil, false, err
	}
	if alias.Type, err = parseType(c); err != nil {
		return nil, false, err
	}
	if _, err := ParseOp(c, ";"); err != nil {
		return nil, false, err
	}
	return alias, true, nil
}

func tryParseItem(c *Cursor) (ast.Item, bool, error) {
	if f, ok, err := functionFrag().TryParse(c); err != nil || ok {
		return f, ok, err
	}
	if item, ok, err := constItemFrag().TryParse(c); err != nil || ok {
		return item, ok, err
	}
	if alias, ok, err := typeAliasFrag().TryParse(c); err != nil || ok {
		return alias, ok, err
	}
	return nil, false, nil
}

func tryParseImplBlock(c *Cursor) (*ast.ImplBlock, bool, error) {
	attrs, _, err := Many(attributeFrag()).TryParse(c)
	if err != nil {
		return nil, false, err
	}
	block := &ast.ImplBlock{Attrs: attrs}
	if c.checkIdent(0, "unsafe") && c.checkIdent(1, "impl") {
		c.Next()
		block.Unsafe = true
	}
	kw, ok := TryParseKeyword(c, "impl")
	if !ok {
		return nil, false, nil
	}
	block.Span = kw.Span

	generics, ok, err := genericsFrag().TryParse(c)
	if err != nil {
		return nil, false, err
	}
	if ok {
		block.Generics = &generics
	}

	first, err := parseType(c)
	if err != nil {
		return nil, false, err
	}
	if _, ok := TryParseKeyword(c, "for"); ok {
		trait, ok := first.(*ast.PathType)
		if !ok {
			return nil, false, errorAt(&block.Span, "expected trait path before `for`")
		}
		block.Trait = &trait.Path
		if block.SelfTy, err = parseType(c); err != nil {
			return nil, false, err
		}
	} else {
		block.SelfTy = first
	}

	if c.checkIdent(0, "where") {
		for {
			tt, ok := c.Peek()
			if !ok || tt.IsGroup(token.Brace) {
				break
			}
			c.Next()
			block.WhereClause = append(block.WhereClause, tt)
		}
	}

	body, ok := TryParseGroup(c, token.Brace)
	if !ok {
		return nil, false, expected(c, "`{`")
	}
	inner := NewCursor(body.Stream)
	block.InnerAttrs, _, err = Many(innerAttributeFrag()).TryParse(inner)
	if err != nil {
		return nil, false, err
	}
	for !inner.IsEmpty() {
		item, err := itemFrag().Parse(inner)
		if err != nil {
			return nil, false, err
		}
		block.Items = append(block.Items, item)
	}
	return block, true, nil
}
