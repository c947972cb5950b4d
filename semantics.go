package oc

// The semantic pass is one depth-first walk that dispatches on node
// kind.  Declarations feed the scope stack, uses bind to symbol
// entries, and every processed node gets its attribute set
// synthesized and its block number stamped in place.

// Run performs the semantic pass over root and returns the number of
// semantic errors.  The scope stack is left with its single global
// frame so callers can inspect it.
func (a *Analysis) Run(root *Node) int {
	a.traverse(root)
	return a.errors
}

// declarator returns the identifier-bearing leaf of a declaration's
// type spine: the last child of an ARRAY spine, the only child
// otherwise.
func declarator(spine *Node) *Node {
	if spine.Kind == KindArray {
		return spine.Children[1]
	}
	return spine.Children[0]
}

// spineTypeName returns the typeid named by a declaration spine, or
// "" for non-struct declarations.
func spineTypeName(spine *Node) string {
	base := spine
	if spine.Kind == KindArray {
		base = spine.Children[0]
	}
	if base.Kind == KindTypeID {
		return base.Lexeme
	}
	return ""
}

// declare enters one declaration into table: it synthesizes the
// attribute set from the type spine, rejects duplicates, creates the
// symbol entry stamped with the current block, and streams one line
// to the symbol listing.
func (a *Analysis) declare(table *SymbolTable, spine *Node, seed AttrSet) *Symbol {
	attr := seed
	if !a.typeAttrs(spine, &attr) {
		return nil
	}
	decl := declarator(spine)
	if existing := table.Lookup(decl.Lexeme); existing != nil {
		a.errorf(decl.Pos,
			"duplicate declaration of identifier '%s'. Previous declaration at %s",
			decl.Lexeme, existing.Pos)
		return nil
	}
	if !attr.Has(AttrFunction) && !attr.Has(AttrField) {
		attr.Add(AttrLval)
	}
	sym := &Symbol{
		Attrs:      attr,
		Pos:        decl.Pos,
		Definition: decl,
		Block:      a.currentBlock(),
	}
	if attr.Has(AttrStruct) {
		tn := spineTypeName(spine)
		sym.TypeName = tn
		decl.TypeName = tn
	}
	decl.Sym = sym
	decl.Block = a.currentBlock()
	table.Insert(decl.Lexeme, sym)
	a.dumpSymbol(decl.Lexeme, sym)
	return sym
}

// dumpSymbol streams one symbol listing line, indented by scope
// depth.  Fields print their owning struct in place of a block.
func (a *Analysis) dumpSymbol(name string, sym *Symbol) {
	a.symw.indentLevel = a.printDepth
	if sym.Attrs.Has(AttrField) {
		a.symw.writeif("%s (%s) field {%s} %s\n", name, sym.Pos,
			a.currentStructure,
			sym.Attrs.Without(bit(AttrField)).typedString(sym.TypeName))
		return
	}
	a.symw.writeif("%s (%s) {%d} %s\n", name, sym.Pos, sym.Block,
		sym.Attrs.typedString(sym.TypeName))
}

// handleStructure registers a struct typeid and its field table.
func (a *Analysis) handleStructure(node *Node) {
	if a.depth() != 0 {
		a.errorf(node.Pos, "structures must be in global scope")
		return
	}
	name := node.Children[0]
	if existing := a.typeids.Lookup(name.Lexeme); existing != nil {
		a.errorf(node.Pos,
			"duplicate declaration of typeid '%s'. Previous declaration at %s",
			name.Lexeme, existing.Pos)
		return
	}
	a.symw.indentLevel = a.printDepth
	a.symw.writeif("%s (%s) {0} struct \"%s\"\n", name.Lexeme, node.Pos, name.Lexeme)

	sym := &Symbol{Pos: name.Pos, Definition: name, TypeName: name.Lexeme}
	sym.Attrs.Add(AttrTypeID)
	a.typeids.Insert(name.Lexeme, sym)
	name.Sym = sym
	name.Block = 0

	a.currentStructure = name.Lexeme
	a.printDepth++
	fields := NewSymbolTable()
	for _, field := range node.Children[1:] {
		fsym := a.declare(fields, field, bit(AttrField))
		if fsym != nil {
			fsym.OwningStruct = name.Lexeme
			fsym.Block = 0
		}
	}
	a.printDepth--
	a.currentStructure = ""
	sym.Fields = fields
	a.symw.writel("")
}

// handleFunction declares a function or prototype, reconciling a
// definition against a prior prototype, then walks parameters and
// body inside a fresh block.
func (a *Analysis) handleFunction(node *Node) {
	if a.depth() != 0 {
		a.errorf(node.Pos, "functions must be in global scope")
		return
	}
	spine := node.Children[0]
	decl := declarator(spine)

	var sym *Symbol
	if existing := a.globalTable().Lookup(decl.Lexeme); existing != nil {
		if !existing.Attrs.Has(AttrFunction) || existing.HasBody {
			a.errorf(decl.Pos,
				"duplicate declaration of identifier '%s'. Previous declaration at %s",
				decl.Lexeme, existing.Pos)
			return
		}
		// A definition (or repeated prototype) of a prior prototype:
		// signatures must agree, and the prototype's entry survives.
		if !compareFunctions(existing.FnDecl, node) {
			a.errorf(node.Pos,
				"function has mismatched prototype (declared at %s)", existing.Pos)
			return
		}
		sym = existing
		decl.Sym = sym
		decl.Block = 0
		decl.TypeName = sym.TypeName
	} else {
		sym = a.declare(a.globalTable(), spine, bit(AttrFunction))
		if sym == nil {
			return
		}
		sym.FnDecl = node
	}
	if node.Kind == KindFunction {
		sym.HasBody = true
	}

	a.currentFunction = decl.Lexeme
	a.enterBlock()
	a.printDepth++

	params := node.Children[1]
	params.Block = a.currentBlock()
	sym.Params = sym.Params[:0]
	for _, param := range params.Children {
		psym := a.declare(a.topTable(), param, bit(AttrParam))
		if psym != nil {
			sym.Params = append(sym.Params, psym)
		}
	}

	if node.Kind == KindFunction {
		block := node.Children[2]
		block.Block = a.currentBlock()
		for _, stmt := range block.Children {
			a.traverse(stmt)
		}
	}

	a.leaveBlock()
	a.printDepth--
	a.currentFunction = ""
	a.symw.writel("")
}

// fieldSelect resolves `a.b`: the left child's typeid leads to the
// struct's field table, and both the selector node and the field name
// bind to the field's symbol.
func (a *Analysis) fieldSelect(node *Node) {
	obj, fieldName := node.Children[0], node.Children[1]
	tn := obj.TypeName
	if tn == "" {
		a.errorf(node.Pos, "cannot select field '%s' of non-struct value", fieldName.Lexeme)
		return
	}
	sym := a.typeids.Lookup(tn)
	if sym == nil {
		a.errorf(node.Pos, "typeid '%s' is not defined", tn)
		return
	}
	field := sym.Fields.Lookup(fieldName.Lexeme)
	if field == nil {
		a.errorf(fieldName.Pos, "'%s' has no field named '%s'", tn, fieldName.Lexeme)
		return
	}
	node.Sym = field
	fieldName.Sym = field
	fieldName.TypeName = field.TypeName
}

// processNode binds identifier uses and synthesizes attributes for
// everything else.
func (a *Analysis) processNode(node *Node) {
	if node.Kind == KindIdent {
		sym := a.lookup(node.Lexeme)
		if sym == nil {
			a.errorf(node.Pos, "identifier '%s' is undefined", node.Lexeme)
			return
		}
		node.Sym = sym
		node.TypeName = sym.TypeName
		return
	}
	a.processAttributes(node)
}

func (a *Analysis) traverse(node *Node) {
	switch node.Kind {
	case KindFunction, KindPrototype:
		a.handleFunction(node)
	case KindStruct:
		a.handleStructure(node)
	case KindInt, KindChar, KindBool, KindString, KindTypeID, KindArray:
		// A bare declaration statement.
		a.declare(a.topTable(), node, 0)
		if a.depth() == 0 {
			a.symw.writel("")
		}
	case KindVoid:
		a.errorf(node.Pos, "cannot have void variables")
	case KindNew:
		a.processNode(node.Children[0])
		a.processNode(node)
		if node.TypeName == "" || a.typeids.Lookup(node.TypeName) == nil {
			name := node.TypeName
			if name == "" {
				name = "???"
			}
			a.errorf(node.Pos, "allocator with unknown typeid '%s'", name)
		}
	case KindNewArray:
		a.traverse(node.Children[1])
		a.processNode(node.Children[0])
	case KindNewString:
		a.traverse(node.Children[0])
	case KindDot:
		a.traverse(node.Children[0])
		a.processNode(node.Children[1])
		a.fieldSelect(node)
	case KindBlock:
		a.printDepth++
		a.enterBlock()
		for _, child := range node.Children {
			a.traverse(child)
		}
	default:
		for _, child := range node.Children {
			a.traverse(child)
		}
	}

	switch node.Kind {
	case KindFunction, KindPrototype, KindStruct, KindVoid:
	default:
		a.processNode(node)
		node.Block = a.currentBlock()
		if node.Kind == KindBlock {
			a.printDepth--
			a.leaveBlock()
		}
	}
}
