package oc

// Attribute synthesis and checking.  Most rules reduce to testing a
// child against required, forbidden, or at-least-one-of sets, plus
// the compatibility relation.  Every violation prints one diagnostic
// and checking continues, so one pass reports as much as it can; a
// failed subtree still gets best-effort attributes so its ancestors
// can produce further useful errors.

// typeAttrs folds a declaration type spine into attr.  It may only be
// called on type-bearing nodes; anything else is a front-end bug.
func (a *Analysis) typeAttrs(node *Node, attr *AttrSet) bool {
	var mapped Attr
	switch node.Kind {
	case KindInt:
		mapped = AttrInt
	case KindChar:
		mapped = AttrChar
	case KindBool:
		mapped = AttrBool
	case KindTypeID:
		mapped = AttrStruct
	case KindVoid:
		mapped = AttrVoid
	case KindString:
		mapped = AttrString
	case KindArray:
		mapped = AttrArray
	default:
		a.errorf(node.Pos, "internal error: %s is not a type node", node.Kind)
		return false
	}
	attr.Add(mapped)
	if node.Kind == KindArray {
		// The element type is the first child; fold it in too.
		if node.Children[0].Kind == KindVoid {
			a.errorf(node.Pos, "cannot have void arrays")
			return false
		}
		return a.typeAttrs(node.Children[0], attr)
	}
	if node.Kind == KindVoid && !attr.Has(AttrFunction) {
		a.errorf(node.Pos, "cannot have void declarations")
		return false
	}
	if !attr.Has(AttrFunction) && !attr.Has(AttrField) {
		attr.Add(AttrVariable)
	}
	return true
}

func (a *Analysis) requireAttrs(n *Node, required AttrSet) bool {
	have := n.attributes()
	if have&required == required {
		return true
	}
	a.errorf(n.Pos, "node only has {%s}, and {%s} is required", have, required)
	return false
}

func (a *Analysis) forbidAttrs(n *Node, forbidden AttrSet) bool {
	have := n.attributes()
	if have&forbidden == 0 {
		return true
	}
	a.errorf(n.Pos, "node has {%s}, but none of {%s} are allowed", have, forbidden)
	return false
}

func (a *Analysis) requireAnyAttr(n *Node, set AttrSet) bool {
	have := n.attributes()
	if have&set != 0 {
		return true
	}
	a.errorf(n.Pos, "node has {%s}, but at least one of {%s} are required", have, set)
	return false
}

// compatible implements the compatibility relation: equal ANY-masked
// projections, or null against any reference type.  When either set
// is empty the check fails silently; the children already produced
// their own diagnostics.
func (a *Analysis) compatible(node *Node, x, y AttrSet) bool {
	if x&attrAnyType == y&attrAnyType {
		return true
	}
	if x.HasAny(attrReference) && y.Has(AttrNull) {
		return true
	}
	if y.HasAny(attrReference) && x.Has(AttrNull) {
		return true
	}
	if !x.Empty() && !y.Empty() {
		a.errorf(node.Pos, "nodes are not compatible: have {%s} and {%s}", x, y)
	}
	return false
}

// processAttributes synthesizes node's attribute set from its
// children and validates the context constraints for its kind.
func (a *Analysis) processAttributes(node *Node) bool {
	switch node.Kind {
	case KindAdd, KindSub, KindMul, KindDiv, KindMod:
		return a.attrBinop(node)
	case KindPos, KindNeg, KindNot, KindOrd, KindChr:
		return a.attrUnop(node)
	case KindEq, KindNe, KindLt, KindLe, KindGt, KindGe:
		return a.attrComparison(node)
	case KindNew, KindNewArray, KindNewString:
		return a.attrNew(node)
	case KindCall:
		return a.attrCall(node)
	case KindIntCon, KindCharCon, KindStringCon, KindTrue, KindFalse, KindNull:
		return a.attrConstant(node)
	case KindIndex:
		return a.attrIndex(node)
	case KindDot:
		return a.attrFieldSelector(node)
	case KindAssign:
		return a.attrAssignment(node)
	case KindWhile, KindIf, KindIfElse:
		return a.attrConditional(node)
	case KindReturn, KindReturnVoid:
		return a.attrReturn(node)
	case KindVardecl:
		return a.attrVardecl(node)
	case KindInt, KindChar, KindString, KindBool, KindArray, KindTypeID:
		return a.attrType(node)
	case KindRoot, KindBlock, KindParamList, KindIdent, KindDeclID, KindField:
		// Nothing to synthesize.
		return true
	}
	a.errorf(node.Pos, "internal error: no attribute rule for %s", node.Kind)
	return false
}

func (a *Analysis) attrBinop(node *Node) bool {
	node.Attrs.Add(AttrInt)
	node.Attrs.Add(AttrVreg)
	res := true
	for _, child := range node.Children[:2] {
		if !a.requireAttrs(child, bit(AttrInt)) {
			res = false
		}
		if !a.forbidAttrs(child, bit(AttrArray)) {
			res = false
		}
	}
	return res
}

func (a *Analysis) attrUnop(node *Node) bool {
	var childType, propType Attr
	switch node.Kind {
	case KindPos, KindNeg:
		childType, propType = AttrInt, AttrInt
	case KindOrd:
		childType, propType = AttrChar, AttrInt
	case KindChr:
		childType, propType = AttrInt, AttrChar
	case KindNot:
		childType, propType = AttrBool, AttrBool
	}
	node.Attrs.Add(AttrVreg)
	node.Attrs.Add(propType)
	res := true
	if !a.requireAttrs(node.Children[0], bit(childType)) {
		res = false
	}
	if !a.forbidAttrs(node.Children[0], bit(AttrArray)) {
		res = false
	}
	return res
}

func (a *Analysis) attrComparison(node *Node) bool {
	node.Attrs = bit(AttrBool) | bit(AttrVreg)
	c0, c1 := node.Children[0], node.Children[1]
	res := true
	if !a.compatible(node, c0.attributes(), c1.attributes()) {
		res = false
	}
	if node.Kind == KindEq || node.Kind == KindNe {
		if !a.requireAnyAttr(c0, attrAnyType) {
			res = false
		}
		if !a.requireAnyAttr(c1, attrAnyType) {
			res = false
		}
		return res
	}
	// Ordering comparisons need compatible primitives.
	for _, child := range node.Children[:2] {
		if !a.requireAnyAttr(child, attrPrimitive) {
			res = false
		}
		if !a.forbidAttrs(child, bit(AttrArray)) {
			res = false
		}
	}
	return res
}

func (a *Analysis) attrNew(node *Node) bool {
	switch node.Kind {
	case KindNew:
		// The type child was just synthesized; copy it through.
		node.Attrs = node.Children[0].attributes() | bit(AttrVreg)
		node.TypeName = node.Children[0].TypeName
		return true
	case KindNewArray:
		node.Attrs = (node.Children[0].attributes() & attrBaseType) |
			bit(AttrArray) | bit(AttrVreg)
		node.TypeName = node.Children[0].TypeName
		res := a.requireAnyAttr(node.Children[0], attrBaseType)
		if !a.requireAttrs(node.Children[1], bit(AttrInt)) {
			res = false
		}
		if !a.forbidAttrs(node.Children[1], bit(AttrArray)) {
			res = false
		}
		return res
	case KindNewString:
		node.Attrs = bit(AttrString) | bit(AttrVreg)
		res := a.requireAttrs(node.Children[0], bit(AttrInt))
		if !a.forbidAttrs(node.Children[0], bit(AttrArray)) {
			res = false
		}
		return res
	}
	return false
}

func (a *Analysis) attrCall(node *Node) bool {
	callee := node.Children[0]
	fn := callee.Sym
	if fn == nil {
		// The undefined-identifier diagnostic already fired.
		return false
	}
	if !fn.Attrs.Has(AttrFunction) {
		a.errorf(callee.Pos, "'%s' is not a function", callee.Lexeme)
		return false
	}
	args := node.Children[1:]
	if len(args) != len(fn.Params) {
		a.errorf(node.Pos,
			"invalid number of parameters to function '%s' (needed %d, have %d)",
			callee.Lexeme, len(fn.Params), len(args))
		return false
	}
	fails := 0
	for i, arg := range args {
		ok := a.compatible(arg, arg.attributes(), fn.Params[i].Attrs)
		if !a.requireAnyAttr(arg, attrAnyType) {
			ok = false
		}
		if !ok {
			fails++
		}
	}
	node.Attrs = (fn.Attrs | bit(AttrVreg)).Without(bit(AttrFunction))
	node.TypeName = fn.TypeName
	return fails == 0
}

func (a *Analysis) attrConstant(node *Node) bool {
	switch node.Kind {
	case KindTrue, KindFalse:
		node.Attrs.Add(AttrBool)
	case KindStringCon:
		node.Attrs.Add(AttrString)
	case KindCharCon:
		node.Attrs.Add(AttrChar)
	case KindIntCon:
		node.Attrs.Add(AttrInt)
	case KindNull:
		node.Attrs.Add(AttrNull)
	}
	node.Attrs.Add(AttrConst)
	return true
}

func (a *Analysis) attrIndex(node *Node) bool {
	base, idx := node.Children[0], node.Children[1]
	if !base.attributes().Has(AttrArray) {
		// Indexing a string yields a char; anything else is an error.
		node.Attrs = bit(AttrChar) | bit(AttrVaddr) | bit(AttrLval)
		if !base.attributes().Has(AttrString) {
			if !base.attributes().Empty() {
				a.errorf(base.Pos, "cannot index into non-array non-string value")
			}
			node.Attrs = bit(AttrVaddr) | bit(AttrLval)
			return false
		}
		return true
	}
	node.Attrs = bit(AttrLval) | bit(AttrVaddr) | (base.attributes() & attrBaseType)
	node.TypeName = base.TypeName
	res := true
	if !a.requireAttrs(idx, bit(AttrInt)) {
		res = false
	}
	if !a.forbidAttrs(idx, bit(AttrArray)) {
		res = false
	}
	if !a.requireAnyAttr(base, attrBaseType) {
		res = false
	}
	return res
}

func (a *Analysis) attrFieldSelector(node *Node) bool {
	node.Attrs = bit(AttrVaddr) | bit(AttrLval)
	node.Attrs |= node.Children[1].attributes() & attrAnyType
	node.TypeName = node.Children[1].TypeName
	res := true
	if !a.requireAttrs(node.Children[0], bit(AttrStruct)) {
		res = false
	}
	if !a.requireAttrs(node.Children[1], bit(AttrField)) {
		res = false
	}
	return res
}

func (a *Analysis) attrAssignment(node *Node) bool {
	lhs, rhs := node.Children[0], node.Children[1]
	node.Attrs = (rhs.attributes() & attrAnyType) | bit(AttrVreg)
	node.TypeName = rhs.TypeName
	res := true
	if !a.requireAttrs(lhs, bit(AttrLval)) {
		res = false
	}
	if !a.compatible(node, lhs.attributes(), rhs.attributes()) {
		res = false
	}
	if !a.requireAnyAttr(lhs, attrAnyType) {
		res = false
	}
	if !a.requireAnyAttr(rhs, attrAnyType) {
		res = false
	}
	return res
}

func (a *Analysis) attrConditional(node *Node) bool {
	res := a.requireAttrs(node.Children[0], bit(AttrBool))
	if !a.forbidAttrs(node.Children[0], bit(AttrArray)) {
		res = false
	}
	return res
}

func (a *Analysis) attrReturn(node *Node) bool {
	var fn *Symbol
	if a.currentFunction != "" {
		fn = a.globalTable().Lookup(a.currentFunction)
	}
	if node.Kind == KindReturnVoid {
		if fn == nil {
			// Top-level statements run inside the synthesized void main.
			return true
		}
		if !fn.Attrs.Has(AttrVoid) {
			a.errorf(node.Pos, "can't return void in a non-void function")
			return false
		}
		return true
	}
	if fn == nil {
		a.errorf(node.Pos, "can't return non-void in a void function (global scope)")
		return false
	}
	res := a.compatible(node, node.Children[0].attributes(), fn.Attrs)
	if !a.requireAnyAttr(node.Children[0], attrAnyType) {
		res = false
	}
	return res
}

func (a *Analysis) attrVardecl(node *Node) bool {
	lhs, rhs := node.Children[0], node.Children[1]
	res := true
	if !a.compatible(node, lhs.attributes(), rhs.attributes()) {
		res = false
	}
	if !a.requireAnyAttr(lhs, attrAnyType) {
		res = false
	}
	if !a.requireAnyAttr(rhs, attrAnyType) {
		res = false
	}
	if !a.requireAttrs(lhs, bit(AttrLval)) {
		res = false
	}
	return res
}

// attrType handles type nodes encountered in the tree.  A childless
// node is a pure type token; one with a declarator inherits the
// declarator's synthesized attributes.
func (a *Analysis) attrType(node *Node) bool {
	if len(node.Children) == 0 {
		a.typeAttrs(node, &node.Attrs)
		if node.Kind == KindTypeID {
			node.TypeName = node.Lexeme
		}
		return true
	}
	childnr := 0
	if node.Kind == KindArray {
		childnr = 1
	}
	node.Attrs = node.Children[childnr].attributes()
	node.TypeName = node.Children[childnr].TypeName
	return true
}

func compareTypeNodes(n1, n2 *Node) bool {
	if n1.Kind != n2.Kind {
		return false
	}
	if n1.Kind == KindTypeID && n1.Lexeme != n2.Lexeme {
		return false
	}
	if n1.Kind == KindArray {
		e1, e2 := n1.Children[0], n2.Children[0]
		if e1.Kind != e2.Kind {
			return false
		}
		if e1.Kind == KindTypeID && e1.Lexeme != e2.Lexeme {
			return false
		}
	}
	return true
}

// compareFunctions checks that two function (or prototype) nodes
// agree on return type and parameter types at the type-token level.
func compareFunctions(f1, f2 *Node) bool {
	if !compareTypeNodes(f1.Children[0], f2.Children[0]) {
		return false
	}
	p1, p2 := f1.Children[1], f2.Children[1]
	if len(p1.Children) != len(p2.Children) {
		return false
	}
	for i := range p1.Children {
		if !compareTypeNodes(p1.Children[i], p2.Children[i]) {
			return false
		}
	}
	return true
}
