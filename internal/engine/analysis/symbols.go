// # internal/engine/analysis/symbols.go
package analysis

import (
	"context"

	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

type SymbolKind int

const (
	SymbolModuleAlias SymbolKind = iota
	SymbolType
	SymbolValue
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolModuleAlias:
		return "module_alias"
	case SymbolType:
		return "type"
	case SymbolValue:
		return "value"
	}
	return "unknown"
}

// Symbol is the result of resolving a name. Position addresses the name
// node of the declaring site. ModuleAlias is set for import aliases only.
// Types is empty when the type of a value cannot be inferred yet.
type Symbol struct {
	Kind        SymbolKind
	Name        string
	Position    parsetree.Position
	ModuleAlias *model.Import
	Types       []model.TypeReference
}

// FindVariableNameNode returns the node naming whatever is declared at pos:
// a variable or loop statement, a function parameter, a declaration or an
// import.
func FindVariableNameNode(root *parsetree.Node, pos parsetree.Position) (*parsetree.Node, parsetree.Position, bool) {
	n, err := parsetree.NodeAt(root, pos)
	if err != nil {
		return nil, nil, false
	}
	switch n.Label {
	case grammar.Statement:
		return parsetree.FindDescendant(n, pos, parsetree.HasLabel(grammar.VariableName, grammar.ExpressionForLoopVariable))
	case grammar.FunctionParameter:
		return parsetree.FindDescendant(n, pos, parsetree.HasLabel(grammar.FunctionParameterName))
	case grammar.Declaration:
		return FindDeclarationNameNode(root, pos)
	case grammar.Import:
		return parsetree.FindDescendant(n, pos, parsetree.HasLabel(grammar.ImportAlias))
	}
	return n, pos.Clone(), true
}

func namePosition(root *parsetree.Node, anchor parsetree.Position) parsetree.Position {
	if _, pos, ok := FindVariableNameNode(root, anchor); ok {
		return pos
	}
	return anchor.Clone()
}

func (q *query) bindingSymbol(b binding) (*Symbol, error) {
	types, err := q.bindingTypes(b)
	if err != nil {
		return nil, err
	}
	return &Symbol{
		Kind:     SymbolValue,
		Name:     b.name,
		Position: namePosition(q.root(), b.anchor),
		Types:    types,
	}, nil
}

// symbol resolves name at scope: function locals and parameters, then module
// declarations, then import aliases.
func (q *query) symbol(scope parsetree.Position, name string) (*Symbol, error) {
	bindings, err := q.functionBindings(scope)
	if err != nil {
		return nil, err
	}
	for i := len(bindings) - 1; i >= 0; i-- {
		if bindings[i].name == name {
			return q.bindingSymbol(bindings[i])
		}
	}
	if s, err := q.declarationSymbol(name); s != nil || err != nil {
		return s, err
	}
	return q.importAliasSymbol(name), nil
}

func (q *query) declarationSymbol(name string) (*Symbol, error) {
	i, ok := q.current.find(name)
	if !ok {
		return nil, nil
	}
	return q.symbolFor(q.current.result(i))
}

// symbolFor describes a declaration: functions and globals are values,
// everything else names a type.
func (q *query) symbolFor(r *DeclarationResult) (*Symbol, error) {
	s := &Symbol{
		Name:     r.Declaration.Name,
		Position: namePosition(r.Root, r.Position),
	}
	switch v := r.Declaration.Value.(type) {
	case *model.Function:
		s.Kind = SymbolValue
		s.Types = []model.TypeReference{functionPointer(r.Module, v.Declaration)}
	case *model.GlobalVariable:
		types, err := q.globalType(r)
		if err != nil {
			return nil, err
		}
		s.Kind = SymbolValue
		s.Types = types
	default:
		s.Kind = SymbolType
		s.Types = []model.TypeReference{model.NewCustom(r.Module.Name, r.Declaration.Name)}
	}
	return s, nil
}

// globalType is the declared type of a global, or the type of its initial
// value inferred inside the declaring module.
func (q *query) globalType(r *DeclarationResult) ([]model.TypeReference, error) {
	global, ok := r.Declaration.Value.(*model.GlobalVariable)
	if !ok {
		return nil, nil
	}
	if len(global.Type) > 0 {
		return fixTypes(r.Module, global.Type), nil
	}
	if global.InitialValue.Expression == nil {
		return nil, nil
	}
	key := r.Module.Name + "." + r.Declaration.Name
	if q.resolving[key] {
		return nil, nil
	}
	q.resolving[key] = true
	defer delete(q.resolving, key)

	mt, err := q.treeOf(r)
	if err != nil {
		return nil, err
	}
	et, err := q.in(mt).expressionType(r.Position, global.InitialValue.Expression)
	if err != nil || et == nil {
		return nil, err
	}
	return et.Types, nil
}

func (q *query) importAliasSymbol(alias string) *Symbol {
	imp, ok := q.module().FindImportByAlias(alias)
	if !ok {
		return nil
	}
	s := &Symbol{Kind: SymbolModuleAlias, Name: alias, ModuleAlias: &imp}
	if pos, ok := importPosition(q.root(), alias); ok {
		s.Position = namePosition(q.root(), pos)
	}
	return s
}

func importPosition(root *parsetree.Node, alias string) (parsetree.Position, bool) {
	for _, located := range parsetree.FindDescendants(root, parsetree.Position{}, parsetree.HasLabel(grammar.Import)) {
		if aliasNode, _, ok := parsetree.FindDescendant(located.Node, located.Position, parsetree.HasLabel(grammar.ImportAlias)); ok &&
			parsetree.Text(aliasNode) == alias {
			return located.Position, true
		}
	}
	return nil, false
}

// GetSymbol resolves name as seen from scopePosition. Locals declared before
// the cursor shadow parameters, which shadow module declarations, which
// shadow import aliases. An unknown name returns (nil, nil).
func (a *Analyzer) GetSymbol(ctx context.Context, root *parsetree.Node, scopePosition parsetree.Position, name string) (symbol *Symbol, err error) {
	q, err := a.begin(ctx, "GetSymbol", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.symbol(scopePosition, name)
}

// GetSymbols lists every name visible at scopePosition: function locals in
// declaration order, then module declarations, then import aliases. A
// shadowed name appears once, as its innermost binding.
func (a *Analyzer) GetSymbols(ctx context.Context, root *parsetree.Node, scopePosition parsetree.Position) (symbols []*Symbol, err error) {
	q, err := a.begin(ctx, "GetSymbols", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	bindings, err := q.functionBindings(scopePosition)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var locals []*Symbol
	for i := len(bindings) - 1; i >= 0; i-- {
		if seen[bindings[i].name] {
			continue
		}
		seen[bindings[i].name] = true
		s, err := q.bindingSymbol(bindings[i])
		if err != nil {
			return nil, err
		}
		locals = append(locals, s)
	}
	for i := len(locals) - 1; i >= 0; i-- {
		symbols = append(symbols, locals[i])
	}

	for i, d := range q.module().Declarations {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		s, err := q.symbolFor(q.current.result(i))
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	for _, imp := range q.module().Imports {
		if seen[imp.Alias] {
			continue
		}
		seen[imp.Alias] = true
		if s := q.importAliasSymbol(imp.Alias); s != nil {
			symbols = append(symbols, s)
		}
	}
	return symbols, nil
}

// GetDeclarationSymbol resolves name among the module declarations only.
func (a *Analyzer) GetDeclarationSymbol(ctx context.Context, root *parsetree.Node, name string) (symbol *Symbol, err error) {
	q, err := a.begin(ctx, "GetDeclarationSymbol", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.declarationSymbol(name)
}

// GetImportAliasSymbol resolves alias among the module imports only.
func (a *Analyzer) GetImportAliasSymbol(ctx context.Context, root *parsetree.Node, alias string) (symbol *Symbol, err error) {
	q, err := a.begin(ctx, "GetImportAliasSymbol", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.importAliasSymbol(alias), nil
}
