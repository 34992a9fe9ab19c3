// # internal/engine/analysis/declarations.go
package analysis

import (
	"context"
	"fmt"
	"strings"

	"hlsense/internal/core/errors"
	"hlsense/internal/engine/grammar"
	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
	"hlsense/internal/engine/projection"
	"hlsense/internal/shared/observability"
)

// DeclarationResult is a declaration together with the tree it was read
// from. Root differs from the queried tree when the declaration lives in
// another module.
type DeclarationResult struct {
	Declaration model.Declaration
	Position    parsetree.Position
	Root        *parsetree.Node
	Module      *model.Module
}

var declarationNameLabels = []string{
	grammar.AliasName,
	grammar.EnumName,
	grammar.FunctionName,
	grammar.FunctionConstructorName,
	grammar.GlobalVariableName,
	grammar.StructName,
	grammar.TypeConstructorName,
	grammar.UnionName,
}

// FindDeclarationNameNode returns the name node of the Declaration at pos.
func FindDeclarationNameNode(root *parsetree.Node, pos parsetree.Position) (*parsetree.Node, parsetree.Position, bool) {
	n, err := parsetree.NodeAt(root, pos)
	if err != nil || n.Label != grammar.Declaration {
		return nil, nil, false
	}
	return parsetree.FindDescendant(n, pos, parsetree.HasLabel(declarationNameLabels...))
}

// FixCustomTypeReference replaces an empty module name with the module of
// root, and an import alias with the module it names.
func FixCustomTypeReference(root *parsetree.Node, ref model.CustomTypeReference) model.CustomTypeReference {
	module := &model.Module{Name: projection.ModuleName(root), Imports: projection.Imports(root)}
	return fixCustom(module, ref)
}

func fixCustom(module *model.Module, ref model.CustomTypeReference) model.CustomTypeReference {
	if ref.ModuleName == "" {
		ref.ModuleName = module.Name
		return ref
	}
	if imp, ok := module.FindImportByAlias(ref.ModuleName); ok {
		ref.ModuleName = imp.ModuleName
	}
	return ref
}

func fixTypes(module *model.Module, refs []model.TypeReference) []model.TypeReference {
	if refs == nil {
		return nil
	}
	out := make([]model.TypeReference, len(refs))
	for i, ref := range refs {
		out[i] = fixType(module, ref)
	}
	return out
}

func fixType(module *model.Module, ref model.TypeReference) model.TypeReference {
	switch t := ref.(type) {
	case model.CustomTypeReference:
		return fixCustom(module, t)
	case model.PointerType:
		return model.PointerType{ElementType: fixTypes(module, t.ElementType), IsMutable: t.IsMutable}
	case model.ConstantArrayType:
		return model.ConstantArrayType{ValueType: fixTypes(module, t.ValueType), Size: t.Size}
	case model.FunctionPointerType:
		t.Type = fixFunctionType(module, t.Type)
		return t
	case model.TypeInstance:
		t.TypeConstructor = fixCustom(module, t.TypeConstructor)
		return t
	}
	return ref
}

func fixFunctionType(module *model.Module, t model.FunctionType) model.FunctionType {
	return model.FunctionType{
		InputParameterTypes:  fixTypes(module, t.InputParameterTypes),
		OutputParameterTypes: fixTypes(module, t.OutputParameterTypes),
		IsVariadic:           t.IsVariadic,
	}
}

func functionPointer(module *model.Module, decl model.FunctionDeclaration) model.TypeReference {
	decl.Type = fixFunctionType(module, decl.Type)
	return model.NewFunctionPointer(decl)
}

// treeOf returns the module tree a result was read from.
func (q *query) treeOf(result *DeclarationResult) (*moduleTree, error) {
	if result.Root == q.root() {
		return q.current, nil
	}
	if result.Module != nil {
		if mt, ok := q.modules[result.Module.Name]; ok && mt != nil && mt.root == result.Root {
			return mt, nil
		}
	}
	mt, err := newModuleTree(result.Root)
	if err != nil {
		return nil, err
	}
	if _, ok := q.modules[mt.module.Name]; !ok {
		q.modules[mt.module.Name] = mt
	}
	return mt, nil
}

// customDeclaration resolves ref relative to the current module. The first
// declaration with a matching name wins.
func (q *query) customDeclaration(ref model.CustomTypeReference) (*DeclarationResult, error) {
	ref = fixCustom(q.module(), ref)
	mt, err := q.load(ref.ModuleName)
	if err != nil || mt == nil {
		return nil, err
	}
	i, ok := mt.find(ref.Name)
	if !ok {
		return nil, nil
	}
	return mt.result(i), nil
}

// underlying follows alias declarations until it reaches a non-alias, an
// alias whose target is not a custom reference, or a missing declaration.
func (q *query) underlying(result *DeclarationResult) (*DeclarationResult, error) {
	visited := make(map[string]bool)
	var chain []string
	hops := 0
	for result != nil {
		if result.Module == nil {
			return nil, errors.New(errors.CodeValidationError, "declaration result has no module")
		}
		alias, ok := result.Declaration.Value.(*model.Alias)
		if !ok {
			break
		}
		key := result.Module.Name + "." + result.Declaration.Name
		chain = append(chain, key)
		if visited[key] || hops >= q.analyzer.maxAliasDepth {
			observability.AliasChainLength.Observe(float64(hops))
			de := &errors.DomainError{
				Code:    errors.CodeCyclicAlias,
				Message: fmt.Sprintf("alias %s does not resolve", chain[0]),
			}
			return nil, de.WithContext(errors.CtxChain, strings.Join(chain, " -> "))
		}
		visited[key] = true

		target, ok := model.AsCustom(alias.Type)
		if !ok {
			break
		}
		if err := q.ctx.Err(); err != nil {
			return nil, errors.Cancelled(err, q.operation)
		}
		mt, err := q.treeOf(result)
		if err != nil {
			return nil, err
		}
		next, err := q.in(mt).customDeclaration(target)
		if err != nil {
			return nil, err
		}
		result = next
		hops++
	}
	observability.AliasChainLength.Observe(float64(hops))
	return result, nil
}

// underlyingType is the type a declaration stands for once aliases are
// removed.
func (q *query) underlyingType(refs []model.TypeReference) ([]model.TypeReference, error) {
	custom, ok := model.AsCustom(refs)
	if !ok {
		return fixTypes(q.module(), refs), nil
	}
	decl, err := q.customDeclaration(custom)
	if err != nil || decl == nil {
		return nil, err
	}
	u, err := q.underlying(decl)
	if err != nil || u == nil {
		return nil, err
	}
	if alias, ok := u.Declaration.Value.(*model.Alias); ok {
		return fixTypes(u.Module, alias.Type), nil
	}
	return []model.TypeReference{model.NewCustom(u.Module.Name, u.Declaration.Name)}, nil
}

// GetDeclarationUsingParseTree looks name up among the declarations of root.
func (a *Analyzer) GetDeclarationUsingParseTree(ctx context.Context, root *parsetree.Node, name string) (result *DeclarationResult, err error) {
	q, err := a.begin(ctx, "GetDeclarationUsingParseTree", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	i, ok := q.current.find(name)
	if !ok {
		return nil, nil
	}
	return q.current.result(i), nil
}

// GetCustomTypeReferenceDeclarationUsingParseTree resolves ref, loading the
// module it names when that is not root.
func (a *Analyzer) GetCustomTypeReferenceDeclarationUsingParseTree(ctx context.Context, root *parsetree.Node, ref model.CustomTypeReference) (result *DeclarationResult, err error) {
	q, err := a.begin(ctx, "GetCustomTypeReferenceDeclarationUsingParseTree", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.customDeclaration(ref)
}

// GetUnderlyingTypeDeclaration chases aliases starting at declaration.
// Cycles and chains longer than the configured depth return CodeCyclicAlias.
func (a *Analyzer) GetUnderlyingTypeDeclaration(ctx context.Context, root *parsetree.Node, declaration *DeclarationResult) (result *DeclarationResult, err error) {
	if declaration == nil {
		return nil, nil
	}
	q, err := a.begin(ctx, "GetUnderlyingTypeDeclaration", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.underlying(declaration)
}

// GetUnderlyingTypeDeclarationFromParseTree chases aliases starting at the
// Declaration node at pos.
func (a *Analyzer) GetUnderlyingTypeDeclarationFromParseTree(ctx context.Context, root *parsetree.Node, pos parsetree.Position) (result *DeclarationResult, err error) {
	q, err := a.begin(ctx, "GetUnderlyingTypeDeclarationFromParseTree", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	if len(pos) != 1 {
		return nil, nil
	}
	i, ok := q.current.indexAt(pos[0])
	if !ok {
		return nil, nil
	}
	return q.underlying(q.current.result(i))
}

// GetUnderlyingType resolves refs through aliases. Non-custom types are
// returned with their module names fixed.
func (a *Analyzer) GetUnderlyingType(ctx context.Context, root *parsetree.Node, refs []model.TypeReference) (types []model.TypeReference, err error) {
	q, err := a.begin(ctx, "GetUnderlyingType", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	return q.underlyingType(refs)
}
