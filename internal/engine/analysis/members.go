// # internal/engine/analysis/members.go
package analysis

import (
	"context"

	"hlsense/internal/engine/model"
	"hlsense/internal/engine/parsetree"
)

// GetDeclarationMembers lists the enum values, struct members or union
// members of d. Member types are returned as written.
func GetDeclarationMembers(d model.Declaration) []model.Member {
	return model.Members(d)
}

// GetDeclarationMemberTypes lists only the member types of d. Enum values
// are Int32.
func GetDeclarationMemberTypes(d model.Declaration) []model.TypeReference {
	return model.MemberTypes(d)
}

// GetUnderlyingMembers lists the members of declaration once aliases are
// removed, with member types resolved against the declaring module.
func (a *Analyzer) GetUnderlyingMembers(ctx context.Context, root *parsetree.Node, declaration *DeclarationResult) (members []model.Member, err error) {
	if declaration == nil {
		return nil, nil
	}
	q, err := a.begin(ctx, "GetUnderlyingMembers", root)
	if err != nil {
		return nil, err
	}
	defer q.end(&err)

	u, err := q.underlying(declaration)
	if err != nil || u == nil {
		return nil, err
	}
	members = model.Members(u.Declaration)
	for i := range members {
		members[i].Type = fixTypes(u.Module, members[i].Type)
	}
	return members, nil
}

// IsEnumType reports whether refs is a single custom reference whose
// underlying declaration is an enum.
func (a *Analyzer) IsEnumType(ctx context.Context, root *parsetree.Node, refs []model.TypeReference) (isEnum bool, err error) {
	if len(refs) != 1 {
		return false, nil
	}
	custom, ok := refs[0].(model.CustomTypeReference)
	if !ok {
		return false, nil
	}
	q, err := a.begin(ctx, "IsEnumType", root)
	if err != nil {
		return false, err
	}
	defer q.end(&err)

	decl, err := q.customDeclaration(custom)
	if err != nil || decl == nil {
		return false, err
	}
	u, err := q.underlying(decl)
	if err != nil || u == nil {
		return false, err
	}
	_, isEnum = u.Declaration.Value.(*model.Enum)
	return isEnum, nil
}
