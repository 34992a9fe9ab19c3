// # internal/engine/model/members.go
package model

// Member is a named slot of an enum, struct or union.
type Member struct {
	Name string
	Type []TypeReference
}

// Members lists the members of d. Declarations without members yield nil.
func Members(d Declaration) []Member {
	switch v := d.Value.(type) {
	case *Enum:
		members := make([]Member, 0, len(v.Values))
		for _, value := range v.Values {
			members = append(members, Member{Name: value.Name, Type: []TypeReference{NewInteger(32, true)}})
		}
		return members
	case *Struct:
		members := make([]Member, 0, len(v.MemberNames))
		for i, name := range v.MemberNames {
			members = append(members, Member{Name: name, Type: memberType(v.MemberTypes, i)})
		}
		return members
	case *Union:
		members := make([]Member, 0, len(v.MemberNames))
		for i, name := range v.MemberNames {
			members = append(members, Member{Name: name, Type: memberType(v.MemberTypes, i)})
		}
		return members
	}
	return nil
}

// MemberTypes lists only the member types of d.
func MemberTypes(d Declaration) []TypeReference {
	members := Members(d)
	types := make([]TypeReference, 0, len(members))
	for _, m := range members {
		types = append(types, m.Type...)
	}
	return types
}

// FindMember returns the member of d named name.
func FindMember(d Declaration, name string) (Member, int, bool) {
	for i, m := range Members(d) {
		if m.Name == name {
			return m, i, true
		}
	}
	return Member{}, -1, false
}

func memberType(types []TypeReference, i int) []TypeReference {
	if i < len(types) && types[i] != nil {
		return []TypeReference{types[i]}
	}
	return nil
}
