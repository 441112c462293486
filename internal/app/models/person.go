package models

// Person is the identity-service entity a form is enriched into. Changes made through
// the attach operations stay local until the entity is persisted.
type Person struct {
	ID          string
	Identifier  string
	Identifiers []PersonIdentifier
	Attributes  []PersonAttribute
	BirthDate   string
	Dirty       bool
}

type PersonIdentifier struct {
	Value       string
	TypeRef     string
	LocationRef string
}

type PersonAttribute struct {
	TypeRef string
	Value   string
}

func (p *Person) HasIdentifier(value, typeRef string) bool {
	for _, identifier := range p.Identifiers {
		if identifier.Value == value && identifier.TypeRef == typeRef {
			return true
		}
	}
	return false
}

func (p *Person) HasAttribute(value, typeRef string) bool {
	for _, attribute := range p.Attributes {
		if attribute.Value == value && attribute.TypeRef == typeRef {
			return true
		}
	}
	return false
}

type Household struct {
	ID         string
	Identifier string
	HeadRef    string
	MemberRefs []string
}

type Provider struct {
	ID   string
	Code string
}
