package differ

import "apiforge/internal/mapping"

type RuleOptions struct {
	Exemptions        []Exemption
	IgnoredAttributes []string
}

// DefaultRules returns the built-in rules in registration order.
func DefaultRules(opts RuleOptions) []Rule {
	ignored := opts.IgnoredAttributes
	if ignored == nil {
		ignored = DefaultIgnoredAttributes
	}
	return []Rule{
		ModuleIdentityMustMatch{},
		NewCannotChangeInheritance(opts.Exemptions...),
		TypeKindMustMatch{},
		CannotSealType{},
		CannotMakeTypeAbstract{},
		NewCannotReduceVisibility(mapping.KindType),
		NewCannotReduceVisibility(mapping.KindMember),
		MemberKindMustMatch{},
		ReturnTypeMustMatch{},
		CannotChangeStatic{},
		CannotMakeAbstract{},
		NewCannotAddAttributes(mapping.KindType, ignored),
		NewCannotAddAttributes(mapping.KindMember, ignored),
	}
}

func DefaultRegistry(opts RuleOptions) *Registry {
	return NewRegistry(DefaultRules(opts)...)
}
