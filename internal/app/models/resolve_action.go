package models

import "strings"

// ResolveAction is the closed set of operator actions on a form error.
type ResolveAction string

const (
	ActionLinkHousehold   ResolveAction = "link-household"
	ActionAssignBirthdate ResolveAction = "assign-birthdate"
	ActionNewIdentifier   ResolveAction = "new-identifier"
	ActionLinkProvider    ResolveAction = "link-provider"
	ActionCreatePatient   ResolveAction = "create-patient"
	ActionDeleteError     ResolveAction = "delete-error"
	ActionDeleteComment   ResolveAction = "delete-comment"
	ActionNoChange        ResolveAction = "no-change"
)

var ResolveActions = []ResolveAction{
	ActionLinkHousehold,
	ActionAssignBirthdate,
	ActionNewIdentifier,
	ActionLinkProvider,
	ActionCreatePatient,
	ActionDeleteError,
	ActionDeleteComment,
	ActionNoChange,
}

// resolveActionAliases maps the camelCase names older clients send.
var resolveActionAliases = map[string]ResolveAction{
	"linkHousehold":   ActionLinkHousehold,
	"assignBirthdate": ActionAssignBirthdate,
	"newIdentifier":   ActionNewIdentifier,
	"linkProvider":    ActionLinkProvider,
	"createPatient":   ActionCreatePatient,
	"deleteError":     ActionDeleteError,
	"deleteComment":   ActionDeleteComment,
	"noChange":        ActionNoChange,
}

// ParseResolveAction returns the canonical action for raw, accepting the canonical id or
// its camelCase alias. Unknown input is returned as-is and fails Valid.
func ParseResolveAction(raw string) ResolveAction {
	raw = strings.TrimSpace(raw)
	if action, ok := resolveActionAliases[raw]; ok {
		return action
	}
	return ResolveAction(raw)
}

func (a ResolveAction) Valid() bool {
	for _, action := range ResolveActions {
		if a == action {
			return true
		}
	}
	return false
}
