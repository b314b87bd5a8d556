package policy

import (
	"context"
	"fmt"

	"go-blog-service/internal/model"
)

// RuleSource is the coarse fetch the enforcer evaluates against. The
// concrete implementation owns whatever synchronization its backing store
// requires; the enforcer itself holds no state.
type RuleSource interface {
	RulesForSubject(ctx context.Context, subject string) ([]model.PolicyRule, error)
}

// Enforcer answers allow/deny queries over (subject, object, action)
// triples. A request is allowed iff at least one stored rule for the exact
// subject matches both the object path and the action verb.
type Enforcer struct {
	rules RuleSource
}

func NewEnforcer(rules RuleSource) *Enforcer {
	return &Enforcer{rules: rules}
}

func (e *Enforcer) Check(ctx context.Context, subject string, object string, action string) (bool, error) {
	if subject == "" {
		return false, nil
	}

	rules, err := e.rules.RulesForSubject(ctx, subject)
	if err != nil {
		return false, fmt.Errorf("load rules for subject: %w", err)
	}

	for _, rule := range rules {
		if rule.PType != model.DefaultPolicyType {
			continue
		}
		if PathMatch(object, rule.Object) && ActionMatch(action, rule.Action) {
			return true, nil
		}
	}
	return false, nil
}

// SelfGrantRule is the single rule inserted when an identity is created:
// full-method access to the identity's own resource namespace.
func SelfGrantRule(username string, resourceRoot string) model.PolicyRule {
	return model.PolicyRule{
		PType:   model.DefaultPolicyType,
		Subject: username,
		Object:  resourceRoot + "/" + username,
		Action:  "(GET)|(POST)|(PUT)|(DELETE)",
	}
}
