package repository

import (
	"context"
	"fmt"

	"go-blog-service/internal/model"
)

// PolicyRepository persists permission rules. It deliberately exposes only
// whole-rule operations so a rule mutation is always a single statement and
// therefore atomic from any concurrent reader's perspective.
type PolicyRepository struct {
	q Querier
}

func NewPolicyRepository(q Querier) *PolicyRepository {
	return &PolicyRepository{q: q}
}

// AddRule inserts a rule. Inserting an identical rule twice is not an
// error: the unique constraint turns the duplicate into a no-op.
func (r *PolicyRepository) AddRule(ctx context.Context, rule model.PolicyRule) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO policy_rules (ptype, subject, object, action)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT ON CONSTRAINT policy_rules_unique DO NOTHING`,
		rule.PType, rule.Subject, rule.Object, rule.Action)
	if err != nil {
		return fmt.Errorf("add policy rule: %w", err)
	}
	return nil
}

// RemoveRule deletes by exact field equality. Removing a rule that does
// not exist is not an error.
func (r *PolicyRepository) RemoveRule(ctx context.Context, rule model.PolicyRule) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM policy_rules
		 WHERE ptype = $1 AND subject = $2 AND object = $3 AND action = $4`,
		rule.PType, rule.Subject, rule.Object, rule.Action)
	if err != nil {
		return fmt.Errorf("remove policy rule: %w", err)
	}
	return nil
}

func (r *PolicyRepository) RemoveRulesForSubject(ctx context.Context, subject string) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM policy_rules WHERE subject = $1`, subject)
	if err != nil {
		return fmt.Errorf("remove policy rules for subject: %w", err)
	}
	return nil
}

func (r *PolicyRepository) RulesForSubject(ctx context.Context, subject string) ([]model.PolicyRule, error) {
	rows, err := r.q.Query(ctx,
		`SELECT ptype, subject, object, action
		 FROM policy_rules WHERE subject = $1`, subject)
	if err != nil {
		return nil, fmt.Errorf("load policy rules: %w", err)
	}
	defer rows.Close()

	rules := make([]model.PolicyRule, 0)
	for rows.Next() {
		var rule model.PolicyRule
		if err := rows.Scan(&rule.PType, &rule.Subject, &rule.Object, &rule.Action); err != nil {
			return nil, fmt.Errorf("scan policy rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
