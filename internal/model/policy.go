package model

// DefaultPolicyType is the rule class used for plain permission grants.
const DefaultPolicyType = "p"

// PolicyRule is a (subject, object-pattern, action-pattern) grant. Subject
// is compared by exact equality against the caller's username; the object
// pattern is matched hierarchically against the request path; the action
// pattern is a regular expression matched in full against the HTTP verb.
type PolicyRule struct {
	PType   string `json:"ptype"`
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}
