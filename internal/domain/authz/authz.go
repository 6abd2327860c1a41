// Package authz implements capability-based authorization: a per-role ordered
// capability table evaluated as Decide(caller, action, subject). Capabilities
// may carry a CEL condition over the caller and the subject instance, which is
// how ownership rules ("users may edit only their own movements") are
// expressed without hardcoding them in handlers.
package authz

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
)

// Action names what the caller wants to do with the subject.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionManage matches every action when used in a capability.
	ActionManage Action = "manage"
)

// Subject type names used across the capability table and handlers.
const (
	SubjectEntry    = "entry"
	SubjectExit     = "exit"
	SubjectProduct  = "product"
	SubjectSupplier = "supplier"
	SubjectField    = "field"
	SubjectFarm     = "farm"
	SubjectStock    = "stock"
	SubjectUser     = "user"
	SubjectAny      = "*"
)

// Subject describes the instance being acted on. OwnerID is the recording
// user for movements and empty for unowned subjects.
type Subject struct {
	Type    string
	ID      string
	OwnerID string
}

// Capability grants one action on one subject type, optionally guarded by a
// CEL condition over `caller` and `subject`.
type Capability struct {
	Action      Action
	SubjectType string
	Condition   string
}

// OwnedByCaller is the ownership condition used for movement mutations.
const OwnedByCaller = `subject.userId == caller.id`

// DefaultTable is the capability table the service ships with.
// ADMIN holds a blanket manage grant. USER reads everything in the tenant,
// records movements, and may only modify or remove movements they recorded.
func DefaultTable() map[appctx.Role][]Capability {
	return map[appctx.Role][]Capability{
		appctx.RoleAdmin: {
			{Action: ActionManage, SubjectType: SubjectAny},
		},
		appctx.RoleUser: {
			{Action: ActionRead, SubjectType: SubjectAny},
			{Action: ActionCreate, SubjectType: SubjectEntry},
			{Action: ActionCreate, SubjectType: SubjectExit},
			{Action: ActionUpdate, SubjectType: SubjectEntry, Condition: OwnedByCaller},
			{Action: ActionDelete, SubjectType: SubjectEntry, Condition: OwnedByCaller},
			{Action: ActionUpdate, SubjectType: SubjectExit, Condition: OwnedByCaller},
			{Action: ActionDelete, SubjectType: SubjectExit, Condition: OwnedByCaller},
		},
	}
}

type compiledCapability struct {
	action      Action
	subjectType string
	condition   cel.Program
}

// Evaluator answers authorization decisions against a compiled capability
// table. Safe for concurrent use.
type Evaluator struct {
	rules map[appctx.Role][]compiledCapability
}

// NewEvaluator compiles the default capability table.
func NewEvaluator() (*Evaluator, error) {
	return NewEvaluatorWithTable(DefaultTable())
}

// NewEvaluatorWithTable compiles an explicit capability table. Conditions are
// compiled once; a malformed expression fails construction, not evaluation.
func NewEvaluatorWithTable(table map[appctx.Role][]Capability) (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("caller", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("subject", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	rules := make(map[appctx.Role][]compiledCapability, len(table))
	for role, caps := range table {
		compiled := make([]compiledCapability, 0, len(caps))
		for _, c := range caps {
			cc := compiledCapability{action: c.Action, subjectType: c.SubjectType}
			if c.Condition != "" {
				ast, iss := env.Compile(c.Condition)
				if iss.Err() != nil {
					return nil, fmt.Errorf("compile condition %q: %w", c.Condition, iss.Err())
				}
				prg, err := env.Program(ast)
				if err != nil {
					return nil, fmt.Errorf("build program for %q: %w", c.Condition, err)
				}
				cc.condition = prg
			}
			compiled = append(compiled, cc)
		}
		rules[role] = compiled
	}
	return &Evaluator{rules: rules}, nil
}

// Decide reports whether the caller may perform the action on the subject.
// Capabilities are checked in table order; the first one whose action,
// subject type and condition all hold grants access. No match means deny.
func (e *Evaluator) Decide(caller *appctx.UserContext, action Action, subject Subject) bool {
	if caller == nil {
		return false
	}
	for _, rule := range e.rules[caller.Role] {
		if rule.action != ActionManage && rule.action != action {
			continue
		}
		if rule.subjectType != SubjectAny && rule.subjectType != subject.Type {
			continue
		}
		if rule.condition == nil {
			return true
		}
		ok, err := evalCondition(rule.condition, caller, subject)
		if err != nil {
			// An evaluation error never grants access.
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Authorize is Decide returning a FORBIDDEN AppError on denial.
func (e *Evaluator) Authorize(caller *appctx.UserContext, action Action, subject Subject) error {
	if e.Decide(caller, action, subject) {
		return nil
	}
	return apperror.NewForbidden("not allowed to "+string(action)+" this "+subject.Type).
		WithDetail("action", string(action)).
		WithDetail("subject_type", subject.Type)
}

func evalCondition(prg cel.Program, caller *appctx.UserContext, subject Subject) (bool, error) {
	out, _, err := prg.Eval(map[string]any{
		"caller": map[string]any{
			"id":       caller.UserID,
			"tenantId": caller.TenantID,
			"email":    caller.Email,
			"role":     string(caller.Role),
		},
		"subject": map[string]any{
			"type":   subject.Type,
			"id":     subject.ID,
			"userId": subject.OwnerID,
		},
	})
	if err != nil {
		return false, err
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to bool")
	}
	return result, nil
}
