package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
)

func caller(userID string, role appctx.Role) *appctx.UserContext {
	return &appctx.UserContext{
		UserID:   userID,
		TenantID: "11111111-1111-1111-1111-111111111111",
		Role:     role,
	}
}

func TestDecideDefaultTable(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	admin := caller("a1", appctx.RoleAdmin)
	u1 := caller("u1", appctx.RoleUser)
	u2 := caller("u2", appctx.RoleUser)

	ownEntry := Subject{Type: SubjectEntry, ID: "m1", OwnerID: "u1"}
	foreignEntry := Subject{Type: SubjectEntry, ID: "m2", OwnerID: "u2"}

	tests := []struct {
		name    string
		caller  *appctx.UserContext
		action  Action
		subject Subject
		want    bool
	}{
		{"admin manages anything", admin, ActionDelete, foreignEntry, true},
		{"admin manages catalogs", admin, ActionUpdate, Subject{Type: SubjectProduct, ID: "p1"}, true},
		{"admin manages users", admin, ActionCreate, Subject{Type: SubjectUser}, true},

		{"user reads any entry", u1, ActionRead, foreignEntry, true},
		{"user reads stock", u1, ActionRead, Subject{Type: SubjectStock}, true},
		{"user creates entries", u1, ActionCreate, Subject{Type: SubjectEntry}, true},
		{"user creates exits", u1, ActionCreate, Subject{Type: SubjectExit}, true},

		{"user updates own entry", u1, ActionUpdate, ownEntry, true},
		{"user deletes own entry", u1, ActionDelete, ownEntry, true},
		{"user cannot update foreign entry", u1, ActionUpdate, foreignEntry, false},
		{"user cannot delete foreign entry", u1, ActionDelete, foreignEntry, false},
		{"other user updates their own", u2, ActionUpdate, foreignEntry, true},

		{"user cannot create products", u1, ActionCreate, Subject{Type: SubjectProduct}, false},
		{"user cannot delete suppliers", u1, ActionDelete, Subject{Type: SubjectSupplier, ID: "s1"}, false},
		{"user cannot manage users", u1, ActionCreate, Subject{Type: SubjectUser}, false},

		{"nil caller denied", nil, ActionRead, ownEntry, false},
		{"unknown role denied", caller("x", appctx.Role("AUDITOR")), ActionRead, ownEntry, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.Decide(tt.caller, tt.action, tt.subject))
		})
	}
}

func TestDecideOwnershipOnExits(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	u1 := caller("u1", appctx.RoleUser)
	ownExit := Subject{Type: SubjectExit, ID: "x1", OwnerID: "u1"}
	foreignExit := Subject{Type: SubjectExit, ID: "x2", OwnerID: "u9"}

	assert.True(t, ev.Decide(u1, ActionUpdate, ownExit))
	assert.True(t, ev.Decide(u1, ActionDelete, ownExit))
	assert.False(t, ev.Decide(u1, ActionUpdate, foreignExit))
	assert.False(t, ev.Decide(u1, ActionDelete, foreignExit))
}

func TestAuthorizeReturnsForbidden(t *testing.T) {
	ev, err := NewEvaluator()
	require.NoError(t, err)

	u1 := caller("u1", appctx.RoleUser)
	err = ev.Authorize(u1, ActionDelete, Subject{Type: SubjectEntry, ID: "m1", OwnerID: "u2"})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	require.NoError(t, ev.Authorize(u1, ActionRead, Subject{Type: SubjectEntry, OwnerID: "u2"}))
}

func TestCustomTableCondition(t *testing.T) {
	table := map[appctx.Role][]Capability{
		appctx.RoleUser: {
			{Action: ActionRead, SubjectType: SubjectAny, Condition: `caller.role == "USER"`},
		},
	}
	ev, err := NewEvaluatorWithTable(table)
	require.NoError(t, err)

	assert.True(t, ev.Decide(caller("u1", appctx.RoleUser), ActionRead, Subject{Type: SubjectProduct}))
	assert.False(t, ev.Decide(caller("u1", appctx.RoleUser), ActionUpdate, Subject{Type: SubjectProduct}))
}

func TestMalformedConditionFailsConstruction(t *testing.T) {
	table := map[appctx.Role][]Capability{
		appctx.RoleUser: {
			{Action: ActionRead, SubjectType: SubjectAny, Condition: `subject.userId ==`},
		},
	}
	_, err := NewEvaluatorWithTable(table)
	require.Error(t, err)
}
