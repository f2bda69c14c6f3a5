package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/session"
	"github.com/goliatone/go-storefront/storefront"
)

type fakeMembers struct {
	role  string
	calls int
}

func (f *fakeMembers) Member(_ context.Context, v storefront.Viewer) query.Result[api.Member] {
	if !v.Signed() {
		return query.Result[api.Member]{Status: query.StatusIdle}
	}
	f.calls++
	return query.Result[api.Member]{Status: query.StatusSuccess, Data: api.Member{ID: v.Subject, Role: f.role}}
}

func TestResolveRole_Precedence(t *testing.T) {
	extractors := ClaimExtractors("")
	ns := DefaultRoleNamespace + "/role"

	tests := []struct {
		name       string
		claims     Claims
		wantRole   string
		wantSource string
	}{
		{"namespaced wins", Claims{ns: "SELLER", "role": "BUYER"}, "SELLER", "namespaced_claim"},
		{"namespaced list", Claims{ns: []any{"", "SELLER"}}, "SELLER", "namespaced_claim"},
		{"flat fallback", Claims{"role": "BUYER"}, "BUYER", "flat_claim"},
		{"blank namespaced falls through", Claims{ns: "  ", "role": "BUYER"}, "BUYER", "flat_claim"},
		{"wrong type ignored", Claims{ns: 42}, "", ""},
		{"none", Claims{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, source := ResolveRole(tt.claims, extractors)
			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestNamespacedClaim_CustomNamespace(t *testing.T) {
	role, ok := NamespacedClaim("https://example.org/").Extract(Claims{"https://example.org/role": "SELLER"})
	assert.True(t, ok)
	assert.Equal(t, "SELLER", role)
}

func TestDerive(t *testing.T) {
	extractors := ClaimExtractors("")
	ns := DefaultRoleNamespace + "/role"
	backend := func(role string) query.Result[api.Member] {
		return query.Result[api.Member]{Status: query.StatusSuccess, Data: api.Member{Role: role}}
	}

	tests := []struct {
		name   string
		state  State
		authed bool
		role   string
		seller bool
	}{
		{"no user", State{Member: backend("SELLER")}, false, "", false},
		{"claim seller", State{User: Claims{ns: "SELLER"}, Member: backend("BUYER")}, true, "SELLER", true},
		{"flat claim beats backend", State{User: Claims{"role": "BUYER"}, Member: backend("SELLER")}, true, "BUYER", false},
		{"backend fallback", State{User: Claims{}, Member: backend("SELLER")}, true, "SELLER", true},
		{"no role anywhere", State{User: Claims{}}, true, "", false},
		{"idp error", State{User: Claims{ns: "SELLER"}, Err: errors.New("idp down")}, false, "SELLER", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Derive(tt.state, extractors)
			assert.Equal(t, tt.authed, v.IsAuthenticated)
			assert.Equal(t, tt.role, v.Role)
			assert.Equal(t, tt.seller, v.IsSeller)
		})
	}
}

func TestDerive_Loading(t *testing.T) {
	v := Derive(State{Loading: true}, nil)
	assert.True(t, v.Loading)

	v = Derive(State{User: Claims{}, Member: query.Result[api.Member]{Status: query.StatusLoading}}, nil)
	assert.True(t, v.Loading)
}

func TestHook_Evaluate(t *testing.T) {
	members := &fakeMembers{role: "SELLER"}
	hook := NewHook(members, DefaultRoleNamespace)
	ctx := context.Background()

	v := hook.Evaluate(ctx, nil, session.ErrNoSession)
	assert.False(t, v.IsAuthenticated)
	assert.Zero(t, members.calls)

	v = hook.Evaluate(ctx, &session.Session{Subject: "alice", Claims: map[string]any{"sub": "alice"}}, nil)
	assert.True(t, v.IsAuthenticated)
	assert.True(t, v.IsSeller)
	assert.Equal(t, BackendRoleSource, v.RoleSource)
	assert.Equal(t, 1, members.calls)

	v = hook.Evaluate(ctx, &session.Session{Subject: "alice"}, errors.New("boom"))
	assert.False(t, v.IsAuthenticated)
}

func TestViewerOf(t *testing.T) {
	assert.False(t, ViewerOf(nil).Signed())
	v := ViewerOf(&session.Session{Subject: "alice", IDToken: "tok"})
	assert.Equal(t, storefront.Viewer{Subject: "alice", IDToken: "tok"}, v)
}
