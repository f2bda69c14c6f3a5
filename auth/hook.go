package auth

import (
	"context"
	"errors"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/session"
	"github.com/goliatone/go-storefront/storefront"
)

// BackendRoleSource names the backend profile fallback.
const BackendRoleSource = "backend_profile"

// State is the set of signals the view is derived from.
type State struct {
	User    Claims
	Loading bool
	Err     error
	Member  query.Result[api.Member]
}

// View is the derived authorization view. It is never stored.
type View struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Loading         bool   `json:"loading"`
	Role            string `json:"role,omitempty"`
	RoleSource      string `json:"roleSource,omitempty"`
	IsSeller        bool   `json:"isSeller"`
	User            Claims `json:"user,omitempty"`
}

// Derive computes the view from s: claims first, then the backend profile.
func Derive(s State, extractors []RoleExtractor) View {
	v := View{
		IsAuthenticated: s.User != nil && s.Err == nil,
		Loading:         s.Loading || s.Member.Status == query.StatusLoading,
		User:            s.User,
	}
	if s.User == nil {
		return v
	}

	v.Role, v.RoleSource = ResolveRole(s.User, extractors)
	if v.Role == "" && s.Member.Data.Role != "" {
		v.Role, v.RoleSource = s.Member.Data.Role, BackendRoleSource
	}
	v.IsSeller = v.Role == SellerRole
	return v
}

// MemberLookup is the backend role read hook.
type MemberLookup interface {
	Member(ctx context.Context, v storefront.Viewer) query.Result[api.Member]
}

// Hook composes the session with the backend profile lookup.
type Hook struct {
	members    MemberLookup
	extractors []RoleExtractor
}

// NewHook builds a Hook using the claim strategies for namespace.
func NewHook(members MemberLookup, namespace string) *Hook {
	return &Hook{members: members, extractors: ClaimExtractors(namespace)}
}

// Evaluate derives the view for a session lookup result. The backend lookup
// runs only when a user is present.
func (h *Hook) Evaluate(ctx context.Context, sess *session.Session, lookupErr error) View {
	s := State{}
	if lookupErr != nil && !errors.Is(lookupErr, session.ErrNoSession) {
		s.Err = lookupErr
	}
	if sess != nil {
		s.User = Claims(sess.Claims)
		if s.User == nil {
			s.User = Claims{}
		}
	}

	viewer := ViewerOf(sess)
	if h.members != nil {
		s.Member = h.members.Member(ctx, viewer)
	}
	return Derive(s, h.extractors)
}

// ViewerOf maps a session to the storefront viewer; nil maps to anonymous.
func ViewerOf(sess *session.Session) storefront.Viewer {
	if sess == nil {
		return storefront.Viewer{}
	}
	return storefront.Viewer{Subject: sess.Subject, IDToken: sess.IDToken}
}
