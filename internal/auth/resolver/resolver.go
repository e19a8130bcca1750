// Package resolver decides where a newly authenticated identity lands.
// Every outcome is a one-shot redirect; no branch surfaces an error to the
// caller.
package resolver

import (
	"context"

	"github.com/adhikari-dikshant/kanban/internal/auth"
	"github.com/adhikari-dikshant/kanban/internal/identity"
	"github.com/adhikari-dikshant/kanban/internal/logger"
	"github.com/adhikari-dikshant/kanban/internal/profile"
)

// Request carries the inbound callback parameters.
type Request struct {
	Code         string
	CodeVerifier string
	// Next is the caller-supplied post-login path. Role-derived homes take
	// precedence; it is kept for completeness of the inbound contract.
	Next string
}

// Result is the terminal outcome of one callback.
type Result struct {
	// Target is the redirect path, always set.
	Target string
	// Session, when non-nil, should be established for the client.
	Session *identity.Session
	// SignedOut marks that the resolver revoked the session; any session
	// cookie must be cleared instead of set.
	SignedOut bool
}

// Resolver reconciles a provider identity with the local profile record.
// Dependencies are injected; the resolver holds no ambient state.
type Resolver struct {
	provider identity.Provider
	profiles profile.Store
}

func New(provider identity.Provider, profiles profile.Store) *Resolver {
	return &Resolver{
		provider: provider,
		profiles: profiles,
	}
}

// Resolve runs the callback state machine:
//
//	no code            -> auth error, no side effects
//	exchange failure   -> auth error
//	no user / no email -> auth error (fatal; no silent default role)
//	role unset         -> role selection
//	inactive profile   -> sign out, access denied
//	otherwise          -> role home, inserting the profile if absent
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	if req.Code == "" {
		return Result{Target: auth.PathAuthError}
	}

	sess, err := r.provider.ExchangeCode(ctx, req.Code, req.CodeVerifier)
	if err != nil {
		logger.Warn("code exchange failed", map[string]any{
			"error": err.Error(),
		})
		return Result{Target: auth.PathAuthError}
	}

	var user *identity.User
	if sess != nil {
		user = sess.User
	}
	if user == nil || user.Email == "" {
		// A session without an addressable identity is unusable; treat it
		// as a failed authentication rather than inventing a default role.
		return Result{Target: auth.PathAuthError}
	}

	role := auth.ParseRole(user.Role())
	if role == "" {
		// First login: the role-selection flow collects the choice. The
		// session still has to be established so that flow has a user.
		return Result{Target: auth.PathSelectRole, Session: sess}
	}

	p, err := r.profiles.GetByID(ctx, user.ID)
	if err != nil {
		logger.Warn("profile lookup failed", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		p = nil
	}

	if p == nil {
		insertErr := r.profiles.Insert(ctx, profile.Profile{
			ID:     user.ID,
			Email:  user.Email,
			Role:   role,
			Status: profile.StatusActive,
		})
		if insertErr != nil {
			// Non-fatal: a concurrent callback may have won the insert.
			logger.Error("profile insert failed", map[string]any{
				"user_id": user.ID,
				"error":   insertErr.Error(),
			})
		}
	} else if p.Status != profile.StatusActive {
		if err := r.provider.SignOut(ctx, sess.AccessToken); err != nil {
			logger.Error("sign-out of inactive profile failed", map[string]any{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
		return Result{Target: auth.PathAccessDeniedInactive, SignedOut: true}
	}

	return Result{Target: role.HomePath(), Session: sess}
}
