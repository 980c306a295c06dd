package revisionable

import (
	"context"
	"errors"
	"fmt"
)

// AuthConfig mirrors the application's authentication settings: an explicit user
// model, or a default guard whose provider names the model.
type AuthConfig struct {
	Model        string
	DefaultGuard string
	Guards       map[string]string // guard -> provider
	Providers    map[string]string // provider -> model
}

// UserModel returns the configured user model name, if any.
func (c AuthConfig) UserModel() string {
	if c.Model != "" {
		return c.Model
	}
	provider := c.Guards[c.DefaultGuard]
	return c.Providers[provider]
}

// IdentityProvider looks users up outside the ORM, e.g. an external identity service.
type IdentityProvider interface {
	FindUserByID(ctx context.Context, id uint) (any, error)
}

// ActorResponsible returns the user who made the change, or false when the
// revision has no user or the user cannot be found.
func (r *Resolver) ActorResponsible(ctx context.Context, rev *Revision) (any, bool) {
	if rev.UserID == nil || *rev.UserID == 0 {
		return nil, false
	}
	log := r.logger.WithField("user_id", *rev.UserID)

	if r.identity != nil {
		user, err := r.identity.FindUserByID(ctx, *rev.UserID)
		if err != nil || user == nil {
			if err != nil {
				log.WithError(err).Info("revisionable: identity provider lookup failed")
			}
			return nil, false
		}
		return user, true
	}

	model := r.auth.UserModel()
	if model == "" {
		return nil, false
	}
	kind, err := r.store.ResolveAlias(model)
	if err != nil {
		log.WithError(err).Info("revisionable: user model is not registered")
		return nil, false
	}
	user, err := r.store.LoadByID(ctx, kind, fmt.Sprint(*rev.UserID), false)
	if err != nil {
		if !errors.Is(err, ErrInstanceNotFound) {
			log.WithError(err).Info("revisionable: user lookup failed")
		}
		return nil, false
	}
	return user, true
}
