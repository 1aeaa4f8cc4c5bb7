package access

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Authorizer answers whether a subject may run privileged relay operations.
type Authorizer struct {
	store       Store
	superAdmins []int64
	now         func() time.Time
	log         zerolog.Logger
}

// NewAuthorizer creates an Authorizer. superAdmins are always authorized.
func NewAuthorizer(store Store, superAdmins []int64, log zerolog.Logger) *Authorizer {
	return &Authorizer{
		store:       store,
		superAdmins: slices.Clone(superAdmins),
		now:         time.Now,
		log:         log,
	}
}

// IsSuperAdmin reports whether subject is a configured super admin.
func (a *Authorizer) IsSuperAdmin(subject int64) bool {
	return slices.Contains(a.superAdmins, subject)
}

// IsAuthorized reports whether subject holds an unexpired grant, is a super
// admin, or, when container is non-nil, is on that chat's allow list.
// Lookup failures deny.
func (a *Authorizer) IsAuthorized(ctx context.Context, subject int64, container *int64) bool {
	if a.IsSuperAdmin(subject) {
		return true
	}

	grant, err := a.store.GetGrant(ctx, subject)
	switch {
	case err == nil:
		if grant.ActiveAt(a.now()) {
			return true
		}
	case !errors.Is(err, ErrNotFound):
		a.log.Error().Err(err).Int64("user_id", subject).Msg("load grant")
		return false
	}

	if container == nil {
		return false
	}

	members, err := a.store.GroupMembers(ctx, *container)
	if err != nil {
		a.log.Error().Err(err).Int64("chat_id", *container).Msg("load group members")
		return false
	}
	return slices.Contains(members, subject)
}
