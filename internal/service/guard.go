package service

import (
	"context"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// MembershipGuard checks a caller's standing in a group. It runs inside the
// caller's transaction.
type MembershipGuard struct {
	members storage.MemberStore
}

// NewMembershipGuard creates a guard that reads memberships through members.
func NewMembershipGuard(members storage.MemberStore) MembershipGuard {
	return MembershipGuard{members: members}
}

// RequireMember returns the active membership of userID in groupID, or a
// Forbidden error if there is none.
func (g MembershipGuard) RequireMember(ctx context.Context, userID, groupID string) (*models.GroupMember, error) {
	member, err := g.members.GetMember(ctx, userID, groupID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Forbidden("you are not a member of this group")
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RequireAdmin is RequireMember plus the ADMIN role.
func (g MembershipGuard) RequireAdmin(ctx context.Context, userID, groupID string) (*models.GroupMember, error) {
	member, err := g.RequireMember(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, apperr.Forbidden("only group admins can perform this action")
	}
	return member, nil
}

// RequireRemover allows an admin to remove anyone and any member to remove
// themself.
func (g MembershipGuard) RequireRemover(ctx context.Context, actorID, targetUserID, groupID string) (*models.GroupMember, error) {
	if actorID == targetUserID {
		return g.RequireMember(ctx, actorID, groupID)
	}
	return g.RequireAdmin(ctx, actorID, groupID)
}

// requireParticipants checks that every user is an active member of groupID.
// Outsiders are a validation failure of the request, not of the caller.
func requireParticipants(ctx context.Context, members storage.MemberStore, groupID string, userIDs ...string) error {
	for _, id := range userIDs {
		_, err := members.GetMember(ctx, id, groupID)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("user %s is not a member of this group", id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
