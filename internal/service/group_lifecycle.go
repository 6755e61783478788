package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/auth"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// GroupDetail is a group with its active members and money picture.
type GroupDetail struct {
	models.Group
	Members     []*models.GroupMember `json:"members"`
	MemberCount int                   `json:"member_count"`
	TotalSpent  decimal.Decimal       `json:"total_spent"`
	Balances    *GroupBalanceSheet    `json:"balances"`
}

// GroupLifecycle creates groups and manages their membership.
type GroupLifecycle struct {
	store  storage.Store
	logger *slog.Logger
}

// NewGroupLifecycle creates a GroupLifecycle over store.
func NewGroupLifecycle(store storage.Store, logger *slog.Logger) *GroupLifecycle {
	return &GroupLifecycle{store: store, logger: logger}
}

// Create makes a group with the caller as ADMIN and every known email as
// MEMBER. Unknown emails and the caller's own are skipped; if nobody else
// could be added the group is not created.
func (g *GroupLifecycle) Create(ctx context.Context, actorID, name, description string, memberEmails []string) (*GroupDetail, error) {
	g.logger.Info("CreateGroup request received",
		"actor_id", actorID,
		"name", name,
		"members_count", len(memberEmails),
	)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if len(memberEmails) == 0 {
		return nil, apperr.Validation("at least one member email is required")
	}

	var detail *GroupDetail
	err := g.store.Update(ctx, func(tx storage.Tx) error {
		actor, err := tx.GetUserByID(ctx, actorID)
		if err != nil {
			return err
		}

		group := &models.Group{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(description),
			Audit:       models.NewAudit(actorID),
		}
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		if err := tx.CreateMember(ctx, newMember(group.ID, actorID, actorID, models.RoleGroupAdmin)); err != nil {
			return err
		}

		added := 0
		seen := map[string]bool{actor.Email: true}
		for _, email := range memberEmails {
			email = auth.NormalizeEmail(email)
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true

			user, err := tx.GetUserByEmail(ctx, email)
			if apperr.Is(err, apperr.KindNotFound) {
				g.logger.Debug("Skipping unknown member email", "email", email)
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.CreateMember(ctx, newMember(group.ID, user.ID, actorID, models.RoleGroupMember)); err != nil {
				return err
			}
			added++
		}
		if added == 0 {
			return apperr.Validation("a group needs at least one registered member besides its creator")
		}

		detail, err = loadGroupDetail(ctx, tx, group.ID)
		return err
	})
	if err != nil {
		g.logger.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	g.logger.Info("Group created", "group_id", detail.ID, "member_count", detail.MemberCount)
	return detail, nil
}

// GetDetail returns a group the caller belongs to.
func (g *GroupLifecycle) GetDetail(ctx context.Context, actorID, groupID string) (*GroupDetail, error) {
	var detail *GroupDetail
	err := g.store.View(ctx, func(tx storage.Tx) error {
		if err := requireGroupMember(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		var err error
		detail, err = loadGroupDetail(ctx, tx, groupID)
		return err
	})
	if err != nil {
		g.logger.Warn("GetGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return detail, nil
}

// Update renames or re-describes a group. Nil fields are left as they are.
func (g *GroupLifecycle) Update(ctx context.Context, actorID, groupID string, name, description *string) (*models.Group, error) {
	g.logger.Info("UpdateGroup request received", "actor_id", actorID, "group_id", groupID)

	var group *models.Group
	err := g.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		if group, err = requireGroupAdmin(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return apperr.Validation("group name cannot be empty")
			}
			group.Name = n
		}
		if description != nil {
			group.Description = strings.TrimSpace(*description)
		}
		group.Touch(actorID)
		return tx.UpdateGroup(ctx, group)
	})
	if err != nil {
		g.logger.Error("UpdateGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}

	g.logger.Info("Group updated", "group_id", groupID)
	return group, nil
}

// AddMember adds the user registered under email. A previously removed
// member is reactivated with the new role.
func (g *GroupLifecycle) AddMember(ctx context.Context, actorID, groupID, email string, role models.GroupRole) (*models.GroupMember, error) {
	g.logger.Info("AddMember request received", "actor_id", actorID, "group_id", groupID, "email", email)

	if role.IsZero() {
		role = models.RoleGroupMember
	}

	var member *models.GroupMember
	err := g.store.Update(ctx, func(tx storage.Tx) error {
		if _, err := requireGroupAdmin(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		user, err := tx.GetUserByEmail(ctx, auth.NormalizeEmail(email))
		if err != nil {
			return err
		}

		existing, err := tx.FindMember(ctx, user.ID, groupID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			member = newMember(groupID, user.ID, actorID, role)
			err = tx.CreateMember(ctx, member)
		case existing.IsDeleted():
			member = existing
			member.Role = role
			member.DeletedAt, member.DeletedBy = nil, nil
			member.Touch(actorID)
			err = tx.UpdateMember(ctx, member)
		default:
			return apperr.Validation("%s is already a member of this group", user.Email)
		}
		if err != nil {
			return err
		}

		ref := user.Ref()
		member.User = &ref
		return nil
	})
	if err != nil {
		g.logger.Error("AddMember failed", "group_id", groupID, "email", email, "error", err)
		return nil, err
	}

	g.logger.Info("Member added", "group_id", groupID, "user_id", member.UserID, "role", member.Role.String())
	return member, nil
}

// RemoveMember tombstones memberUserID's membership. Admins may remove
// anyone; members may remove themselves.
func (g *GroupLifecycle) RemoveMember(ctx context.Context, actorID, groupID, memberUserID string) error {
	g.logger.Info("RemoveMember request received", "actor_id", actorID, "group_id", groupID, "member_id", memberUserID)

	err := g.store.Update(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetGroup(ctx, groupID); err != nil {
			return err
		}
		if _, err := NewMembershipGuard(tx).RequireRemover(ctx, actorID, memberUserID, groupID); err != nil {
			return err
		}
		target, err := tx.GetMember(ctx, memberUserID, groupID)
		if err != nil {
			return err
		}
		return tx.DeleteMember(ctx, target.ID, actorID)
	})
	if err != nil {
		g.logger.Error("RemoveMember failed", "group_id", groupID, "member_id", memberUserID, "error", err)
		return err
	}

	g.logger.Info("Member removed", "group_id", groupID, "member_id", memberUserID)
	return nil
}

// UpdateMemberRole changes an active member's role.
func (g *GroupLifecycle) UpdateMemberRole(ctx context.Context, actorID, groupID, memberUserID string, role models.GroupRole) (*models.GroupMember, error) {
	g.logger.Info("UpdateMemberRole request received",
		"actor_id", actorID,
		"group_id", groupID,
		"member_id", memberUserID,
		"role", role.String(),
	)

	if role.IsZero() {
		return nil, apperr.Validation("role is required")
	}

	var member *models.GroupMember
	err := g.store.Update(ctx, func(tx storage.Tx) error {
		if _, err := requireGroupAdmin(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		var err error
		if member, err = tx.GetMember(ctx, memberUserID, groupID); err != nil {
			return err
		}
		member.Role = role
		member.Touch(actorID)
		return tx.UpdateMember(ctx, member)
	})
	if err != nil {
		g.logger.Error("UpdateMemberRole failed", "group_id", groupID, "member_id", memberUserID, "error", err)
		return nil, err
	}

	g.logger.Info("Member role updated", "group_id", groupID, "member_id", memberUserID, "role", role.String())
	return member, nil
}

// Delete tombstones the group, its active memberships and its active bills
// in one transaction.
func (g *GroupLifecycle) Delete(ctx context.Context, actorID, groupID string) error {
	g.logger.Info("DeleteGroup request received", "actor_id", actorID, "group_id", groupID)

	var bills, members int64
	err := g.store.Update(ctx, func(tx storage.Tx) error {
		if _, err := requireGroupAdmin(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		var err error
		if bills, err = tx.DeleteBillsByGroup(ctx, groupID, actorID); err != nil {
			return err
		}
		if members, err = tx.DeleteMembersByGroup(ctx, groupID, actorID); err != nil {
			return err
		}
		return tx.DeleteGroup(ctx, groupID, actorID)
	})
	if err != nil {
		g.logger.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	g.logger.Info("Group deleted", "group_id", groupID, "bills", bills, "members", members)
	return nil
}

func loadGroupDetail(ctx context.Context, tx storage.Tx, groupID string) (*GroupDetail, error) {
	group, err := tx.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := tx.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	spent, err := tx.SumBillTotals(ctx, groupID)
	if err != nil {
		return nil, err
	}
	sheet, err := groupBalanceSheet(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	return &GroupDetail{
		Group:       *group,
		Members:     members,
		MemberCount: len(members),
		TotalSpent:  spent,
		Balances:    sheet,
	}, nil
}

// requireGroupAdmin resolves the group and requires the caller to administer it.
func requireGroupAdmin(ctx context.Context, tx storage.Tx, userID, groupID string) (*models.Group, error) {
	group, err := tx.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := NewMembershipGuard(tx).RequireAdmin(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

func newMember(groupID, userID, actorID string, role models.GroupRole) *models.GroupMember {
	return &models.GroupMember{
		ID:      uuid.NewString(),
		UserID:  userID,
		GroupID: groupID,
		Role:    role,
		Audit:   models.NewAudit(actorID),
	}
}
