package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
	pkgerrors "course-ops/backend/pkg/errors"
)

// Team membership is only valid through an APPROVED enrollment. The helpers
// below run inside a caller-owned transaction whenever an enrollment stops
// backing a membership (completion, cancellation, course completion) or
// when its owner founds a team of their own.

// lockTeams row-locks the given teams in id order so that two transactions
// touching overlapping teams always acquire locks in the same sequence.
// Teams deleted in the meantime are skipped.
func lockTeams(ctx context.Context, tx *repository.Repository, ids []string) (map[string]*model.Team, error) {
	uniq := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		uniq[id] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for id := range uniq {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	locked := make(map[string]*model.Team, len(sorted))
	for _, id := range sorted {
		team, err := tx.Team.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		locked[id] = team
	}
	return locked, nil
}

// lockEligibleEnrollment re-reads the enrollment under a row lock and checks
// it can still back a team membership. Cancel and Complete take the same lock
// before changing status, so the check holds until the caller commits.
func lockEligibleEnrollment(ctx context.Context, tx *repository.Repository, enrollmentID string) error {
	e, err := tx.Enrollment.GetForUpdate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	if !e.IsEligibleForTeam() {
		return ErrEnrollmentNotEligible
	}
	return nil
}

// detachEnrollment rejects the enrollment's pending applications and removes
// its team membership. A departing leader hands over to the earliest-joined
// remaining member; a sole member takes the team with them.
func detachEnrollment(ctx context.Context, tx *repository.Repository, enrollmentID, actorID string, logger *zap.Logger) error {
	apps, err := tx.TeamApplication.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return err
	}
	var pending []model.TeamApplication
	for _, app := range apps {
		if app.Status == model.ApplicationPending {
			pending = append(pending, app)
		}
	}

	// unlocked read: only tells us which team to lock
	seen, err := tx.Team.GetMemberByEnrollment(ctx, enrollmentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		seen = nil
	}

	if len(pending) == 0 && seen == nil {
		return nil
	}

	ids := make([]string, 0, len(pending)+1)
	for _, app := range pending {
		ids = append(ids, app.TeamID)
	}
	if seen != nil {
		ids = append(ids, seen.TeamID)
	}
	teams, err := lockTeams(ctx, tx, ids)
	if err != nil {
		return err
	}
	memberTeam, member := lockedMembership(teams, enrollmentID)

	now := time.Now().UTC()
	dirty := make(map[string]bool)

	for _, app := range pending {
		team, ok := teams[app.TeamID]
		if !ok {
			continue
		}
		if err := tx.TeamApplication.Resolve(ctx, app.ApplicationID, model.ApplicationRejected, &actorID, now); err != nil {
			if errors.Is(err, pkgerrors.ErrConcurrencyConflict) {
				continue // resolved by someone else before the lock
			}
			return err
		}
		if team.PendingApplications > 0 {
			team.PendingApplications--
		}
		dirty[team.TeamID] = true
	}

	if member != nil {
		deleted, err := dropMember(ctx, tx, memberTeam, member, logger)
		if err != nil {
			return err
		}
		if deleted {
			delete(dirty, memberTeam.TeamID)
		} else {
			dirty[memberTeam.TeamID] = true
		}
	}

	for id := range dirty {
		team := teams[id]
		team.UpdatedBy = &actorID
		if err := tx.Team.Update(ctx, team); err != nil {
			return err
		}
	}
	return nil
}

// lockedMembership finds the enrollment's member row among the locked teams.
// A membership removed by a transaction that committed before the lock was
// granted is no longer there, and the result is nil.
func lockedMembership(teams map[string]*model.Team, enrollmentID string) (*model.Team, *model.TeamMember) {
	for _, team := range teams {
		if m := team.MemberByEnrollment(enrollmentID); m != nil {
			member := *m
			return team, &member
		}
	}
	return nil, nil
}

// dropMember removes member from the locked team and adjusts the in-memory
// counters; the caller persists team. It reports whether the team itself was
// deleted because member was the last one.
func dropMember(ctx context.Context, tx *repository.Repository, team *model.Team, member *model.TeamMember, logger *zap.Logger) (bool, error) {
	if len(team.Members) <= 1 {
		if err := tx.Team.Delete(ctx, team.TeamID); err != nil {
			return false, err
		}
		logger.Info("team disbanded after last member left",
			zap.String("team_id", team.TeamID),
			zap.String("enrollment_id", member.EnrollmentID))
		return true, nil
	}

	if err := tx.Team.RemoveMember(ctx, member.MemberID); err != nil {
		return false, err
	}

	if member.Role == model.MemberLeader {
		var successor *model.TeamMember
		for i := range team.Members {
			if team.Members[i].MemberID != member.MemberID {
				successor = &team.Members[i]
				break
			}
		}
		if err := tx.Team.UpdateMemberRole(ctx, successor.MemberID, model.MemberLeader); err != nil {
			return false, err
		}
		successor.Role = model.MemberLeader
		team.LeaderID = successor.UserID
		logger.Info("leadership passed on member removal",
			zap.String("team_id", team.TeamID),
			zap.String("leader_user_id", successor.UserID))
	}

	kept := team.Members[:0]
	for _, m := range team.Members {
		if m.MemberID != member.MemberID {
			kept = append(kept, m)
		}
	}
	team.Members = kept
	team.CurrentMembers = len(kept)
	return false, nil
}
