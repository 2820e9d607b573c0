package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casehub/internal/domain/audit"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service evaluates and mutates per-case, per-user permission tuples.
type Service struct {
	db    *gorm.DB
	audit *audit.Recorder
}

func NewService(db *gorm.DB, auditRec *audit.Recorder) *Service {
	return &Service{db: db, audit: auditRec}
}

// Check returns nil when the user holds a grant on the case whose level is
// in the capability's whitelist, ErrForbidden otherwise. Missing grants and
// out-of-whitelist levels are indistinguishable to the caller.
func (s *Service) Check(ctx context.Context, userID, caseID int64, cap Capability) error {
	var grant Grant
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("failed to load grant: %w", err)
	}

	if !Allows(cap, grant.AccessLevel) {
		return ErrForbidden
	}
	return nil
}

// Grant upserts the (targetUserID, caseID) tuple with last-writer-wins
// semantics. The granter needs admin on the case.
func (s *Service) Grant(ctx context.Context, granterID, caseID, targetUserID int64, level Level) error {
	if err := s.Check(ctx, granterID, caseID, CapManageAccess); err != nil {
		return err
	}
	if !level.Valid() {
		return ErrInvalidLevel
	}
	if err := s.caseExists(ctx, caseID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		grant := &Grant{
			UserID:      targetUserID,
			CaseID:      caseID,
			AccessLevel: level,
			CreatedAt:   time.Now(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "case_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"access_level": level}),
		}).Create(grant).Error
		if err != nil {
			return fmt.Errorf("failed to upsert grant: %w", err)
		}

		return s.audit.In(tx).Record(ctx, granterID, audit.ActionGrantAccess, audit.EntityCase, caseID,
			map[string]any{"user_id": targetUserID, "access_level": string(level)})
	})
}

// Revoke deletes the grant if present. Revoking an absent grant is a no-op,
// not an error.
func (s *Service) Revoke(ctx context.Context, granterID, caseID, targetUserID int64) error {
	if err := s.Check(ctx, granterID, caseID, CapManageAccess); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND case_id = ?", targetUserID, caseID).
			Delete(&Grant{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete grant: %w", err)
		}

		return s.audit.In(tx).Record(ctx, granterID, audit.ActionRevokeAccess, audit.EntityCase, caseID,
			map[string]any{"user_id": targetUserID})
	})
}

// ListGrantees returns every user holding a grant on the case. Any grant on
// the case lets the requester see the membership.
func (s *Service) ListGrantees(ctx context.Context, requesterID, caseID int64) ([]Grantee, error) {
	if err := s.Check(ctx, requesterID, caseID, CapViewUsers); err != nil {
		return nil, err
	}

	grantees := make([]Grantee, 0)
	err := s.db.WithContext(ctx).
		Table("user_case_access").
		Select("users.id, users.username, user_case_access.access_level").
		Joins("JOIN users ON users.id = user_case_access.user_id").
		Where("user_case_access.case_id = ?", caseID).
		Scan(&grantees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list grantees: %w", err)
	}
	return grantees, nil
}

func (s *Service) caseExists(ctx context.Context, caseID int64) error {
	var count int64
	err := s.db.WithContext(ctx).Table("cases").Where("id = ?", caseID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to look up case: %w", err)
	}
	if count == 0 {
		return ErrCaseNotFound
	}
	return nil
}
