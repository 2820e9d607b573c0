package extmap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type testCase struct {
	ID    int64  `gorm:"column:id;primaryKey"`
	Title string `gorm:"column:title"`
}

func (testCase) TableName() string { return "cases" }

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:extmap_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Mapping{}, &access.Grant{}, &audit.Entry{}, &testCase{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	rec := audit.NewRecorder(db)
	return NewService(db, access.NewService(db, rec), rec), db
}

func seedCaseWithGrants(t *testing.T, db *gorm.DB, caseID int64) {
	t.Helper()
	if err := db.Create(&testCase{ID: caseID, Title: "case"}).Error; err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	// user 10 admin, user 20 read
	db.Create(&access.Grant{UserID: 10, CaseID: caseID, AccessLevel: access.LevelAdmin, CreatedAt: time.Now()})
	db.Create(&access.Grant{UserID: 20, CaseID: caseID, AccessLevel: access.LevelRead, CreatedAt: time.Now()})
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc, db := setupTestService(t)
	seedCaseWithGrants(t, db, 1)

	_, err := svc.Create(context.Background(), 20, 1, "EXT-1", "jira")
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("read-level user must be forbidden, got %v", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	seedCaseWithGrants(t, db, 1)

	mapping, err := svc.Create(ctx, 10, 1, "EXT-1", "jira")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if mapping.ID == 0 {
		t.Fatal("expected mapping id to be assigned")
	}

	// reader can fetch it
	got, err := svc.Get(ctx, 20, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil || got.ExternalCaseID != "EXT-1" || got.ExternalSystem != "jira" {
		t.Fatalf("unexpected mapping: %+v", got)
	}

	var auditCount int64
	db.Model(&audit.Entry{}).Where("action = ?", audit.ActionAddExternalMapping).Count(&auditCount)
	if auditCount != 1 {
		t.Fatalf("expected 1 audit entry, got %d", auditCount)
	}
}

func TestCreateDuplicateConflicts(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	seedCaseWithGrants(t, db, 1)

	if _, err := svc.Create(ctx, 10, 1, "EXT-1", "jira"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := svc.Create(ctx, 10, 1, "EXT-2", "jira")
	if !errors.Is(err, ErrMappingExists) {
		t.Fatalf("expected ErrMappingExists, got %v", err)
	}

	// a second system is fine
	if _, err := svc.Create(ctx, 10, 1, "EXT-3", "salesforce"); err != nil {
		t.Fatalf("Create for second system returned error: %v", err)
	}
}

func TestGetEmptyIsNotAnError(t *testing.T) {
	svc, db := setupTestService(t)
	seedCaseWithGrants(t, db, 1)

	got, err := svc.Get(context.Background(), 20, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil mapping, got %+v", got)
	}
}

func TestGetForbiddenWithoutGrant(t *testing.T) {
	svc, db := setupTestService(t)
	seedCaseWithGrants(t, db, 1)

	_, err := svc.Get(context.Background(), 99, 1)
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("outsider must be forbidden, got %v", err)
	}
}
