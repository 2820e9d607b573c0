package cases

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func setupTestService(t *testing.T) (*Service, *access.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cases_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Case{}, &access.Grant{}, &audit.Entry{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	rec := audit.NewRecorder(db)
	return NewService(db, rec), access.NewService(db, rec), db
}

func TestCreateGrantsOwnerAdmin(t *testing.T) {
	svc, accessSvc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 7, "Contract Review", "quarterly vendor contracts")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected case id to be assigned")
	}
	if created.CreatedBy != 7 {
		t.Fatalf("expected created_by 7, got %d", created.CreatedBy)
	}

	// owner holds admin immediately after creation
	if err := accessSvc.Check(ctx, 7, created.ID, access.CapManageAccess); err != nil {
		t.Fatalf("owner should hold admin: %v", err)
	}

	var auditCount int64
	db.Model(&audit.Entry{}).
		Where("action = ? AND entity_id = ?", audit.ActionCreateCase, created.ID).
		Count(&auditCount)
	if auditCount != 1 {
		t.Fatalf("expected 1 create_case audit entry, got %d", auditCount)
	}
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	svc, _, db := setupTestService(t)

	_, err := svc.Create(context.Background(), 7, "   ", "desc")
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	// nothing partially committed
	var caseCount, grantCount int64
	db.Model(&Case{}).Count(&caseCount)
	db.Model(&access.Grant{}).Count(&grantCount)
	if caseCount != 0 || grantCount != 0 {
		t.Fatalf("expected no rows, got cases=%d grants=%d", caseCount, grantCount)
	}
}

func TestListForUser(t *testing.T) {
	svc, accessSvc, _ := setupTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 7, "First", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.Create(ctx, 8, "NotMine", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := svc.Create(ctx, 7, "Second", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// user 7 also gets read on case created by user 8
	third, err := svc.Create(ctx, 8, "Shared", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := accessSvc.Grant(ctx, 8, third.ID, 7, access.LevelRead); err != nil {
		t.Fatalf("Grant returned error: %v", err)
	}

	rows, err := svc.ListForUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(rows))
	}

	levels := map[int64]string{}
	for _, row := range rows {
		levels[row.ID] = row.AccessLevel
	}
	if levels[first.ID] != "admin" || levels[second.ID] != "admin" || levels[third.ID] != "read" {
		t.Fatalf("unexpected levels: %v", levels)
	}
}
