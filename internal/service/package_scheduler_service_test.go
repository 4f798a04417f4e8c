package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPackageSchedulerTest(t *testing.T) (*PackageSchedulerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:package_scheduler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Package{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewPackageSchedulerService(repository.NewPackageRepository(db)), db
}

func seedSchedulerPackage(t *testing.T, db *gorm.DB, businessID uint, status string, active bool, start, end time.Time) *models.Package {
	t.Helper()
	pkg := models.Package{
		BusinessID: businessID,
		Status:     status,
		IsActive:   active,
		IsComplete: true,
		StartDate:  &start,
		EndDate:    &end,
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	return &pkg
}

func TestReconcileExpiresAndActivates(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()

	// 商家 1：生效套餐昨天到期，有排队中的 approved 套餐
	expired := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, true,
		now.AddDate(0, 0, -91), now.AddDate(0, 0, -1))
	queued := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, 89))

	// 商家 2：生效套餐尚未到期，不应受影响
	running := seedSchedulerPackage(t, db, 2, constants.PackageStatusApproved, true,
		now.AddDate(0, 0, -10), now.AddDate(0, 0, 80))

	result, err := svc.Reconcile(now)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Deactivated != 1 {
		t.Fatalf("expected 1 deactivation, got %d", result.Deactivated)
	}
	if result.Activated != 1 {
		t.Fatalf("expected 1 activation, got %d", result.Activated)
	}

	var pkg models.Package
	if err := db.First(&pkg, expired.ID).Error; err != nil {
		t.Fatalf("load expired package failed: %v", err)
	}
	if pkg.IsActive || pkg.Status != constants.PackageStatusExpired {
		t.Fatalf("expired package wrong state: status=%s active=%v", pkg.Status, pkg.IsActive)
	}
	var queuedPkg models.Package
	if err := db.First(&queuedPkg, queued.ID).Error; err != nil {
		t.Fatalf("load queued package failed: %v", err)
	}
	if !queuedPkg.IsActive {
		t.Fatal("queued package must be activated after expiry")
	}
	var runningPkg models.Package
	if err := db.First(&runningPkg, running.ID).Error; err != nil {
		t.Fatalf("load running package failed: %v", err)
	}
	if !runningPkg.IsActive || runningPkg.Status != constants.PackageStatusApproved {
		t.Fatalf("running package should be untouched: status=%s active=%v", runningPkg.Status, runningPkg.IsActive)
	}
}

func TestReconcileExpiresOnEndDateDay(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// 失效日当天即停用（含当天边界），排队套餐同日递补
	ending := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, true,
		today.AddDate(0, 0, -90), today)
	queued := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		today, today.AddDate(0, 0, 90))

	result, err := svc.Reconcile(now)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Deactivated != 1 {
		t.Fatalf("package ending today must be deactivated, got %d deactivations", result.Deactivated)
	}
	if result.Activated != 1 {
		t.Fatalf("expected successor activation, got %d", result.Activated)
	}

	var pkg models.Package
	if err := db.First(&pkg, ending.ID).Error; err != nil {
		t.Fatalf("load ending package failed: %v", err)
	}
	if pkg.IsActive || pkg.Status != constants.PackageStatusExpired {
		t.Fatalf("ending package wrong state: status=%s active=%v", pkg.Status, pkg.IsActive)
	}
	var queuedPkg models.Package
	if err := db.First(&queuedPkg, queued.ID).Error; err != nil {
		t.Fatalf("load queued package failed: %v", err)
	}
	if !queuedPkg.IsActive {
		t.Fatal("queued package must take over on the end date")
	}
}

func TestReconcileBusinessExpiresOnEndDateDay(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	ending := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, true,
		today.AddDate(0, 0, -90), today)

	if err := svc.ReconcileBusiness(ending.ID, 1, now); err != nil {
		t.Fatalf("reconcile business failed: %v", err)
	}
	var pkg models.Package
	if err := db.First(&pkg, ending.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if pkg.IsActive || pkg.Status != constants.PackageStatusExpired {
		t.Fatalf("package ending today must expire: status=%s active=%v", pkg.Status, pkg.IsActive)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()
	seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, true,
		now.AddDate(0, 0, -91), now.AddDate(0, 0, -1))
	seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, 89))

	if _, err := svc.Reconcile(now); err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	second, err := svc.Reconcile(now)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if second.Deactivated != 0 || second.Activated != 0 {
		t.Fatalf("second run must be a no-op, got %+v", second)
	}
}

func TestReconcileActivatesEarliestQueued(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()

	first := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, -2), now.AddDate(0, 0, 88))
	second := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, 89))

	result, err := svc.Reconcile(now)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Activated != 1 {
		t.Fatalf("expected 1 activation, got %d", result.Activated)
	}

	var pkg models.Package
	if err := db.First(&pkg, first.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if !pkg.IsActive {
		t.Fatal("earliest created queued package should win")
	}
	var secondPkg models.Package
	if err := db.First(&secondPkg, second.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if secondPkg.IsActive {
		t.Fatal("later queued package must stay queued")
	}
}

func TestReconcileSkipsFutureStart(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()
	future := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, 3), now.AddDate(0, 0, 93))

	result, err := svc.Reconcile(now)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if result.Activated != 0 {
		t.Fatalf("future package must not activate, got %d activations", result.Activated)
	}
	var pkg models.Package
	if err := db.First(&pkg, future.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if pkg.IsActive {
		t.Fatal("future package was activated early")
	}
}

func TestReconcileBusinessTargeted(t *testing.T) {
	svc, db := setupPackageSchedulerTest(t)
	now := time.Now()

	expired := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, true,
		now.AddDate(0, 0, -91), now.AddDate(0, 0, -1))
	queued := seedSchedulerPackage(t, db, 1, constants.PackageStatusApproved, false,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, 89))

	if err := svc.ReconcileBusiness(expired.ID, 1, now); err != nil {
		t.Fatalf("reconcile business failed: %v", err)
	}

	var pkg models.Package
	if err := db.First(&pkg, expired.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if pkg.IsActive || pkg.Status != constants.PackageStatusExpired {
		t.Fatalf("expired package wrong state: status=%s active=%v", pkg.Status, pkg.IsActive)
	}
	var queuedPkg models.Package
	if err := db.First(&queuedPkg, queued.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if !queuedPkg.IsActive {
		t.Fatal("successor package must be activated")
	}

	// 幂等
	if err := svc.ReconcileBusiness(expired.ID, 1, now); err != nil {
		t.Fatalf("repeated reconcile business failed: %v", err)
	}
}
