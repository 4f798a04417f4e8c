package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/queue"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// recordingExpireEnqueuer 记录到期任务投递情况
type recordingExpireEnqueuer struct {
	payloads []queue.PackageExpirePayload
}

func (r *recordingExpireEnqueuer) EnqueuePackageExpire(payload queue.PackageExpirePayload, _ ...asynq.Option) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

func setupPackageLifecycleTest(t *testing.T) (*PackageLifecycleService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:package_lifecycle_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.BusinessProfile{},
		&models.Package{},
		&models.BlanketDiscount{},
		&models.SpecificDiscount{},
		&models.EliteGift{},
		&models.VipExperienceCategory{},
		&models.VipExperienceSelection{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewPackageLifecycleService(repository.NewPackageRepository(db), nil), db
}

// seedLifecyclePackage 直接落库一个指定状态的套餐
func seedLifecyclePackage(t *testing.T, db *gorm.DB, businessID uint, status string, active bool) *models.Package {
	t.Helper()
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 89)
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

func TestApproveFirstPackageActivatesImmediately(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	pkg := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)

	result, err := svc.Approve(pkg.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !result.Activated {
		t.Fatal("first package should activate on approval")
	}
	if result.Message != ApproveMessageActivated {
		t.Fatalf("unexpected message %q", result.Message)
	}

	var stored models.Package
	if err := db.First(&stored, pkg.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if stored.Status != constants.PackageStatusApproved || !stored.IsActive {
		t.Fatalf("unexpected state: status=%s active=%v", stored.Status, stored.IsActive)
	}
}

func TestApproveQueuesBehindActivePackage(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	seedLifecyclePackage(t, db, 1, constants.PackageStatusApproved, true)
	next := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)

	result, err := svc.Approve(next.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Activated {
		t.Fatal("package with an active sibling must queue, not activate")
	}
	if result.Message != ApproveMessageQueued {
		t.Fatalf("unexpected message %q", result.Message)
	}

	// 单活不变量
	var activeCount int64
	if err := db.Model(&models.Package{}).
		Where("business_id = ? AND is_active = ?", uint(1), true).
		Count(&activeCount).Error; err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if activeCount != 1 {
		t.Fatalf("expected 1 active package, got %d", activeCount)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	pkg := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)

	first, err := svc.Approve(pkg.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	second, err := svc.Approve(pkg.ID)
	if err != nil {
		t.Fatalf("re-approve failed: %v", err)
	}
	if second.Message != ApproveMessageNoop {
		t.Fatalf("expected noop message, got %q", second.Message)
	}
	if second.Activated != first.Activated {
		t.Fatalf("idempotent approve changed activation: %v → %v", first.Activated, second.Activated)
	}
}

func TestApproveGuards(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)

	if _, err := svc.Approve(404); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound got %v", err)
	}

	draft := seedLifecyclePackage(t, db, 1, constants.PackageStatusDraft, false)
	if _, err := svc.Approve(draft.ID); !errors.Is(err, ErrPackageNotPending) {
		t.Fatalf("expected ErrPackageNotPending got %v", err)
	}

	incomplete := seedLifecyclePackage(t, db, 2, constants.PackageStatusPending, false)
	if err := db.Model(&models.Package{}).Where("id = ?", incomplete.ID).
		Update("is_complete", false).Error; err != nil {
		t.Fatalf("update package failed: %v", err)
	}
	if _, err := svc.Approve(incomplete.ID); !errors.Is(err, ErrPackageIncomplete) {
		t.Fatalf("expected ErrPackageIncomplete got %v", err)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	pkg := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)

	rejected, err := svc.Reject(pkg.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.PackageStatusRejected || rejected.IsActive {
		t.Fatalf("unexpected state: status=%s active=%v", rejected.Status, rejected.IsActive)
	}

	if _, err := svc.Reject(pkg.ID); !errors.Is(err, ErrPackageNotPending) {
		t.Fatalf("expected ErrPackageNotPending on re-reject, got %v", err)
	}
	if _, err := svc.Approve(pkg.ID); !errors.Is(err, ErrPackageNotPending) {
		t.Fatalf("rejected package must not approve, got %v", err)
	}
}

func TestReevaluateActivation(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	now := time.Now()

	queued := seedLifecyclePackage(t, db, 1, constants.PackageStatusApproved, false)
	activated, err := svc.ReevaluateActivation(queued.ID, now)
	if err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}
	if !activated {
		t.Fatal("queued package with no active sibling should activate")
	}

	// 已激活后再评估为空操作
	activated, err = svc.ReevaluateActivation(queued.ID, now)
	if err != nil {
		t.Fatalf("re-evaluate failed: %v", err)
	}
	if activated {
		t.Fatal("already active package must not re-activate")
	}

	// 未到生效日不激活
	future := seedLifecyclePackage(t, db, 2, constants.PackageStatusApproved, false)
	futureStart := now.AddDate(0, 0, 5)
	if err := db.Model(&models.Package{}).Where("id = ?", future.ID).
		Update("start_date", futureStart).Error; err != nil {
		t.Fatalf("update start date failed: %v", err)
	}
	activated, err = svc.ReevaluateActivation(future.ID, now)
	if err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}
	if activated {
		t.Fatal("package before its start date must not activate")
	}
}

func TestAdminOverrides(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	current := seedLifecyclePackage(t, db, 1, constants.PackageStatusApproved, true)
	next := seedLifecyclePackage(t, db, 1, constants.PackageStatusApproved, false)

	forced, err := svc.AdminOverrideActivate(next.ID)
	if err != nil {
		t.Fatalf("override activate failed: %v", err)
	}
	if !forced.IsActive {
		t.Fatal("override activation should mark package active")
	}
	var old models.Package
	if err := db.First(&old, current.ID).Error; err != nil {
		t.Fatalf("load package failed: %v", err)
	}
	if old.IsActive {
		t.Fatal("previous active package must be deactivated by override")
	}

	// 对 pending 套餐不可强制激活
	pending := seedLifecyclePackage(t, db, 2, constants.PackageStatusPending, false)
	if _, err := svc.AdminOverrideActivate(pending.ID); !errors.Is(err, ErrPackageNotPending) {
		t.Fatalf("expected ErrPackageNotPending got %v", err)
	}

	deactivated, err := svc.AdminOverrideDeactivate(next.ID)
	if err != nil {
		t.Fatalf("override deactivate failed: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("override deactivation should clear active flag")
	}
	// 幂等
	if _, err := svc.AdminOverrideDeactivate(next.ID); err != nil {
		t.Fatalf("repeated override deactivate failed: %v", err)
	}
}

func TestActivationSchedulesExpireTask(t *testing.T) {
	_, db := setupPackageLifecycleTest(t)
	enqueuer := &recordingExpireEnqueuer{}
	svc := NewPackageLifecycleService(repository.NewPackageRepository(db), enqueuer)

	// 立即激活的审批预约到期任务
	pkg := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)
	result, err := svc.Approve(pkg.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !result.Activated {
		t.Fatal("first package should activate on approval")
	}
	if len(enqueuer.payloads) != 1 {
		t.Fatalf("expected 1 expire task, got %d", len(enqueuer.payloads))
	}
	if got := enqueuer.payloads[0]; got.PackageID != pkg.ID || got.BusinessID != pkg.BusinessID {
		t.Fatalf("unexpected expire payload %+v", got)
	}

	// 排队审批不预约，待后续激活
	queued := seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)
	if _, err := svc.Approve(queued.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if len(enqueuer.payloads) != 1 {
		t.Fatalf("queued approval must not enqueue, got %d tasks", len(enqueuer.payloads))
	}

	// 人工强制激活同样预约
	if _, err := svc.AdminOverrideActivate(queued.ID); err != nil {
		t.Fatalf("override activate failed: %v", err)
	}
	if len(enqueuer.payloads) != 2 {
		t.Fatalf("override activation must enqueue, got %d tasks", len(enqueuer.payloads))
	}
	if got := enqueuer.payloads[1]; got.PackageID != queued.ID {
		t.Fatalf("unexpected expire payload %+v", got)
	}
}

func TestListPending(t *testing.T) {
	svc, db := setupPackageLifecycleTest(t)
	seedLifecyclePackage(t, db, 1, constants.PackageStatusPending, false)
	seedLifecyclePackage(t, db, 2, constants.PackageStatusPending, false)
	seedLifecyclePackage(t, db, 3, constants.PackageStatusApproved, true)

	items, total, err := svc.ListPending(1, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 pending packages, got total=%d len=%d", total, len(items))
	}
	for _, pkg := range items {
		if pkg.Status != constants.PackageStatusPending {
			t.Fatalf("non-pending package in list: %s", pkg.Status)
		}
	}
}
