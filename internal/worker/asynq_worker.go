package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/provider"
	"github.com/rajabpour4097/faydo/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOTPSMSDeliver, c.handleOTPSMSDeliver)
	mux.HandleFunc(queue.TaskPackageExpire, c.handlePackageExpire)
}

func (c *Consumer) handleOTPSMSDeliver(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_otp_sms_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OTPSMSDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_otp_sms_unmarshal_failed", "error", err)
		return err
	}
	if payload.Phone == "" || payload.Code == "" {
		logger.Debugw("worker_otp_sms_skip_invalid_payload", "phone", payload.Phone)
		return nil
	}
	if c.SMSSender == nil {
		logger.Warnw("worker_otp_sms_skip_sender_nil", "phone", payload.Phone)
		return nil
	}
	text := fmt.Sprintf("کد تایید فایدو: %s", payload.Code)
	if err := c.SMSSender.Send(ctx, payload.Phone, text); err != nil {
		logger.Warnw("worker_otp_sms_send_failed",
			"phone", payload.Phone,
			"purpose", payload.Purpose,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePackageExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_package_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PackageExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_package_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.BusinessID == 0 {
		logger.Debugw("worker_package_expire_skip_invalid_payload", "package_id", payload.PackageID)
		return nil
	}
	if c.PackageSchedulerService == nil {
		logger.Warnw("worker_package_expire_skip_scheduler_nil", "package_id", payload.PackageID)
		return nil
	}
	if err := c.PackageSchedulerService.ReconcileBusiness(payload.PackageID, payload.BusinessID, time.Now()); err != nil {
		logger.Warnw("worker_package_expire_failed",
			"package_id", payload.PackageID,
			"business_id", payload.BusinessID,
			"error", err,
		)
		return err
	}
	return nil
}
