package queue

import (
	"encoding/json"

	"github.com/rajabpour4097/faydo/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOTPSMSDeliver 短信验证码投递任务
	TaskOTPSMSDeliver = constants.TaskOTPSMSDeliver
	// TaskPackageExpire 套餐到期提醒任务
	TaskPackageExpire = constants.TaskPackageExpire
)

// OTPSMSDeliverPayload 短信验证码投递任务载荷
type OTPSMSDeliverPayload struct {
	Phone   string `json:"phone"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// PackageExpirePayload 套餐到期提醒任务载荷
type PackageExpirePayload struct {
	PackageID  uint `json:"package_id"`
	BusinessID uint `json:"business_id"`
}

// NewOTPSMSDeliverTask 创建短信验证码投递任务
func NewOTPSMSDeliverTask(payload OTPSMSDeliverPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOTPSMSDeliver, body), nil
}

// NewPackageExpireTask 创建套餐到期提醒任务
func NewPackageExpireTask(payload PackageExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPackageExpire, body), nil
}
