package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BusinessListFilter 查询商家列表的过滤条件
type BusinessListFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	CategoryID uint
	CityID     uint
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Phone       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询员工操作审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page           int
	PageSize       int
	OperatorUserID uint
	Action         string
	Object         string
	Method         string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// VipExperienceCategoryListFilter 查询 VIP 体验类目的过滤条件
type VipExperienceCategoryListFilter struct {
	Page       int
	PageSize   int
	VipType    string
	CategoryID uint
	Keyword    string
}
