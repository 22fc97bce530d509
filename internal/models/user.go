package models

import (
	"time"
)

// User 用户表（归因视角的最小口径）
//
// 订单归因依赖下列联盟侧标识之一：淘宝 relation_id/special_id、
// 拼多多 pdd_pid、京东 jd_auth_id、通用 union_id。
type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Nickname   string    `gorm:"type:varchar(64)" json:"nickname"`
	RelationID *int64    `gorm:"index" json:"relation_id,omitempty"`
	SpecialID  *int64    `gorm:"index" json:"special_id,omitempty"`
	PddPid     string    `gorm:"type:varchar(64);index" json:"pdd_pid,omitempty"`
	JdAuthID   string    `gorm:"type:varchar(64);index" json:"jd_auth_id,omitempty"`
	UnionID    string    `gorm:"type:varchar(64);index" json:"union_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
