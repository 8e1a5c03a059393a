package models

import "time"

// Profile 与 User 一对一，注册时自动创建
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID uint `gorm:"column:user_id;uniqueIndex;not null" json:"UserId"`

	// 附加资料，与认证无关
	FullName *string `gorm:"column:full_name" json:"fullName"`
	Phone    *string `gorm:"column:phone" json:"phone"`
	Address  *string `gorm:"column:address" json:"address"`
}
