package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 基础信息
	Email    string  `gorm:"column:email;uniqueIndex;not null" json:"email"` // 邮箱，全局唯一，用于登录
	Username string  `gorm:"column:username;not null" json:"username"`       // 用户名
	Image    *string `gorm:"column:image" json:"image"`                      // 头像地址，可为空

	// 登录认证相关
	Password string `gorm:"column:password;not null" json:"-"` // 密码哈希（argon2id 或 bcrypt），永不输出

	// 连接模型时使用
	Profile *Profile `gorm:"foreignKey:UserID" json:"Profile,omitempty"`
}
