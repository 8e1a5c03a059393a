package models

import "time"

type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name     string  `gorm:"column:name" json:"name"`
	Category string  `gorm:"column:category" json:"category"`
	Price    int     `gorm:"column:price" json:"price"`
	Stock    int     `gorm:"column:stock" json:"stock"`
	Image    *string `gorm:"column:image" json:"image"`

	// 所有者，创建后不可通过编辑修改；用户删除后置空
	UserID  *uint `gorm:"column:user_id;index" json:"UserId"`
	TypeID  *uint `gorm:"column:type_id;index" json:"TypeId"`
	BrandID *uint `gorm:"column:brand_id;index" json:"BrandId"`

	// 连接模型时使用
	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"User,omitempty"`
	Type  *Type  `gorm:"foreignKey:TypeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"Type,omitempty"`
	Brand *Brand `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"Brand,omitempty"`
}
