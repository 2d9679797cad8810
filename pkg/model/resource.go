package model

import "time"

// Resource is a catalog entry giving a compute or storage resource its display name.
type Resource struct {
	ResourceType string    `gorm:"column:resource_type;primaryKey"`
	ResourceID   string    `gorm:"column:resource_id;primaryKey"`
	GatewayID    string    `gorm:"column:gateway_id;not null;index"`
	Name         string    `gorm:"column:name;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Resource) TableName() string {
	return "resources"
}
