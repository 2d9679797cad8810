package model

import "time"

// Preference is a single setting scoped to a resource and an owner at one level.
type Preference struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ResourceType string    `gorm:"column:resource_type;not null;uniqueIndex:preferences_scope_key,priority:1"`
	ResourceID   string    `gorm:"column:resource_id;not null;uniqueIndex:preferences_scope_key,priority:2"`
	OwnerID      string    `gorm:"column:owner_id;not null;uniqueIndex:preferences_scope_key,priority:3"`
	Level        string    `gorm:"column:level;not null;uniqueIndex:preferences_scope_key,priority:4"`
	Key          string    `gorm:"column:pref_key;not null;uniqueIndex:preferences_scope_key,priority:5"`
	Value        string    `gorm:"column:value;not null"`
	Enforced     bool      `gorm:"column:enforced;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Preference) TableName() string {
	return "preferences"
}
