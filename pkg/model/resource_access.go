package model

import "time"

// ResourceAccess binds a credential to one resource for one owner at one level.
type ResourceAccess struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ResourceType    string    `gorm:"column:resource_type;not null;uniqueIndex:resource_access_owner,priority:1;index:resource_access_gateway,priority:2"`
	ResourceID      string    `gorm:"column:resource_id;not null;uniqueIndex:resource_access_owner,priority:2"`
	OwnerID         string    `gorm:"column:owner_id;not null;uniqueIndex:resource_access_owner,priority:3"`
	OwnerType       string    `gorm:"column:owner_type;not null;uniqueIndex:resource_access_owner,priority:4"`
	GatewayID       string    `gorm:"column:gateway_id;not null;index:resource_access_gateway,priority:1"`
	CredentialToken string    `gorm:"column:credential_token;not null;index"`
	LoginUsername   string    `gorm:"column:login_username"`
	Enabled         bool      `gorm:"column:enabled;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Credential is never loaded; it declares the foreign key for AutoMigrate.
	Credential *Credential `gorm:"foreignKey:CredentialToken;references:Token;constraint:OnDelete:RESTRICT"`
}

func (ResourceAccess) TableName() string {
	return "resource_access"
}
