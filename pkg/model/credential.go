package model

import "time"

// Credential is a catalog entry for an SSH key pair or a password.
// Secret holds the sealed secret material; it is never returned by the API.
type Credential struct {
	Token       string    `gorm:"column:token;primaryKey"`
	GatewayID   string    `gorm:"column:gateway_id;not null;index:credentials_owner,priority:1"`
	OwnerID     string    `gorm:"column:owner_id;not null;index:credentials_owner,priority:2"`
	OwnerType   string    `gorm:"column:owner_type;not null"`
	Name        string    `gorm:"column:name;not null"`
	Username    string    `gorm:"column:username"`
	Type        string    `gorm:"column:type;not null"`
	Description string    `gorm:"column:description"`
	Secret      []byte    `gorm:"column:secret"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Credential) TableName() string {
	return "credentials"
}
