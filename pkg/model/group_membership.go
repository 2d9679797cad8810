package model

// GroupMembership records that a user belongs to a group within a gateway.
type GroupMembership struct {
	GatewayID string `gorm:"column:gateway_id;primaryKey"`
	GroupID   string `gorm:"column:group_id;primaryKey"`
	UserID    string `gorm:"column:user_id;primaryKey;index"`
}

func (GroupMembership) TableName() string {
	return "group_memberships"
}

// All lists every model, in dependency order, for schema bootstrapping in tests
// and embedded SQLite deployments.
func All() []interface{} {
	return []interface{}{
		&Resource{},
		&GroupMembership{},
		&Credential{},
		&Preference{},
		&ResourceAccess{},
	}
}
