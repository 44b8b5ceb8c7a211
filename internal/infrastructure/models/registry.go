package models

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&Permission{},
		&RolePermission{},
		&UserRole{},
		&Service{},
		&Application{},
		&Milestone{},
		&Payment{},
		&Document{},
		&Setting{},
		&EmailTemplate{},
	}
}
