package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&Profile{},
		&Post{},
		&Comment{},
		&ElectricityPackage{},
		&Purchase{},
		&Payment{},
	)
}

func SeedRoles(db *gorm.DB) {
	roles := []Role{
		{Name: RoleAdmin},
		{Name: RoleUser},
	}

	for _, role := range roles {
		var existingRole Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}
