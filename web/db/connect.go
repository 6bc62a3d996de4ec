package db

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the admin database and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&AdminUser{}, &ArchivedOrder{}); err != nil {
		return nil, err
	}
	return gdb, nil
}

// EnsureAdmin creates the bootstrap admin account when the table is empty
// and credentials are configured.
func EnsureAdmin(gdb *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := gdb.Model(&AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return err
	}
	return gdb.Create(&AdminUser{Email: email, Password: string(hash)}).Error
}
