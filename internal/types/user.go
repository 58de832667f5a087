package types

import (
	"time"
)

type User struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"not null;column:name" json:"name"`
	Email     string       `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string       `gorm:"not null;column:password" json:"-"`
	Profile   *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

type UserProfile struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	IdentityType   string    `gorm:"column:identity_type" json:"identity_type"`
	IdentityNumber string    `gorm:"column:identity_number" json:"identity_number"`
	Address        string    `gorm:"column:address" json:"address"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
