package models

import "time"

// User represents a customer account. The password holds a bcrypt hash.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Firstname string    `json:"firstname" gorm:"type:varchar(45);not null"`
	Surname   string    `json:"surname" gorm:"type:varchar(45);not null"`
	Email     string    `json:"email" gorm:"type:varchar(45);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // never serialized
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UserUpdatableFields lists the columns a partial user update may write.
var UserUpdatableFields = []string{"firstname", "surname", "email"}
