package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kruthishkandula/Grocery-be/pkg/enums"
)

// User is read-only here; registration lives in the auth service.
type User struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null"`
	Email       string         `gorm:"column:email;not null"`
	Username    string         `gorm:"column:username;not null"`
	PhoneNumber string         `gorm:"column:phonenumber;not null"`
	Role        enums.UserRole `gorm:"column:role;type:roles;default:user"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

// UserSession is a login session; the bearer token must match SessionToken.
type UserSession struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	SessionToken string    `gorm:"column:session_token;not null"`
	LastActive   time.Time `gorm:"column:last_active;autoCreateTime"`
}

func (UserSession) TableName() string { return "users_sessions" }
