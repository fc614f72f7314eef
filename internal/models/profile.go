// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Profile is a named identity. Credential material is persisted but never serialized.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash []byte    `gorm:"not null" json:"-"`
	PasswordSalt []byte    `gorm:"not null" json:"-"`
	Avatar       *string   `json:"avatar"`
	Banner       *string   `json:"banner"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Derived from the follows table when a single profile is loaded.
	Followers []ProfileRef `gorm:"-" json:"followers"`
	Following []ProfileRef `gorm:"-" json:"following"`
	Count     ProfileCount `gorm:"-" json:"_count"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileRef is the short form of a profile used in follower lists.
type ProfileRef struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// ProfileCount holds relationship counters.
type ProfileCount struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// MediaUpdate is a partial update of the media fields. Nil fields are left unchanged.
type MediaUpdate struct {
	Avatar *string
	Banner *string
}

// Empty reports whether the update would change nothing.
func (m MediaUpdate) Empty() bool {
	return m.Avatar == nil && m.Banner == nil
}
