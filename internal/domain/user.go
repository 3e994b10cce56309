package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"size:140;uniqueIndex"`
	Name         string    `gorm:"size:140"`
	PasswordHash string    `gorm:"size:100"`
	IsAdmin      bool      `gorm:"default:false"`
	CreatedAt    time.Time
}

// Setting is a generic key/value row; currently only the active theme
// name lives here.
type Setting struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key   string    `gorm:"size:80;uniqueIndex"`
	Value string    `gorm:"type:text"`
}

const SettingActiveTheme = "active_theme"
