package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is the catalog entry that owns one in-memory board.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Description string
	Progress    int `gorm:"not null;default:0"`
	Deadline    *time.Time
	Team        []string  `gorm:"serializer:json"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
