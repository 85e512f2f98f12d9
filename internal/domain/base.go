package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for the externally owned entities (root objects, users)
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a random ID when none was set
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	assignID(&b.ID)
	return nil
}

// IDs are generated in Go rather than by a column default so the same models
// migrate on postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
