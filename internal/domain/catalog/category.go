package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node in a self-referential forest. ParentID == nil marks a
// root. The parent graph must stay acyclic; reparent/delete guards live in the
// category aggregate.
type Category struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Name      string `gorm:"type:text;not null" json:"name"`
	Slug      string `gorm:"type:varchar(128);not null;uniqueIndex" json:"slug"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool   `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Category) TableName() string { return "category" }
