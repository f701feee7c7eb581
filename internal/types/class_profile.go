package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ClassProfile struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course           *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CurrentVersionID *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`
	Description      string         `gorm:"column:description" json:"description"`
	Status           string         `gorm:"column:status;not null;default:draft" json:"status"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ClassProfile) TableName() string { return "class_profile" }

type ClassProfileVersion struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ClassProfileID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_class_profile_version_number,priority:1" json:"class_profile_id"`
	ClassProfile   *ClassProfile  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassProfileID;references:ID" json:"class_profile,omitempty"`
	VersionNumber  int            `gorm:"column:version_number;not null;uniqueIndex:idx_class_profile_version_number,priority:2" json:"version_number"`
	Content        string         `gorm:"column:content;type:text" json:"content"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	ChangeType     string         `gorm:"column:change_type;not null" json:"change_type"`
	CreatedBy      string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt      time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ClassProfileVersion) TableName() string { return "class_profile_version" }
