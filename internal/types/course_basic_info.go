package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseBasicInfo holds the structural discipline/course/class document for a
// course. Its content column is the serialized ClassInput JSON and is the
// fallback source the profile view builder queries when a profile's own
// content does not embed a class_input.
type CourseBasicInfo struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	Course           *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CurrentVersionID *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`
	Content          string         `gorm:"column:content;type:text" json:"content"`
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseBasicInfo) TableName() string { return "course_basic_info" }

type CourseBasicInfoVersion struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseBasicInfoID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_course_basic_info_version_number,priority:1" json:"course_basic_info_id"`
	CourseBasicInfo   *CourseBasicInfo `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseBasicInfoID;references:ID" json:"course_basic_info,omitempty"`
	VersionNumber     int              `gorm:"column:version_number;not null;uniqueIndex:idx_course_basic_info_version_number,priority:2" json:"version_number"`
	Content           string           `gorm:"column:content;type:text" json:"content"`
	Metadata          datatypes.JSON   `gorm:"column:metadata;type:jsonb" json:"metadata"`
	ChangeType        string           `gorm:"column:change_type;not null" json:"change_type"`
	CreatedBy         string           `gorm:"column:created_by" json:"created_by"`
	CreatedAt         time.Time        `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseBasicInfoVersion) TableName() string { return "course_basic_info_version" }
