package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reading struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_reading_course_doc,priority:1" json:"course_id"`
	Course             *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	FileName           string         `gorm:"column:file_name" json:"file_name"`
	PerusallDocumentID string         `gorm:"column:perusall_document_id;index:idx_reading_course_doc,priority:2" json:"perusall_document_id"`
	Status             string         `gorm:"column:status;not null;default:uploaded" json:"status"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Reading) TableName() string { return "reading" }
