package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Session struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course               *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	CurrentVersionID     *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`
	WeekNumber           int            `gorm:"column:week_number;not null;default:0" json:"week_number"`
	Title                string         `gorm:"column:title;not null" json:"title"`
	Description          string         `gorm:"column:description;type:text" json:"description"`
	PerusallAssignmentID *string        `gorm:"column:perusall_assignment_id;index" json:"perusall_assignment_id,omitempty"`
	Metadata             datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Session) TableName() string { return "session" }

type SessionVersion struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_session_version_number,priority:1" json:"session_id"`
	Session       *Session       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	VersionNumber int            `gorm:"column:version_number;not null;uniqueIndex:idx_session_version_number,priority:2" json:"version_number"`
	Content       string         `gorm:"column:content;type:text" json:"content"`
	Metadata      datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	ChangeType    string         `gorm:"column:change_type;not null" json:"change_type"`
	CreatedBy     string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SessionVersion) TableName() string { return "session_version" }

// SessionReading is never authored directly. The full set for a session is
// rebuilt from the linked Perusall assignment's part list on every
// rederivation; rows for documents without a local reading are omitted.
type SessionReading struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_session_reading,priority:1" json:"session_id"`
	Session            *Session       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	ReadingID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_session_reading,priority:2" json:"reading_id"`
	Reading            *Reading       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReadingID;references:ID" json:"reading,omitempty"`
	Position           int            `gorm:"column:position;not null;default:0" json:"position"`
	PerusallDocumentID string         `gorm:"column:perusall_document_id" json:"perusall_document_id"`
	StartPage          *int           `gorm:"column:start_page" json:"start_page,omitempty"`
	EndPage            *int           `gorm:"column:end_page" json:"end_page,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SessionReading) TableName() string { return "session_reading" }
