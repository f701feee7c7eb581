package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScaffoldAnnotation struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReadingID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"reading_id"`
	Reading          *Reading       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReadingID;references:ID" json:"reading,omitempty"`
	CurrentVersionID *uuid.UUID     `gorm:"type:uuid" json:"current_version_id,omitempty"`
	FragmentText     string         `gorm:"column:fragment_text;type:text" json:"fragment_text"`
	CurrentContent   string         `gorm:"column:current_content;type:text" json:"current_content"`
	Status           string         `gorm:"column:status;not null;default:draft;index" json:"status"` // draft|approved|rejected
	Metadata         datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ScaffoldAnnotation) TableName() string { return "scaffold_annotation" }

type ScaffoldAnnotationVersion struct {
	ID                   uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ScaffoldAnnotationID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_scaffold_annotation_version_number,priority:1" json:"scaffold_annotation_id"`
	ScaffoldAnnotation   *ScaffoldAnnotation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScaffoldAnnotationID;references:ID" json:"scaffold_annotation,omitempty"`
	VersionNumber        int                 `gorm:"column:version_number;not null;uniqueIndex:idx_scaffold_annotation_version_number,priority:2" json:"version_number"`
	Content              string              `gorm:"column:content;type:text" json:"content"`
	Metadata             datatypes.JSON      `gorm:"column:metadata;type:jsonb" json:"metadata"`
	ChangeType           string              `gorm:"column:change_type;not null" json:"change_type"`
	CreatedBy            string              `gorm:"column:created_by" json:"created_by"`
	CreatedAt            time.Time           `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt            gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (ScaffoldAnnotationVersion) TableName() string { return "scaffold_annotation_version" }

// AnnotationHighlightCoords pins one highlighted range of a scaffold
// annotation version onto the source document. A version may own several
// rows, one per highlighted range. Rows on older versions are never
// invalidated when a newer version clones them; each version's coordinate
// set stays renderable on its own.
type AnnotationHighlightCoords struct {
	ID          uuid.UUID                  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VersionID   uuid.UUID                  `gorm:"type:uuid;not null;index" json:"version_id"`
	Version     *ScaffoldAnnotationVersion `gorm:"constraint:OnDelete:CASCADE;foreignKey:VersionID;references:ID" json:"version,omitempty"`
	PageNumber  int                        `gorm:"column:page_number;not null;default:0" json:"page_number"`
	StartOffset int                        `gorm:"column:start_offset;not null;default:0" json:"start_offset"`
	EndOffset   int                        `gorm:"column:end_offset;not null;default:0" json:"end_offset"`
	Rects       datatypes.JSON             `gorm:"column:rects;type:jsonb" json:"rects"`
	Valid       bool                       `gorm:"column:valid;not null;default:true" json:"valid"`
	CreatedAt   time.Time                  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time                  `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt             `gorm:"index" json:"deleted_at,omitempty"`
}

func (AnnotationHighlightCoords) TableName() string { return "annotation_highlight_coords" }
