package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialType string

const (
	MaterialPDF     MaterialType = "PDF"
	MaterialLink    MaterialType = "LINK"
	MaterialArquivo MaterialType = "ARQUIVO"
	MaterialOutro   MaterialType = "OUTRO"
)

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialPDF, MaterialLink, MaterialArquivo, MaterialOutro:
		return true
	}
	return false
}

type SourceKind string

const (
	SourceLink   SourceKind = "LINK"
	SourceUpload SourceKind = "UPLOAD"
)

// Material is a complementary resource attached to a lesson: either a direct
// link (ResourceURL) or an object in storage (Storage* fields).
type Material struct {
	ID               uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	LessonID         uuid.UUID    `json:"lesson_id" gorm:"type:uuid;index;not null"`
	Label            string       `json:"label" gorm:"not null"`
	Description      *string      `json:"description"`
	MaterialType     MaterialType `json:"material_type" gorm:"type:varchar(16);not null;default:'LINK'"`
	SourceKind       SourceKind   `json:"source_kind" gorm:"type:varchar(16);not null;default:'LINK'"`
	ResourceURL      *string      `json:"resource_url"`
	StorageBucket    *string      `json:"storage_bucket"`
	StoragePath      *string      `json:"storage_path"`
	MimeType         *string      `json:"mime_type"`
	FileSizeBytes    *int64       `json:"file_size_bytes"`
	OriginalFileName *string      `json:"original_file_name"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Kind normalizes the stored source kind; rows without one are links.
func (m Material) Kind() SourceKind {
	if m.SourceKind == SourceUpload {
		return SourceUpload
	}
	return SourceLink
}
