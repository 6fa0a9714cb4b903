package course

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCoverURL is shown for courses without a cover image.
const DefaultCoverURL = "/capa_curso.png"

// Course is the top of the course -> module -> lesson -> material tree.
type Course struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Slug          string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title         string    `json:"title" gorm:"not null"`
	Description   *string   `json:"description"`
	CoverImageURL *string   `json:"cover_image_url" gorm:"column:cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CoverURL resolves the cover image, falling back to the default artwork.
func (c Course) CoverURL() string {
	if c.CoverImageURL == nil || strings.TrimSpace(*c.CoverImageURL) == "" {
		return DefaultCoverURL
	}
	return strings.TrimSpace(*c.CoverImageURL)
}
