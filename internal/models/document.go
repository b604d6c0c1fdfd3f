package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents a titled artifact, optionally carrying uploaded files.
// StoragePath historically holds either a bare blob path or a JSON-encoded
// list of paths (multi-file support was added later without a migration), so
// readers must accept both shapes.
type Document struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Tags        JSON      `json:"tags,omitempty"`
	StoragePath string    `gorm:"type:text" json:"storage_path,omitempty"`
	AssetID     *string   `gorm:"type:char(36);index" json:"asset_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns a server-side id when the caller did not provide one.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// StoragePaths decodes StoragePath into its list form. A value starting with
// '[' is parsed as a JSON list; anything else is treated as a single path.
func (d Document) StoragePaths() []string {
	sp := strings.TrimSpace(d.StoragePath)
	if sp == "" {
		return nil
	}
	if strings.HasPrefix(sp, "[") {
		var paths []string
		if err := json.Unmarshal([]byte(sp), &paths); err == nil {
			return paths
		}
	}
	return []string{sp}
}

// TagList decodes the Tags column into an ordered list of labels.
func (d Document) TagList() []string {
	if len(d.Tags.JSON) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(d.Tags.JSON, &tags); err != nil {
		return nil
	}
	return tags
}

// EncodeStoragePaths is the inverse of StoragePaths: a single path is stored
// bare, several paths are stored as a JSON list.
func EncodeStoragePaths(paths []string) string {
	switch len(paths) {
	case 0:
		return ""
	case 1:
		return paths[0]
	}
	b, _ := json.Marshal(paths)
	return string(b)
}
