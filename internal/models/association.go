package models

import "time"

// DeadlineAsset links a deadline to a secondary asset. The composite primary
// key makes the pair unique, so a repeated associate is a conflict the
// services layer turns into a no-op.
type DeadlineAsset struct {
	DeadlineID string    `gorm:"type:char(36);primaryKey" json:"deadline_id"`
	AssetID    string    `gorm:"type:char(36);primaryKey" json:"asset_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for DeadlineAsset
func (DeadlineAsset) TableName() string {
	return "deadline_assets"
}

// DeadlineDocument links a deadline to a document.
type DeadlineDocument struct {
	DeadlineID string    `gorm:"type:char(36);primaryKey" json:"deadline_id"`
	DocumentID string    `gorm:"type:char(36);primaryKey" json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides the table name for DeadlineDocument
func (DeadlineDocument) TableName() string {
	return "deadline_documents"
}
