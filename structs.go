package imagehost

import (
	"time"
)

// ImageRecord is the persisted metadata of a hosted image.
// ImageURL and AssetID are set once at creation and never updated.
type ImageRecord struct {
	ID       string `json:"id" bson:"-" yaml:"id" gorm:"primaryKey;size:36"`
	Title    string `json:"title" bson:"title" yaml:"title"`
	ImageURL string `json:"imageUrl" bson:"imageUrl" yaml:"imageUrl"`
	AssetID  string `json:"assetId" bson:"assetId" yaml:"assetId" gorm:"index:image_records_asset_id"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
}

func (ImageRecord) TableName() string {
	return "image_records"
}

// UploadInput is the payload of an image upload. Title is optional.
type UploadInput struct {
	Title *string `json:"title"`
	Image string  `json:"image"`
}

// TitleValue returns the title or an empty string when it is absent
func (i UploadInput) TitleValue() string {
	if i.Title == nil {
		return ""
	}
	return *i.Title
}

// RenameInput is the payload of a title update. An empty title is allowed.
type RenameInput struct {
	Title *string `json:"title" binding:"required"`
}
