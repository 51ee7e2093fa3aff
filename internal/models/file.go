package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRecord is the metadata document kept for every uploaded track. It is
// written once by the upload path and only read afterwards.
type FileRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Filename    string             `bson:"filename" json:"filename"`
	Path        string             `bson:"path" json:"path"` // retrieval URL returned by the provider
	Size        int64              `bson:"size" json:"size"`
	ContentType string             `bson:"format" json:"format"`     // client-reported MIME type
	PublicID    string             `bson:"publicId" json:"publicId"` // object key inside the provider
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// UploadResult is the body returned by POST /api/upload.
type UploadResult struct {
	Success     bool   `json:"success"`
	FileID      string `json:"fileId"`
	DownloadURL string `json:"downloadUrl"`
}

// DownloadResult is the body returned by GET /api/download/:id.
type DownloadResult struct {
	URL string `json:"url"`
}
