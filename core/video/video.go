// Package video links chapters to assets hosted by the video provider.
package video

import (
	"context"
	"time"
)

// Link is the local record of a chapter's remote asset. A chapter has at
// most one.
type Link struct {
	ChapterID  string    `json:"chapterId" db:"chapter_id"`
	AssetID    string    `json:"assetId" db:"asset_id"`
	PlaybackID string    `json:"playbackId" db:"playback_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Asset is what the provider returns for a newly created asset.
type Asset struct {
	ID         string
	PlaybackID string
}

type Provider interface {
	// CreateAsset ingests sourceURL with a public playback policy.
	CreateAsset(ctx context.Context, sourceURL string) (Asset, error)
	DeleteAsset(ctx context.Context, assetID string) error
}

type VideoUp struct {
	URL string `json:"videoUrl" validate:"required,url"`
}
