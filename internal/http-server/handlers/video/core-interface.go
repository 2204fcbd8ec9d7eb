package video

import (
	"context"

	"ClipRate/entity"
)

// Core defines the rating operations the video handlers need.
type Core interface {
	AllVideos(ctx context.Context) ([]entity.Video, error)
	ClearAll(ctx context.Context) error
}
