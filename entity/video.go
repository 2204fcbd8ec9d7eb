package entity

import "time"

// Video represents a submitted video with its rating aggregates.
type Video struct {
	ID           int64     `json:"id" bson:"video_id"`
	Link         string    `json:"link" bson:"video_link"`
	TotalScore   int64     `json:"total_score" bson:"total_score"`
	RatingsCount int64     `json:"ratings_count" bson:"ratings_count"`
	AvgScore     float64   `json:"avg_score" bson:"avg_score"`
	Comments     []string  `json:"comments" bson:"comments"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// NewVideo creates a new Video with zero aggregates.
func NewVideo(id int64, link string) *Video {
	return &Video{
		ID:        id,
		Link:      link,
		Comments:  []string{},
		CreatedAt: time.Now(),
	}
}

// Rated checks if the video has received at least one rating.
func (v *Video) Rated() bool {
	return v.RatingsCount > 0
}

// ApplyRating folds one rating into the aggregates. The store performs the
// same computation server-side in a single update; this is for in-process
// copies only.
func (v *Video) ApplyRating(score int64, comment string) {
	v.TotalScore += score
	v.RatingsCount++
	v.AvgScore = float64(v.TotalScore) / float64(v.RatingsCount)
	v.Comments = append(v.Comments, comment)
}
