package rating

import (
	"context"
	"errors"
	"strconv"
	"unicode/utf8"

	"ClipRate/entity"
	"ClipRate/internal/config"
	"ClipRate/internal/lib/linkcheck"
	"ClipRate/internal/lib/sl"

	"log/slog"
)

// VideoRepository defines the store operations the service needs.
type VideoRepository interface {
	InsertLinksIfAbsent(ctx context.Context, links []string) error
	NextUnratedVideo(ctx context.Context) (*entity.Video, error)
	RecordRating(ctx context.Context, link string, score int64, comment string) error
	AllVideos(ctx context.Context) ([]entity.Video, error)
	ClearAll(ctx context.Context) error
}

// ActivityListener is notified about completed store mutations, after the
// write is durable. Used to feed the live dashboard; a nil listener is fine.
type ActivityListener interface {
	LinksAdded(count int)
	VideoRated(link string, score int64)
	VideosCleared()
}

// Service owns the video rating rules: batch link submission, score and
// comment validation, rating completion and the admin table operations.
type Service struct {
	repository VideoRepository
	listener   ActivityListener
	minScore   int64
	maxScore   int64
	minComment int
	log        *slog.Logger
}

// NewService creates the rating service with limits from config.
func NewService(conf *config.Config, logger *slog.Logger) *Service {
	return &Service{
		minScore:   conf.Rating.MinScore,
		maxScore:   conf.Rating.MaxScore,
		minComment: conf.Rating.MinCommentLength,
		log:        logger.With(sl.Module("rating-service")),
	}
}

// SetRepository sets the video store.
func (s *Service) SetRepository(repository VideoRepository) {
	s.repository = repository
}

// SetListener sets the activity listener.
func (s *Service) SetListener(listener ActivityListener) {
	s.listener = listener
}

// ScoreRange returns the accepted score bounds.
func (s *Service) ScoreRange() (int64, int64) {
	return s.minScore, s.maxScore
}

// MinCommentLength returns the minimum rating comment length.
func (s *Service) MinCommentLength() int {
	return s.minComment
}

// SubmitLinks validates a whitespace-delimited submission and inserts the
// links that have no row yet. The batch is all-or-nothing: one bad token
// and nothing is inserted. Returns the accepted links.
func (s *Service) SubmitLinks(ctx context.Context, text string) ([]string, error) {
	links, invalid := linkcheck.SplitBatch(text)
	if len(invalid) > 0 {
		return nil, &InvalidLinksError{Tokens: invalid}
	}
	if len(links) == 0 {
		return nil, ErrEmptySubmission
	}

	if err := s.repository.InsertLinksIfAbsent(ctx, links); err != nil {
		s.log.Error("inserting links", sl.Err(err))
		return nil, storeError(err)
	}

	s.log.Info("links submitted", slog.Int("count", len(links)))
	if s.listener != nil {
		s.listener.LinksAdded(len(links))
	}
	return links, nil
}

// NextUnrated returns some video without ratings, or nil when every video
// has at least one.
func (s *Service) NextUnrated(ctx context.Context) (*entity.Video, error) {
	video, err := s.repository.NextUnratedVideo(ctx)
	if err != nil {
		s.log.Error("fetching unrated video", sl.Err(err))
		return nil, storeError(err)
	}
	return video, nil
}

// ParseScore parses user input as a score within the configured range.
func (s *Service) ParseScore(text string) (int64, error) {
	score, err := strconv.ParseInt(text, 10, 64)
	if err != nil || score < s.minScore || score > s.maxScore {
		return 0, &ScoreRangeError{Min: s.minScore, Max: s.maxScore}
	}
	return score, nil
}

// CompleteRating validates the comment and atomically folds the rating
// into the target video. ErrVideoNotFound means the video vanished between
// selection and completion; the caller aborts the rating sub-flow.
func (s *Service) CompleteRating(ctx context.Context, link string, score int64, comment string) error {
	if utf8.RuneCountInString(comment) < s.minComment {
		return &CommentTooShortError{Min: s.minComment}
	}

	err := s.repository.RecordRating(ctx, link, score, comment)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			s.log.Warn("rated video vanished", slog.String("link", link))
			return ErrVideoNotFound
		}
		s.log.Error("recording rating", sl.Err(err))
		return storeError(err)
	}

	if s.listener != nil {
		s.listener.VideoRated(link, score)
	}
	return nil
}

// AllVideos returns a complete snapshot of the table for export.
func (s *Service) AllVideos(ctx context.Context) ([]entity.Video, error) {
	videos, err := s.repository.AllVideos(ctx)
	if err != nil {
		s.log.Error("reading videos", sl.Err(err))
		return nil, storeError(err)
	}
	return videos, nil
}

// ClearAll truncates the videos table. Capability checks happen at the
// bot and API boundaries before this is reachable.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repository.ClearAll(ctx); err != nil {
		s.log.Error("clearing videos", sl.Err(err))
		return storeError(err)
	}
	if s.listener != nil {
		s.listener.VideosCleared()
	}
	return nil
}
