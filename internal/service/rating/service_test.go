package rating

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"ClipRate/entity"
	"ClipRate/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVideoRepository mimics the store semantics in memory: inserts skip
// links that already have a row, ratings fold into aggregates atomically
// under a lock.
type fakeVideoRepository struct {
	mu     sync.Mutex
	videos []*entity.Video
	nextID int64
	err    error
}

func newFakeVideoRepository() *fakeVideoRepository {
	return &fakeVideoRepository{}
}

func (r *fakeVideoRepository) find(link string) *entity.Video {
	for _, v := range r.videos {
		if v.Link == link {
			return v
		}
	}
	return nil
}

func (r *fakeVideoRepository) InsertLinksIfAbsent(_ context.Context, links []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, link := range links {
		if r.find(link) != nil {
			continue
		}
		r.nextID++
		r.videos = append(r.videos, entity.NewVideo(r.nextID, link))
	}
	return nil
}

func (r *fakeVideoRepository) NextUnratedVideo(_ context.Context) (*entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, v := range r.videos {
		if !v.Rated() {
			copied := *v
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeVideoRepository) RecordRating(_ context.Context, link string, score int64, comment string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	video := r.find(link)
	if video == nil {
		return ErrVideoNotFound
	}
	video.ApplyRating(score, comment)
	return nil
}

func (r *fakeVideoRepository) AllVideos(_ context.Context) ([]entity.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entity.Video, 0, len(r.videos))
	for _, v := range r.videos {
		out = append(out, *v)
	}
	return out, nil
}

func (r *fakeVideoRepository) ClearAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.videos = nil
	return nil
}

type fakeListener struct {
	mu         sync.Mutex
	linksAdded int
	rated      []string
	cleared    int
}

func (l *fakeListener) LinksAdded(count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.linksAdded += count
}

func (l *fakeListener) VideoRated(link string, _ int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rated = append(l.rated, link)
}

func (l *fakeListener) VideosCleared() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleared++
}

func newTestService(repo VideoRepository) *Service {
	conf := &config.Config{}
	conf.Rating.MinScore = 1
	conf.Rating.MaxScore = 10
	conf.Rating.MinCommentLength = 15

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(conf, log)
	service.SetRepository(repo)
	return service
}

func TestSubmitLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts every valid link", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)

		links, err := service.SubmitLinks(ctx, "http://a.com http://b.com")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a.com", "http://b.com"}, links)

		videos, err := repo.AllVideos(ctx)
		require.NoError(t, err)
		require.Len(t, videos, 2)
		for _, v := range videos {
			assert.Zero(t, v.RatingsCount)
			assert.Zero(t, v.TotalScore)
		}
	})

	t.Run("one bad token rejects the whole batch", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)

		_, err := service.SubmitLinks(ctx, "http://a.com junk http://b.com")
		var invalidErr *InvalidLinksError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, []string{"junk"}, invalidErr.Tokens)
		assert.True(t, IsValidationError(err))

		videos, err := repo.AllVideos(ctx)
		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("empty submission", func(t *testing.T) {
		service := newTestService(newFakeVideoRepository())
		_, err := service.SubmitLinks(ctx, "   \n ")
		assert.ErrorIs(t, err, ErrEmptySubmission)
		assert.True(t, IsValidationError(err))
	})

	t.Run("resubmitting a link keeps the existing row", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)

		_, err := service.SubmitLinks(ctx, "http://a.com")
		require.NoError(t, err)
		require.NoError(t, service.CompleteRating(ctx, "http://a.com", 5, "a long enough comment"))

		_, err = service.SubmitLinks(ctx, "http://a.com http://b.com")
		require.NoError(t, err)

		videos, err := repo.AllVideos(ctx)
		require.NoError(t, err)
		require.Len(t, videos, 2)
		assert.Equal(t, int64(1), videos[0].RatingsCount, "existing aggregates survive a duplicate insert")
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		repo := newFakeVideoRepository()
		repo.err = errors.New("connection refused")
		service := newTestService(repo)

		_, err := service.SubmitLinks(ctx, "http://a.com")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.False(t, IsValidationError(err))
	})
}

func TestNextUnrated(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepository()
	service := newTestService(repo)

	_, err := service.SubmitLinks(ctx, "http://a.com http://b.com")
	require.NoError(t, err)

	video, err := service.NextUnrated(ctx)
	require.NoError(t, err)
	require.NotNil(t, video)
	require.NoError(t, service.CompleteRating(ctx, video.Link, 7, "quite good overall honestly"))

	video, err = service.NextUnrated(ctx)
	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Zero(t, video.RatingsCount, "a rated video is never offered again")
	require.NoError(t, service.CompleteRating(ctx, video.Link, 3, "not really my kind of thing"))

	video, err = service.NextUnrated(ctx)
	require.NoError(t, err)
	assert.Nil(t, video, "nil once every video has a rating")
}

func TestParseScore(t *testing.T) {
	service := newTestService(newFakeVideoRepository())

	tests := []struct {
		name  string
		text  string
		want  int64
		valid bool
	}{
		{name: "lower bound", text: "1", want: 1, valid: true},
		{name: "upper bound", text: "10", want: 10, valid: true},
		{name: "middle", text: "7", want: 7, valid: true},
		{name: "below range", text: "0", valid: false},
		{name: "above range", text: "11", valid: false},
		{name: "negative", text: "-3", valid: false},
		{name: "not a number", text: "ten", valid: false},
		{name: "decimal", text: "7.5", valid: false},
		{name: "empty", text: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := service.ParseScore(tt.text)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.want, score)
				return
			}
			var rangeErr *ScoreRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestCompleteRating(t *testing.T) {
	ctx := context.Background()

	t.Run("folds into aggregates", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)
		_, err := service.SubmitLinks(ctx, "http://a.com")
		require.NoError(t, err)

		require.NoError(t, service.CompleteRating(ctx, "http://a.com", 7, "quite good overall honestly"))
		require.NoError(t, service.CompleteRating(ctx, "http://a.com", 4, "had trouble staying awake"))

		videos, err := repo.AllVideos(ctx)
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, int64(11), videos[0].TotalScore)
		assert.Equal(t, int64(2), videos[0].RatingsCount)
		assert.InDelta(t, 5.5, videos[0].AvgScore, 0.001)
		assert.Equal(t, []string{"quite good overall honestly", "had trouble staying awake"}, videos[0].Comments)
	})

	t.Run("comment below minimum length", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)
		_, err := service.SubmitLinks(ctx, "http://a.com")
		require.NoError(t, err)

		err = service.CompleteRating(ctx, "http://a.com", 7, "short")
		var tooShort *CommentTooShortError
		require.ErrorAs(t, err, &tooShort)
		assert.Equal(t, 15, tooShort.Min)
		assert.True(t, IsValidationError(err))

		videos, err := repo.AllVideos(ctx)
		require.NoError(t, err)
		assert.Zero(t, videos[0].RatingsCount, "nothing persisted on a rejected comment")
	})

	t.Run("comment length counts runes not bytes", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)
		_, err := service.SubmitLinks(ctx, "http://a.com")
		require.NoError(t, err)

		// 15 cyrillic runes, well over 15 bytes either way but exactly at
		// the rune minimum.
		require.NoError(t, service.CompleteRating(ctx, "http://a.com", 7, "отличное видео!"))
	})

	t.Run("vanished video", func(t *testing.T) {
		service := newTestService(newFakeVideoRepository())
		err := service.CompleteRating(ctx, "http://gone.com", 7, "quite good overall honestly")
		assert.ErrorIs(t, err, ErrVideoNotFound)
		assert.False(t, IsValidationError(err))
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newFakeVideoRepository()
		service := newTestService(repo)
		_, err := service.SubmitLinks(ctx, "http://a.com")
		require.NoError(t, err)

		repo.err = errors.New("connection reset")
		err = service.CompleteRating(ctx, "http://a.com", 7, "quite good overall honestly")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestConcurrentRatings(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepository()
	service := newTestService(repo)

	_, err := service.SubmitLinks(ctx, "http://a.com")
	require.NoError(t, err)

	const raters = 32
	var wg sync.WaitGroup
	var wantTotal int64
	for i := 0; i < raters; i++ {
		score := int64(i%10 + 1)
		wantTotal += score
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			assert.NoError(t, service.CompleteRating(ctx, "http://a.com", score, "concurrent rating comment"))
		}(score)
	}
	wg.Wait()

	videos, err := repo.AllVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, int64(raters), videos[0].RatingsCount)
	assert.Equal(t, wantTotal, videos[0].TotalScore)
	assert.InDelta(t, float64(wantTotal)/float64(raters), videos[0].AvgScore, 0.001)
	assert.Len(t, videos[0].Comments, raters)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepository()
	service := newTestService(repo)
	listener := &fakeListener{}
	service.SetListener(listener)

	_, err := service.SubmitLinks(ctx, "http://a.com http://b.com")
	require.NoError(t, err)
	require.NoError(t, service.CompleteRating(ctx, "http://a.com", 9, "really enjoyed watching this"))

	require.NoError(t, service.ClearAll(ctx))

	videos, err := service.AllVideos(ctx)
	require.NoError(t, err)
	assert.Empty(t, videos)

	video, err := service.NextUnrated(ctx)
	require.NoError(t, err)
	assert.Nil(t, video)

	assert.Equal(t, 2, listener.linksAdded)
	assert.Equal(t, []string{"http://a.com"}, listener.rated)
	assert.Equal(t, 1, listener.cleared)
}
