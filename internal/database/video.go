package repository

import (
	"context"
	"fmt"
	"time"

	"ClipRate/entity"
	"ClipRate/internal/service/rating"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log/slog"
)

// nextVideoID allocates a sequence number from the counters collection.
// Like a relational sequence, the value is consumed even when the insert
// it was allocated for turns out to be a duplicate no-op; gaps are fine.
func (m *MongoDB) nextVideoID(ctx context.Context, connection *mongo.Client) (int64, error) {
	collection := connection.Database(m.database).Collection(countersCollection)

	filter := bson.D{{Key: "_id", Value: "video_id"}}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("mongodb counter error: %w", err)
	}
	return counter.Seq, nil
}

// InsertLinksIfAbsent creates a video row with zero aggregates for every
// link that has no row yet. Existing links are silently skipped, so
// overlapping concurrent batches cannot create duplicates; the upsert is
// keyed on video_link and only $setOnInsert fields are written.
func (m *MongoDB) InsertLinksIfAbsent(ctx context.Context, links []string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(videosCollection)

	for _, link := range links {
		id, err := m.nextVideoID(ctx, connection)
		if err != nil {
			return err
		}

		filter := bson.D{{Key: "video_link", Value: link}}
		update := bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "video_id", Value: id},
			{Key: "video_link", Value: link},
			{Key: "total_score", Value: int64(0)},
			{Key: "ratings_count", Value: int64(0)},
			{Key: "avg_score", Value: float64(0)},
			{Key: "comments", Value: bson.A{}},
			{Key: "created_at", Value: time.Now()},
		}}}
		opts := options.Update().SetUpsert(true)

		result, err := collection.UpdateOne(ctx, filter, update, opts)
		if err != nil {
			return fmt.Errorf("mongodb upsert error: %w", err)
		}
		if result.UpsertedCount > 0 {
			m.log.With(
				slog.Int64("video_id", id),
				slog.String("link", link),
			).Info("added new video")
		}
	}

	return nil
}

// NextUnratedVideo returns some video with no ratings yet, or nil when
// every video has been rated at least once. Selection order is whatever
// the server returns first; callers must not rely on it.
func (m *MongoDB) NextUnratedVideo(ctx context.Context) (*entity.Video, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(videosCollection)

	var video entity.Video
	err = collection.FindOne(ctx, bson.D{{Key: "ratings_count", Value: int64(0)}}).Decode(&video)
	if err != nil {
		if findErr := m.findError(err); findErr != nil {
			return nil, findErr
		}
		return nil, nil
	}

	return &video, nil
}

// RecordRating folds one rating into the video identified by link. The
// whole aggregate (total, count, average, comment list) changes in a
// single UpdateOne with a pipeline, so concurrent raters serialize on the
// document and a reader can never observe a half-applied rating.
func (m *MongoDB) RecordRating(ctx context.Context, link string, score int64, comment string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(videosCollection)

	filter := bson.D{{Key: "video_link", Value: link}}
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "total_score", Value: bson.D{{Key: "$add", Value: bson.A{"$total_score", score}}}},
			{Key: "ratings_count", Value: bson.D{{Key: "$add", Value: bson.A{"$ratings_count", 1}}}},
			{Key: "comments", Value: bson.D{{Key: "$concatArrays", Value: bson.A{"$comments", bson.A{comment}}}}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "avg_score", Value: bson.D{{Key: "$divide", Value: bson.A{"$total_score", "$ratings_count"}}}},
		}}},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if result.MatchedCount == 0 {
		return rating.ErrVideoNotFound
	}

	m.log.With(
		slog.String("link", link),
		slog.Int64("score", score),
	).Info("rating recorded")

	return nil
}

// AllVideos returns the full table for export.
func (m *MongoDB) AllVideos(ctx context.Context) ([]entity.Video, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(videosCollection)

	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []entity.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}

	return videos, nil
}

// ClearAll removes every video row. The capability check happens at the
// workflow and API boundaries, not here.
func (m *MongoDB) ClearAll(ctx context.Context) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(videosCollection)

	result, err := collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}

	m.log.With(
		slog.Int64("deleted", result.DeletedCount),
	).Info("videos cleared")

	return nil
}
