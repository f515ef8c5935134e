package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/models"
)

// MongoCacheService is the persistent cache: an in-process LRU in front of
// a MongoDB collection keyed by the input fingerprint.
type MongoCacheService struct {
	collection *mongo.Collection
	l1         *lru.Cache[string, *models.AddressResult]
	logger     *zap.Logger
	ttl        time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMongoCacheService builds the service and ensures the collection
// indexes exist.
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	l1, err := lru.New[string, *models.AddressResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	collection := db.Collection("address_cache")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{bson.E{Key: "gazetteer_version", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "created_at", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn("could not create address_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1:         l1,
		logger:     logger,
		ttl:        ttl,
	}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.AddressResult, bool, error) {
	if result, ok := mcs.l1.Get(key); ok {
		mcs.hits.Add(1)
		return result, true, nil
	}

	var doc models.AddressCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		mcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mongo cache lookup: %w", err)
	}

	if doc.IsExpired(mcs.ttl) {
		mcs.misses.Add(1)
		go mcs.deleteByID(doc.ID)
		return nil, false, nil
	}

	mcs.hits.Add(1)
	go mcs.touch(doc.ID)
	mcs.l1.Add(key, &doc.Result)
	return &doc.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.AddressResult) error {
	mcs.l1.Add(key, result)

	doc := models.NewAddressCache(*result)
	doc.RawFingerprint = key

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"raw_fingerprint": key}, doc, opts); err != nil {
		mcs.logger.Error("mongo cache write failed", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("mongo cache write: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1.Remove(key)

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"raw_fingerprint": key}); err != nil {
		return fmt.Errorf("mongo cache delete: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("mongo cache clear: %w", err)
	}

	mcs.hits.Store(0)
	mcs.misses.Store(0)
	return nil
}

func (mcs *MongoCacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	mcs.l1.Purge()

	filter := bson.M{"gazetteer_version": bson.M{"$ne": gazetteerVersion}}
	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("invalidate by gazetteer version: %w", err)
	}

	mcs.logger.Info("stale cache entries removed",
		zap.String("gazetteer_version", gazetteerVersion),
		zap.Int64("deleted", result.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count cache documents: %w", err)
	}

	hits, misses := mcs.hits.Load(), mcs.misses.Load()
	total := hits + misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"raw_fingerprint": key})
	if err != nil {
		return false, fmt.Errorf("mongo cache exists: %w", err)
	}
	return count > 0, nil
}

func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	var doc models.AddressCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if mcs.ttl <= 0 {
		return 0, nil
	}
	remaining := mcs.ttl - time.Since(doc.CreatedAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close releases nothing: the mongo client is owned by the caller.
func (mcs *MongoCacheService) Close() error { return nil }

// WarmUp preloads the most accessed entries into the LRU.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up query: %w", err)
	}
	defer cursor.Close(ctx)

	loaded := 0
	for cursor.Next(ctx) {
		var doc models.AddressCache
		if err := cursor.Decode(&doc); err != nil {
			mcs.logger.Warn("skipping undecodable cache entry", zap.Error(err))
			continue
		}
		mcs.l1.Add(doc.RawFingerprint, &doc.Result)
		loaded++
	}

	mcs.logger.Info("cache warm up complete", zap.Int("loaded", loaded))
	return cursor.Err()
}

func (mcs *MongoCacheService) touch(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("access stats update failed", zap.Error(err))
	}
}

func (mcs *MongoCacheService) deleteByID(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		mcs.logger.Warn("expired entry delete failed", zap.Error(err))
	}
}
