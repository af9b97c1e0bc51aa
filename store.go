package imagehost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
)

// Store persists image records. Every method is atomic on a single record.
type Store interface {
	CreateImage(ctx context.Context, record ImageRecord) (ImageRecord, error)
	GetImages(ctx context.Context) ([]ImageRecord, error)
	GetImage(ctx context.Context, id string) (ImageRecord, error)
	UpdateImageTitle(ctx context.Context, id, title string) (ImageRecord, error)
	DeleteImage(ctx context.Context, id string) (ImageRecord, error)

	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

// storeFailure wraps a driver error so callers can match ErrStoreFailure
func storeFailure(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, action, err)
}

// now returns the current time at the precision mongodb keeps
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type mongoImageRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ImageRecord `bson:",inline"`
}

func (r mongoImageRecord) record() ImageRecord {
	record := r.ImageRecord
	record.ID = r.ID.Hex()
	return record
}

func NewMongodbStore(ctx context.Context, mongodbURI, dbName string) (*MongodbStore, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongodbURI))
	if err != nil {
		return nil, err
	}

	return newMongodbStore(mongoClient, mongoClient.Database(dbName)), nil
}

func newMongodbStore(mongoClient *mongo.Client, db *mongo.Database) *MongodbStore {
	return &MongodbStore{
		dbName:          db.Name(),
		mongoClient:     mongoClient,
		imageCollection: db.Collection(imageCollectionName),
	}
}

type MongodbStore struct {
	dbName          string
	mongoClient     *mongo.Client
	imageCollection *mongo.Collection
}

// CreateImage inserts a new image record with a generated object id
func (s *MongodbStore) CreateImage(ctx context.Context, record ImageRecord) (ImageRecord, error) {
	createdAt := now()
	record.CreatedAt = createdAt
	record.UpdatedAt = createdAt

	doc := mongoImageRecord{
		ID:          primitive.NewObjectID(),
		ImageRecord: record,
	}

	if _, err := s.imageCollection.InsertOne(ctx, doc); err != nil {
		return ImageRecord{}, storeFailure("insert image", err)
	}

	log.Debug("image record created", zap.String("id", doc.ID.Hex()), log.SourceMongo)
	return doc.record(), nil
}

// GetImages returns all image records in natural order
func (s *MongodbStore) GetImages(ctx context.Context) ([]ImageRecord, error) {
	cursor, err := s.imageCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeFailure("find images", err)
	}

	var docs []mongoImageRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeFailure("decode images", err)
	}

	records := make([]ImageRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.record())
	}

	return records, nil
}

// GetImage returns an image record by id
func (s *MongodbStore) GetImage(ctx context.Context, id string) (ImageRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ImageRecord{}, ErrNotFound
	}

	return s.decodeSingleResult(s.imageCollection.FindOne(ctx, bson.M{"_id": oid}), "find image")
}

// UpdateImageTitle sets the title of an image record and returns the updated record.
// Only title and updatedAt are touched.
func (s *MongodbStore) UpdateImageTitle(ctx context.Context, id, title string) (ImageRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ImageRecord{}, ErrNotFound
	}

	r := s.imageCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"title": title, "updatedAt": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	return s.decodeSingleResult(r, "update image title")
}

// DeleteImage removes an image record and returns what was removed
func (s *MongodbStore) DeleteImage(ctx context.Context, id string) (ImageRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ImageRecord{}, ErrNotFound
	}

	return s.decodeSingleResult(s.imageCollection.FindOneAndDelete(ctx, bson.M{"_id": oid}), "delete image")
}

func (s *MongodbStore) decodeSingleResult(r *mongo.SingleResult, action string) (ImageRecord, error) {
	if err := r.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ImageRecord{}, ErrNotFound
		}
		return ImageRecord{}, storeFailure(action, err)
	}

	var doc mongoImageRecord
	if err := r.Decode(&doc); err != nil {
		return ImageRecord{}, storeFailure(action, err)
	}

	return doc.record(), nil
}

// Migrate creates the indexes of the image collection
func (s *MongodbStore) Migrate(ctx context.Context) error {
	_, err := s.imageCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assetId", Value: 1}},
		Options: options.Index().SetName("image_asset_id"),
	})
	if err != nil {
		return storeFailure("create indexes", err)
	}

	log.Info("image collection indexes created", zap.String("db", s.dbName), log.SourceMongo)
	return nil
}

func (s *MongodbStore) Close(ctx context.Context) error {
	return s.mongoClient.Disconnect(ctx)
}

// OpenStore connects the store selected by the store driver
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case StoreDriverMongodb, "":
		store, err := NewMongodbStore(ctx, cfg.DBURI, cfg.DBName)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoreDriverPostgres, StoreDriverSQLite:
		store, err := NewSQLStore(cfg.Driver, cfg.DSN, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
}
