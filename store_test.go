package imagehost

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
)

func TestMain(m *testing.M) {
	log.UseLogger(zap.NewNop())
	os.Exit(m.Run())
}

func mockImageDocument(oid primitive.ObjectID, title string) bson.D {
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "title", Value: title},
		{Key: "imageUrl", Value: "https://cdn/x.png"},
		{Key: "assetId", Value: "abc123"},
		{Key: "createdAt", Value: createdAt},
		{Key: "updatedAt", Value: createdAt},
	}
}

func TestMongodbStore(t *testing.T) {
	ctx := context.Background()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create image", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		record, err := store.CreateImage(ctx, ImageRecord{
			Title:    "cat",
			ImageURL: "https://cdn/x.png",
			AssetID:  "abc123",
		})
		require.NoError(t, err)
		assert.Len(t, record.ID, 24)
		assert.Equal(t, "cat", record.Title)
		assert.Equal(t, "https://cdn/x.png", record.ImageURL)
		assert.Equal(t, "abc123", record.AssetID)
		assert.False(t, record.CreatedAt.IsZero())
	})

	mt.Run("create image fails", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := store.CreateImage(ctx, ImageRecord{Title: "cat"})
		assert.ErrorIs(t, err, ErrStoreFailure)
	})

	mt.Run("get images", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + imageCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			mockImageDocument(first, "cat"),
			mockImageDocument(second, "dog"),
		))

		records, err := store.GetImages(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, first.Hex(), records[0].ID)
		assert.Equal(t, "cat", records[0].Title)
		assert.Equal(t, second.Hex(), records[1].ID)
		assert.Equal(t, "dog", records[1].Title)
	})

	mt.Run("get images from empty collection", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + imageCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		records, err := store.GetImages(ctx)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	mt.Run("update image title", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: mockImageDocument(oid, "tabby")},
		))

		record, err := store.UpdateImageTitle(ctx, oid.Hex(), "tabby")
		require.NoError(t, err)
		assert.Equal(t, oid.Hex(), record.ID)
		assert.Equal(t, "tabby", record.Title)
		assert.Equal(t, "abc123", record.AssetID)
	})

	mt.Run("update image title only sets title and updatedAt", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: mockImageDocument(oid, "tabby")},
		))

		_, err := store.UpdateImageTitle(ctx, oid.Hex(), "tabby")
		require.NoError(t, err)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, "findAndModify", started.CommandName)

		set, ok := started.Command.Lookup("update", "$set").DocumentOK()
		require.True(t, ok)
		elements, err := set.Elements()
		require.NoError(t, err)

		keys := make([]string, 0, len(elements))
		for _, e := range elements {
			keys = append(keys, e.Key())
		}
		assert.ElementsMatch(t, []string{"title", "updatedAt"}, keys)
		assert.Equal(t, "tabby", set.Lookup("title").StringValue())

		_, hasUpsert := started.Command.Lookup("upsert").BooleanOK()
		assert.False(t, hasUpsert)
	})

	mt.Run("update image title of absent image", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.UpdateImageTitle(ctx, primitive.NewObjectID().Hex(), "tabby")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete absent image", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.DeleteImage(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("get absent image", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + imageCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.GetImage(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("update image title with malformed id", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)

		_, err := store.UpdateImageTitle(ctx, "not-an-object-id", "tabby")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete image", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: mockImageDocument(oid, "cat")},
		))

		record, err := store.DeleteImage(ctx, oid.Hex())
		require.NoError(t, err)
		assert.Equal(t, oid.Hex(), record.ID)
		assert.Equal(t, "abc123", record.AssetID)
	})

	mt.Run("delete image fails", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		_, err := store.DeleteImage(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrStoreFailure)
	})

	mt.Run("get image with malformed id", func(mt *mtest.T) {
		store := newMongodbStore(mt.Client, mt.DB)

		_, err := store.GetImage(ctx, "42")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
