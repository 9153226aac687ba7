package read

import (
	"context"

	"DProject/service/mgo"
	"DProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReadMark row: unique per (thread_id, user_id).
type ReadMark struct {
	ThreadID     int64  `bson:"thread_id"`
	UserID       string `bson:"user_id"`
	LastReadAtMS int64  `bson:"last_read_at_ms"`
}

func (ReadMark) TableName() string { return "dm_read_mark" }

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) coll() *mongo.Collection {
	return mgo.GetDB().Collection(ReadMark{}.TableName())
}

func EnsureIndexes(ctx context.Context) error {
	coll := mgo.GetDB().Collection(ReadMark{}.TableName())
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return errs.Wrap(err, "ensure read mark indexes")
}

func (s *MongoStore) MarkRead(ctx context.Context, threadID int64, userID string, tsMS int64) error {
	// $max upsert: concurrent marks keep the furthest watermark.
	_, err := s.coll().UpdateOne(ctx,
		bson.M{"thread_id": threadID, "user_id": userID},
		bson.M{
			"$setOnInsert": bson.M{"thread_id": threadID, "user_id": userID},
			"$max":         bson.M{"last_read_at_ms": tsMS},
		},
		options.Update().SetUpsert(true),
	)
	return errs.Wrap(err, "mark read")
}

func (s *MongoStore) Get(ctx context.Context, threadID int64, userID string) (int64, error) {
	var out ReadMark
	err := s.coll().FindOne(ctx, bson.M{"thread_id": threadID, "user_id": userID}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(err, "get read mark")
	}
	return out.LastReadAtMS, nil
}
