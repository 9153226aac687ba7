package reaction

import (
	"context"
	"time"

	"DProject/service/mgo"
	"DProject/tools/errs"
	"DProject/tools/ids"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) coll() *mongo.Collection {
	return mgo.GetDB().Collection(Reaction{}.TableName())
}

func EnsureIndexes(ctx context.Context) error {
	coll := mgo.GetDB().Collection(Reaction{}.TableName())
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "message_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "emoji", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
	return errs.Wrap(err, "ensure reaction indexes")
}

func (s *MongoStore) Toggle(ctx context.Context, messageID int64, userID, emoji string) (bool, error) {
	// Delete-first: if a row was there, the toggle removed it. Otherwise
	// insert; a duplicate-key race means another toggle landed first, so the
	// reaction exists and this call reads as the removing side next time.
	res, err := s.coll().DeleteOne(ctx, bson.M{
		"message_id": messageID, "user_id": userID, "emoji": emoji,
	})
	if err != nil {
		return false, errs.Wrap(err, "toggle reaction delete")
	}
	if res.DeletedCount > 0 {
		return false, nil
	}
	_, err = s.coll().InsertOne(ctx, &Reaction{
		ID:          ids.Generate(),
		MessageID:   messageID,
		UserID:      userID,
		Emoji:       emoji,
		CreatedAtMS: time.Now().UnixMilli(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	if err != nil {
		return false, errs.Wrap(err, "toggle reaction insert")
	}
	return true, nil
}

func (s *MongoStore) ListByMessage(ctx context.Context, messageID int64) ([]*Reaction, error) {
	cur, err := s.coll().Find(ctx, bson.M{"message_id": messageID})
	if err != nil {
		return nil, errs.Wrap(err, "list reactions")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*Reaction
	for cur.Next(ctx) {
		var r Reaction
		if err := cur.Decode(&r); err != nil {
			return nil, errs.Wrap(err, "decode reaction")
		}
		out = append(out, &r)
	}
	return out, errs.Wrap(cur.Err(), "iterate reactions")
}
