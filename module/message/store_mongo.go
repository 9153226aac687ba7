package message

import (
	"context"

	"DProject/service/mgo"
	"DProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) coll() *mongo.Collection {
	return mgo.GetDB().Collection(Message{}.TableName())
}

func EnsureIndexes(ctx context.Context) error {
	coll := mgo.GetDB().Collection(Message{}.TableName())
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// pagination order
			Keys: bson.D{
				{Key: "thread_id", Value: 1},
				{Key: "created_at_ms", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
	})
	return errs.Wrap(err, "ensure message indexes")
}

func (s *MongoStore) Insert(ctx context.Context, m *Message) error {
	_, err := s.coll().InsertOne(ctx, m)
	return errs.Wrap(err, "insert message")
}

func (s *MongoStore) GetByID(ctx context.Context, id int64) (*Message, error) {
	var out Message
	err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "get message")
	}
	return &out, nil
}

func (s *MongoStore) ListBefore(ctx context.Context, threadID int64, cursor *Cursor, limit int) ([]*Message, error) {
	filter := bson.M{"thread_id": threadID}
	if cursor != nil {
		// keyset: (created_at_ms, _id) strictly below the cursor position
		filter["$or"] = bson.A{
			bson.M{"created_at_ms": bson.M{"$lt": cursor.TsMS}},
			bson.M{"created_at_ms": cursor.TsMS, "_id": bson.M{"$lt": cursor.ID}},
		}
	}
	cur, err := s.coll().Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at_ms", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, errs.Wrap(err, "list messages")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*Message
	for cur.Next(ctx) {
		var m Message
		if err := cur.Decode(&m); err != nil {
			return nil, errs.Wrap(err, "decode message")
		}
		out = append(out, &m)
	}
	return out, errs.Wrap(cur.Err(), "iterate messages")
}

func (s *MongoStore) UpdateBody(ctx context.Context, id int64, body string, editedAtMS int64) error {
	_, err := s.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"body": body, "edited_at_ms": editedAtMS}},
	)
	return errs.Wrap(err, "update message body")
}

func (s *MongoStore) Remove(ctx context.Context, id int64) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{"_id": id})
	return errs.Wrap(err, "delete message")
}

func (s *MongoStore) CountAfter(ctx context.Context, threadID int64, afterMS int64, excludeAuthor string) (int64, error) {
	n, err := s.coll().CountDocuments(ctx, bson.M{
		"thread_id":     threadID,
		"created_at_ms": bson.M{"$gt": afterMS},
		"author_id":     bson.M{"$ne": excludeAuthor},
	})
	return n, errs.Wrap(err, "count unread")
}
