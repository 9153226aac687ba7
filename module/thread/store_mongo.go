package thread

import (
	"context"

	"DProject/service/mgo"
	"DProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore relies on a unique index over (user_low_id, user_high_id);
// see EnsureIndexes.
type MongoStore struct{}

func NewMongoStore() *MongoStore { return &MongoStore{} }

func (s *MongoStore) coll() *mongo.Collection {
	return mgo.GetDB().Collection(Thread{}.TableName())
}

func EnsureIndexes(ctx context.Context) error {
	coll := mgo.GetDB().Collection(Thread{}.TableName())
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_low_id", Value: 1}, {Key: "user_high_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_low_id", Value: 1}, {Key: "last_message_at_ms", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_high_id", Value: 1}, {Key: "last_message_at_ms", Value: -1}},
		},
	})
	return errs.Wrap(err, "ensure thread indexes")
}

func (s *MongoStore) CreateIfAbsent(ctx context.Context, t *Thread) (*Thread, bool, error) {
	// $setOnInsert keeps the existing row untouched when the pair already has
	// one; the unique pair index makes the losing concurrent insert a no-op.
	res := s.coll().FindOneAndUpdate(ctx,
		bson.M{"user_low_id": t.UserLowID, "user_high_id": t.UserHighID},
		bson.M{"$setOnInsert": bson.M{
			"_id":                 t.ID,
			"user_low_id":         t.UserLowID,
			"user_high_id":        t.UserHighID,
			"status":              t.Status,
			"requested_by_id":     t.RequestedByID,
			"requested_at_ms":     t.RequestedAtMS,
			"last_decision_at_ms": t.LastDecisionAtMS,
			"last_message_at_ms":  t.LastMessageAtMS,
			"create_time_ms":      t.CreateTimeMS,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var out Thread
	if err := res.Decode(&out); err != nil {
		return nil, false, errs.Wrap(err, "create thread if absent")
	}
	return &out, out.ID == t.ID, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id int64) (*Thread, error) {
	var out Thread
	err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "get thread by id")
	}
	return &out, nil
}

func (s *MongoStore) GetByPair(ctx context.Context, low, high string) (*Thread, error) {
	var out Thread
	err := s.coll().FindOne(ctx, bson.M{"user_low_id": low, "user_high_id": high}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "get thread by pair")
	}
	return &out, nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, id int64, status, requestedBy string, decisionAtMS int64) error {
	set := bson.M{
		"status":              status,
		"requested_by_id":     requestedBy,
		"last_decision_at_ms": decisionAtMS,
		"requested_at_ms":     int64(0),
	}
	if requestedBy != "" {
		set["requested_at_ms"] = decisionAtMS
	}
	_, err := s.coll().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return errs.Wrap(err, "update thread status")
}

func (s *MongoStore) BumpLastMessageAt(ctx context.Context, id int64, tsMS int64) error {
	_, err := s.coll().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$max": bson.M{"last_message_at_ms": tsMS}},
	)
	return errs.Wrap(err, "bump last message at")
}

func (s *MongoStore) ListByUser(ctx context.Context, user string) ([]*Thread, error) {
	cur, err := s.coll().Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"user_low_id": user},
			bson.M{"user_high_id": user},
		}},
		options.Find().SetSort(bson.D{{Key: "last_message_at_ms", Value: -1}}),
	)
	if err != nil {
		return nil, errs.Wrap(err, "list threads")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []*Thread
	for cur.Next(ctx) {
		var t Thread
		if err := cur.Decode(&t); err != nil {
			return nil, errs.Wrap(err, "decode thread")
		}
		out = append(out, &t)
	}
	return out, errs.Wrap(cur.Err(), "iterate threads")
}
