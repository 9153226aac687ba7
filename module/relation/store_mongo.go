package relation

import (
	"context"
	"time"

	"DProject/service/mgo"
	"DProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowEdge: existence means follower follows following.
// Unique index on (follower_user_id, following_user_id).
type FollowEdge struct {
	FollowerUserID  string    `bson:"follower_user_id"`
	FollowingUserID string    `bson:"following_user_id"`
	CreateTime      time.Time `bson:"create_time"`
}

func (FollowEdge) TableName() string { return "follow_edge" }

type MongoFollowStore struct{}

func NewMongoFollowStore() *MongoFollowStore { return &MongoFollowStore{} }

func (s *MongoFollowStore) coll() *mongo.Collection {
	return mgo.GetDB().Collection(FollowEdge{}.TableName())
}

func (s *MongoFollowStore) IsFollowing(ctx context.Context, follower, following string) (bool, error) {
	n, err := s.coll().CountDocuments(ctx, bson.M{
		"follower_user_id":  follower,
		"following_user_id": following,
	})
	if err != nil {
		return false, errs.Wrap(err, "count follow edge")
	}
	return n > 0, nil
}

func (s *MongoFollowStore) AddEdge(ctx context.Context, follower, following string) error {
	_, err := s.coll().UpdateOne(ctx,
		bson.M{"follower_user_id": follower, "following_user_id": following},
		bson.M{"$setOnInsert": bson.M{
			"follower_user_id":  follower,
			"following_user_id": following,
			"create_time":       time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return errs.Wrap(err, "upsert follow edge")
}
