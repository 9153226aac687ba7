package user

import (
	"context"

	"DProject/service/mgo"
	"DProject/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoDirectory struct{}

func NewMongoDirectory() *MongoDirectory { return &MongoDirectory{} }

func (d *MongoDirectory) coll() *mongo.Collection {
	return mgo.GetDB().Collection(User{}.TableName())
}

func (d *MongoDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	n, err := d.coll().CountDocuments(ctx, bson.M{"user_id": id, "status": 0})
	if err != nil {
		return false, errs.Wrap(err, "count user")
	}
	return n > 0, nil
}
