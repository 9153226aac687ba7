package mgo

import (
	"context"
	"sync"
	"time"

	"DProject/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mu sync.RWMutex
	db *mongo.Database
)

// Init connects the global mongo client. Call once from main().
func Init(ctx context.Context, cfg config.MongoConfig) error {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return err
	}
	if err := cli.Ping(cctx, readpref.Primary()); err != nil {
		return err
	}

	mu.Lock()
	db = cli.Database(cfg.Database)
	mu.Unlock()
	return nil
}

// GetDB returns the configured database; panics if Init was never called.
func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if db == nil {
		panic("mongo not initialized, call mgo.Init first")
	}
	return db
}

// Close disconnects the client.
func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Client().Disconnect(ctx)
	db = nil
	return err
}
