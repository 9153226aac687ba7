package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"DProject/config"
	"DProject/logger"
	secmw "DProject/middleware/security"
	"DProject/module/dm"
	"DProject/module/message"
	"DProject/module/reaction"
	"DProject/module/read"
	"DProject/module/relation"
	"DProject/module/thread"
	"DProject/module/user"
	"DProject/service/mgo"
	"DProject/service/notify"
	"DProject/service/storage"
	rds "DProject/service/storage/redis"
	"DProject/service/stream"
	sec "DProject/tools/security"

	"DProject/tools/ids"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.Load()

	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		logger.Setup(lvl)
	}
	ids.SetNodeID(cfg.Server.NodeID)

	ctx := context.Background()

	if err := mgo.Init(ctx, cfg.Mongo); err != nil {
		logger.Errorf("[boot] mongo init: %v", err)
		return
	}
	defer func() { _ = mgo.Close(ctx) }()
	for _, ensure := range []func(context.Context) error{
		thread.EnsureIndexes, message.EnsureIndexes,
		reaction.EnsureIndexes, read.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Errorf("[boot] ensure indexes: %v", err)
			return
		}
	}

	// Presence is optional: without redis the service still messages, it
	// just cannot answer online lookups.
	var presence *storage.Presence
	if err := rds.Init(rds.Config{
		Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
	}); err != nil {
		logger.Warnf("[boot] redis unavailable, presence disabled: %v", err)
	} else {
		presence = storage.NewPresence(0)
		defer func() { _ = rds.Close() }()
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Nats.Enabled {
		nn, err := notify.NewNatsNotifier(notify.NatsConfig{
			Servers: cfg.Nats.Servers, Name: cfg.Nats.Name,
		})
		if err != nil {
			logger.Warnf("[boot] nats unavailable, notifications disabled: %v", err)
		} else {
			notifier = nn
			defer nn.Close()
		}
	}

	threadStore := thread.NewMongoStore()
	msgStore := message.NewMongoStore()
	reactStore := reaction.NewMongoStore()
	readStore := read.NewMongoStore()
	followStore := relation.NewMongoFollowStore()
	directory := user.NewMongoDirectory()

	broker := stream.NewBroker()
	nodeID := "dm-" + strconv.FormatInt(cfg.Server.NodeID, 10)
	streamSrv := stream.NewServer(broker, threadStore, presence, nodeID)

	registry := thread.NewRegistry(threadStore, directory, followStore, notifier)
	msgSvc := message.NewService(msgStore, threadStore, broker, notifier)
	ledger := reaction.NewLedger(reactStore, msgStore, threadStore)
	tracker := read.NewTracker(readStore, msgStore, threadStore)

	h := dm.NewHandler(registry, msgSvc, ledger, tracker, streamSrv, presence)

	r := gin.New()
	r.Use(gin.Recovery())
	dm.Register(r, h, secmw.Options{JWT: sec.DefaultOptions([]byte(cfg.JWT.Secret))})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// Stream connections are hijacked on upgrade, so these timeouts only
	// bound the plain HTTP operations.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("[boot] dm service listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Errorf("[boot] server exited: %v", err)
	}
}
