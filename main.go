package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"chatapp/global"
	"chatapp/logger"
	"chatapp/module/api"
	"chatapp/module/chat/store"
	userservice "chatapp/module/user/service"
	"chatapp/service/chat"
	"chatapp/service/storage"
	"chatapp/tools/ids"
	jwtlib "chatapp/tools/security"
)

func main() {
	cfg := global.Load()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.BoolVar(&cfg.UseMemory, "mem", cfg.UseMemory, "use in-memory stores (no Mongo/Redis)")
	flag.Parse()

	ids.SetNodeID(cfg.NodeID)

	conv, social := buildStores(cfg)
	mirror := buildMirror(cfg)

	reg := chat.NewRegistry()
	router := chat.NewRouter(conv, social, reg, cfg.RequireFriendship)
	gw := chat.NewGateway(reg, social, router, mirror)

	jwtOpts := jwtlib.Options{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}
	users := userservice.NewService(social, jwtOpts)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	api.New(users, social, conv, router, jwtOpts).RegisterRoutes(engine, gw)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	go func() {
		logger.Infof("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	reg.CloseAll()
}

func buildStores(cfg global.Config) (store.ConversationStore, store.SocialStore) {
	if cfg.UseMemory {
		logger.Info("using in-memory stores")
		ms := store.NewMemStore()
		return ms, ms
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(cfg.MongoURI))
	if err == nil {
		err = client.Ping(ctx, nil)
	}
	if err != nil {
		logger.Errorf("mongo connect: %v", err)
		os.Exit(1)
	}
	ms := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := ms.EnsureIndexes(ctx); err != nil {
		logger.Errorf("mongo indexes: %v", err)
		os.Exit(1)
	}
	logger.Infof("mongo connected db=%s", cfg.MongoDatabase)
	return ms, ms
}

func buildMirror(cfg global.Config) *storage.PresenceMirror {
	if cfg.UseMemory || cfg.RedisAddr == "" {
		return nil
	}
	mirror, err := storage.NewPresenceMirror(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 5*time.Minute)
	if err != nil {
		// presence mirror is best effort; run without it
		logger.Warnf("redis presence mirror disabled: %v", err)
		return nil
	}
	logger.Infof("redis presence mirror enabled addr=%s", cfg.RedisAddr)
	return mirror
}
