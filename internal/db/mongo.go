package db

import (
	"context"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var connectMongoFn = func(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// ConnectMongo returns a nil client without error when MONGO_URI is unset.
// Image uploads are disabled in that case.
func ConnectMongo(cfg config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := connectMongoFn(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}
