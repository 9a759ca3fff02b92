package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// The client is process-wide and established on first use. The driver pools
// connections and is safe for concurrent use, so every request shares it.
// There is no teardown besides Disconnect at process exit.
var (
	clientMu sync.Mutex
	dbClient *mongo.Client
)

const connectTimeout = 10 * time.Second

// Connect returns the cached client, dialing and pinging it on the first call.
// A failed attempt is not cached so the next call retries.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientMu.Lock()
	defer clientMu.Unlock()

	if dbClient != nil {
		return dbClient, nil
	}
	if uri == "" {
		return nil, fmt.Errorf("missing MongoDB connection string")
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbClient = client
	return dbClient, nil
}

// Disconnect closes the cached client if one was established.
func Disconnect(ctx context.Context) error {
	clientMu.Lock()
	defer clientMu.Unlock()

	if dbClient == nil {
		return nil
	}
	err := dbClient.Disconnect(ctx)
	dbClient = nil
	return err
}

// OpenDatabase connects (or reuses the connection) and returns the named database.
func OpenDatabase(ctx context.Context, uri, name string) (*mongo.Database, error) {
	client, err := Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	return client.Database(name), nil
}
