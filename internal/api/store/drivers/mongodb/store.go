// Package mongodb implements store.Store on MongoDB. Documents use the ULID
// string as _id so IDs look the same whichever driver is configured.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var _ store.Store = (*Store)(nil)

const (
	usersCollection  = "users"
	videosCollection = "videos"

	disconnectTimeout = 10 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri and uses database name. The driver connects
// lazily, so Ping is how callers find out the server is reachable.
func NewStore(uri, name string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetAppName("vidhub"))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	return &Store{client: client, db: client.Database(name)}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// ApplyMigrations creates the unique and lookup indexes. CreateMany is a
// no-op for indexes that already exist with the same spec.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	_, err := s.users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "refreshTokenExpiresAt", Value: 1}}, Options: options.Index().SetSparse(true).SetName("refresh_expiry")},
	})
	if err != nil {
		return fmt.Errorf("mongo: users indexes: %w", err)
	}

	_, err = s.videos().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: options.Index().SetName("owner"),
	})
	if err != nil {
		return fmt.Errorf("mongo: videos indexes: %w", err)
	}
	return nil
}

func (s *Store) Users() store.Users   { return &usersRepo{coll: s.users()} }
func (s *Store) Videos() store.Videos { return &videosRepo{coll: s.videos()} }

func (s *Store) users() *mongo.Collection  { return s.db.Collection(usersCollection) }
func (s *Store) videos() *mongo.Collection { return s.db.Collection(videosCollection) }

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
	return err
}
