package project

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// DefaultCollection holds resources in MongoDB.
const DefaultCollection = "resources"

// MongoStore keeps resources as documents keyed by (pack, path), so several
// API server replicas can share one set of packs.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type resourceDoc struct {
	Pack      string    `bson:"pack"`
	Path      string    `bson:"path"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and ensures the (pack, path) unique index.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	s := &MongoStore{client: client, coll: client.Database(database).Collection(DefaultCollection)}

	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pack", Value: 1}, {Key: "path", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create resource index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Read(ctx context.Context, pack, p string) ([]byte, error) {
	var doc resourceDoc
	err := s.coll.FindOne(ctx, bson.M{"pack": pack, "path": p}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(pack, p)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s:%s: %w", pack, p, err)
	}
	return doc.Data, nil
}

func (s *MongoStore) Write(ctx context.Context, pack, p string, data []byte) error {
	if err := werrors.ValidatePack(pack); err != nil {
		return err
	}
	if err := werrors.ValidateLocation(p); err != nil {
		return err
	}
	doc := resourceDoc{Pack: pack, Path: p, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"pack": pack, "path": p},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s:%s: %w", pack, p, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, pack, folder string) ([]string, error) {
	filter := bson.M{
		"pack": pack,
		"path": bson.M{"$regex": "^" + regexp.QuoteMeta(folder+"/")},
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"path": 1}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	var docs []resourceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	locations := make([]string, 0, len(docs))
	for _, d := range docs {
		if loc, ok := trimLocation(folder, d.Path); ok {
			locations = append(locations, loc)
		}
	}
	sort.Strings(locations)
	return locations, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
