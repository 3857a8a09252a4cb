// Package store persists two different things the compile service deals
// with, each suited to a different backend: ingested ASTs (arbitrarily
// nested trees, naturally schemaless) and compiled artifacts (flat,
// relational rows keyed by a content hash).
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ASTDocument is the shape an ingested AST is stored as: the compiler
// never reads this back directly, but the CLI's `serve` command records
// the source text and an ingestion timestamp alongside it for replay.
type ASTDocument struct {
	Hash      string    `bson:"hash"`
	Source    string    `bson:"source"`
	IngestedAt time.Time `bson:"ingested_at"`
}

// ASTStore records raw program sources that compiled successfully, keyed
// by a content hash. Backed by MongoDB because AST-shaped documents don't fit
// a fixed relational schema the way compiled artifacts do.
type ASTStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewASTStore connects to the MongoDB instance at uri and opens the
// named database's "asts" collection.
func NewASTStore(ctx context.Context, uri, database string) (*ASTStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store: pinging mongo: %w", err)
	}
	return &ASTStore{
		client: client,
		coll:   client.Database(database).Collection("asts"),
	}, nil
}

// Close disconnects the underlying client.
func (s *ASTStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Put records doc, upserting by hash so re-ingesting identical source is
// idempotent.
func (s *ASTStore) Put(ctx context.Context, doc ASTDocument) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now()
	}
	filter := bson.D{{Key: "hash", Value: doc.Hash}}
	update := bson.D{{Key: "$set", Value: doc}}
	opts := options.UpdateOne().SetUpsert(true)
	_, err := s.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("store: upserting AST %s: %w", doc.Hash, err)
	}
	return nil
}

// Get returns the document stored under hash, or (zero, false, nil) if
// none exists.
func (s *ASTStore) Get(ctx context.Context, hash string) (ASTDocument, bool, error) {
	var doc ASTDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "hash", Value: hash}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return ASTDocument{}, false, nil
	}
	if err != nil {
		return ASTDocument{}, false, fmt.Errorf("store: fetching AST %s: %w", hash, err)
	}
	return doc, true, nil
}
