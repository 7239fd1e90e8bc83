package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type blobDocument struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend keeps the blob as a string field of one document.
type MongoBackend struct {
	collection *mongo.Collection
	documentID string
}

func NewMongoBackend(collection *mongo.Collection, documentID string) *MongoBackend {
	return &MongoBackend{collection: collection, documentID: documentID}
}

func (b *MongoBackend) Name() string {
	return "mongo"
}

func (b *MongoBackend) Load(ctx context.Context) ([]byte, error) {
	var doc blobDocument
	err := b.collection.FindOne(ctx, bson.M{"_id": b.documentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", b.documentID, err)
	}
	return []byte(doc.Data), nil
}

func (b *MongoBackend) Save(ctx context.Context, data []byte) error {
	doc := blobDocument{
		ID:        b.documentID,
		Data:      string(data),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := b.collection.ReplaceOne(ctx, bson.M{"_id": b.documentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s: %w", b.documentID, err)
	}
	return nil
}
