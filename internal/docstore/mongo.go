package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
)

// MongoBackend stores each collection as a MongoDB collection keyed by a
// string _id.
type MongoBackend struct {
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// NewMongoBackend wraps an already connected database handle.
func NewMongoBackend(db *mongo.Database, logger *zap.Logger) *MongoBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoBackend{db: db, logger: logger, now: time.Now}
}

func (m *MongoBackend) Insert(ctx context.Context, collection, id string, data Document) error {
	ts := FormatTime(m.now())
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}
	doc[FieldCreatedAt] = ts
	doc[FieldUpdatedAt] = ts
	_, err := m.db.Collection(collection).InsertOne(ctx, doc)
	return classifyMongo(err, collection, id)
}

func (m *MongoBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		return nil, classifyMongo(err, collection, id)
	}
	return fromMongo(raw)
}

func (m *MongoBackend) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	findOpts := options.Find()
	if opts.OrderBy != nil && opts.OrderBy.Field != "" {
		dir := 1
		if opts.OrderBy.Direction == Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.OrderBy.Field, Value: dir}})
	} else {
		findOpts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, classifyMongo(err, collection, "")
	}
	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, classifyMongo(err, collection, "")
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := fromMongo(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MongoBackend) Update(ctx context.Context, collection, id string, partial Document) error {
	update := mongoUpdate(partial)
	set := update["$set"].(bson.M)
	set[FieldUpdatedAt] = FormatTime(m.now())

	res, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return classifyMongo(err, collection, id)
	}
	if res.MatchedCount == 0 {
		return errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
	}
	return nil
}

func (m *MongoBackend) Set(ctx context.Context, collection, id string, data Document, opts SetOptions) error {
	coll := m.db.Collection(collection)
	ts := FormatTime(m.now())

	if opts.Merge {
		update := mongoUpdate(data)
		if opts.Touch {
			update["$set"].(bson.M)[FieldUpdatedAt] = ts
			if _, ok := data[FieldCreatedAt]; !ok {
				update["$setOnInsert"] = bson.M{FieldCreatedAt: ts}
			}
		}
		_, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
		return classifyMongo(err, collection, id)
	}

	replacement := bson.M{}
	for k, v := range data {
		if op, ok := v.(ArrayUnionOp); ok {
			v = unionValues(nil, op.Values)
		}
		replacement[k] = v
	}
	if opts.Touch {
		replacement[FieldUpdatedAt] = ts
		if _, ok := data[FieldCreatedAt]; !ok {
			var existing bson.M
			err := coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{FieldCreatedAt: 1})).Decode(&existing)
			switch {
			case errors.Is(err, mongo.ErrNoDocuments):
				replacement[FieldCreatedAt] = ts
			case err != nil:
				return classifyMongo(err, collection, id)
			}
		}
	}
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, replacement, options.Replace().SetUpsert(true))
	return classifyMongo(err, collection, id)
}

func (m *MongoBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return classifyMongo(err, collection, id)
}

// BatchDelete issues a single DeleteMany; it is atomic per document only.
func (m *MongoBackend) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.db.Collection(collection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return classifyMongo(err, collection, "")
}

func (m *MongoBackend) Ping(ctx context.Context) error {
	return classifyMongo(m.db.Client().Ping(ctx, nil), "", "")
}

// Watch opens a change stream. It needs a replica set; standalone servers
// return an error and the client falls back to its own hub.
func (m *MongoBackend) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	stream, err := m.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, classifyMongo(err, collection, "")
	}
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			m.logger.Warn("change stream stopped", zap.String("collection", collection), zap.Error(err))
		}
	}()
	return ch, nil
}

func mongoUpdate(partial Document) bson.M {
	set := bson.M{}
	addToSet := bson.M{}
	for k, v := range partial {
		if op, ok := v.(ArrayUnionOp); ok {
			addToSet[k] = bson.M{"$each": op.Values}
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	return update
}

func fromMongo(raw bson.M) (Document, error) {
	doc := Document{}
	for k, v := range raw {
		if k == "_id" {
			doc[FieldID] = fmt.Sprint(v)
			continue
		}
		doc[k] = plainValue(v)
	}
	return Normalize(doc)
}

// plainValue unwraps driver container types so the JSON round trip in
// Normalize sees maps and slices.
func plainValue(v any) any {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = plainValue(inner)
		}
		return m
	case primitive.A:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = plainValue(inner)
		}
		return s
	case primitive.DateTime:
		return FormatTime(val.Time())
	case primitive.ObjectID:
		return val.Hex()
	default:
		return val
	}
}

func classifyMongo(err error, collection, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errorutil.NewNotFound("document", map[string]any{"collection": collection, "id": id})
	case mongo.IsDuplicateKeyError(err):
		return errorutil.NewConflict("already-exists", "document already exists")
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errorutil.NewUnavailable(err)
	default:
		return errorutil.NewInternalError(fmt.Errorf("mongo %s: %w", collection, err))
	}
}
