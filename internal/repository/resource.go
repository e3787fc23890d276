package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Transform mutates a document before it is persisted. Transforms run in
// registration order; the first error aborts the write.
type Transform[T any] func(*T) error

// Lookup describes an optional reference expansion for FindByID.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// Resource is a generic CRUD layer over a single document collection.
// A default read predicate is merged into every query (soft-delete
// semantics), a default projection hides sensitive fields, and the
// before-persist transform list replaces implicit model hooks.
type Resource[T any] struct {
	coll              *mongo.Collection
	defaultFilter     bson.M
	defaultProjection bson.M
	beforePersist     []Transform[T]
}

// ResourceOption configures a Resource.
type ResourceOption[T any] func(*Resource[T])

// WithDefaultFilter merges the given predicate into every read.
func WithDefaultFilter[T any](filter bson.M) ResourceOption[T] {
	return func(r *Resource[T]) { r.defaultFilter = filter }
}

// WithDefaultProjection excludes or includes fields on reads that do not
// request their own field selection.
func WithDefaultProjection[T any](projection bson.M) ResourceOption[T] {
	return func(r *Resource[T]) { r.defaultProjection = projection }
}

// WithBeforePersist appends transforms applied to every inserted document.
func WithBeforePersist[T any](transforms ...Transform[T]) ResourceOption[T] {
	return func(r *Resource[T]) { r.beforePersist = append(r.beforePersist, transforms...) }
}

// NewResource creates a Resource over the given collection.
func NewResource[T any](coll *mongo.Collection, opts ...ResourceOption[T]) *Resource[T] {
	r := &Resource[T]{coll: coll}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collection exposes the underlying collection for queries the generic layer
// does not cover.
func (r *Resource[T]) Collection() *mongo.Collection { return r.coll }

// InsertOne runs the before-persist transforms and inserts the document.
func (r *Resource[T]) InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	for _, transform := range r.beforePersist {
		if err := transform(doc); err != nil {
			return primitive.NilObjectID, err
		}
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert document: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

// FindByID fetches a single document, applying the default read predicate and
// projection. Optional lookups expand referenced collections. Returns
// mongo.ErrNoDocuments when nothing matches.
func (r *Resource[T]) FindByID(ctx context.Context, id primitive.ObjectID, lookups ...Lookup) (*T, error) {
	filter := r.readFilter(bson.M{"_id": id})

	if len(lookups) == 0 {
		opts := options.FindOne()
		if r.defaultProjection != nil {
			opts.SetProjection(r.defaultProjection)
		}
		doc := new(T)
		if err := r.coll.FindOne(ctx, filter, opts).Decode(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: filter}}}
	for _, l := range lookups {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.M{
			"from":         l.From,
			"localField":   l.LocalField,
			"foreignField": l.ForeignField,
			"as":           l.As,
		}}})
	}
	if r.defaultProjection != nil {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: r.defaultProjection}})
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate document: %w", err)
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, mongo.ErrNoDocuments
	}
	doc := new(T)
	if err := cursor.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Find executes the composed feature query and returns the matching window
// plus the total count of documents matching the filter.
func (r *Resource[T]) Find(ctx context.Context, f *Features) ([]T, int64, error) {
	filter := r.readFilter(f.FilterDoc)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	opts := options.Find().SetSkip(f.SkipN).SetLimit(f.LimitN)
	if len(f.SortDoc) > 0 {
		opts.SetSort(f.SortDoc)
	}
	switch {
	case f.ProjectionDoc != nil:
		opts.SetProjection(f.ProjectionDoc)
	case r.defaultProjection != nil:
		opts.SetProjection(r.defaultProjection)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, total, nil
}

// UpdateByID applies a partial update and returns the post-update document.
// Returns mongo.ErrNoDocuments when nothing matches.
func (r *Resource[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, patch bson.M) (*T, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range patch {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if r.defaultProjection != nil {
		opts.SetProjection(r.defaultProjection)
	}

	doc := new(T)
	err := r.coll.FindOneAndUpdate(ctx, r.readFilter(bson.M{"_id": id}), bson.M{"$set": set}, opts).Decode(doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteByID removes the document entirely. Returns mongo.ErrNoDocuments when
// nothing matches.
func (r *Resource[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// readFilter merges the default read predicate into a query filter. The
// default wins on shared keys, so a caller filter like active=false cannot
// opt out of soft-delete visibility.
func (r *Resource[T]) readFilter(filter bson.M) bson.M {
	if r.defaultFilter == nil {
		return filter
	}
	merged := bson.M{}
	for k, v := range filter {
		merged[k] = v
	}
	for k, v := range r.defaultFilter {
		merged[k] = v
	}
	return merged
}
