package handler

import (
	"context"
	"net/http"

	"account_api/internal/apperror"
	"account_api/internal/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fields a partial update may never touch: identifiers are immutable and
// credentials only move through the auth flows.
var immutableFields = []string{"id", "_id", "password", "passwordConfirm", "createdAt"}

// ResourceStore is the document-collection contract the generic handlers
// run against. Satisfied by *repository.Resource[T].
type ResourceStore[T any] interface {
	InsertOne(ctx context.Context, doc *T) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID, lookups ...repository.Lookup) (*T, error)
	Find(ctx context.Context, f *repository.Features) ([]T, int64, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, patch bson.M) (*T, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// CRUD produces generic create/read/update/delete handlers for one document
// collection.
type CRUD[T any] struct {
	store    ResourceStore[T]
	singular string
	plural   string
}

// NewCRUD creates a handler factory for the given store. The names key the
// documents in the response envelope.
func NewCRUD[T any](store ResourceStore[T], singular, plural string) *CRUD[T] {
	return &CRUD[T]{store: store, singular: singular, plural: plural}
}

// CreateOne persists a new document from the request body and responds with
// the stored document.
func (h *CRUD[T]) CreateOne(c *gin.Context) {
	doc := new(T)
	if err := c.ShouldBindJSON(doc); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}

	id, err := h.store.InsertOne(c.Request.Context(), doc)
	if err != nil {
		abortWith(c, err)
		return
	}
	created, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		abortWith(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{h.singular: created},
	})
}

// GetOne fetches a document by identifier, optionally expanding references.
func (h *CRUD[T]) GetOne(lookups ...repository.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.pathID(c)
		if !ok {
			return
		}
		doc, err := h.store.FindByID(c.Request.Context(), id, lookups...)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{h.singular: doc},
		})
	}
}

// GetAll runs the feature-built query over the whole collection and responds
// with the result window plus its counts.
func (h *CRUD[T]) GetAll(c *gin.Context) {
	features := repository.NewFeatures(c.Request.URL.Query()).Build()

	docs, total, err := h.store.Find(c.Request.Context(), features)
	if err != nil {
		abortWith(c, err)
		return
	}
	if docs == nil {
		docs = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(docs),
		"total":   total,
		"data":    gin.H{h.plural: docs},
	})
}

// UpdateOne applies a partial update by identifier and responds with the
// post-update document.
func (h *CRUD[T]) UpdateOne(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	patch := bson.M{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWith(c, apperror.BadRequest("invalid request: "+err.Error()))
		return
	}
	for _, field := range immutableFields {
		delete(patch, field)
	}
	if len(patch) == 0 {
		abortWith(c, apperror.BadRequest("nothing to update"))
		return
	}

	doc, err := h.store.UpdateByID(c.Request.Context(), id, patch)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{h.singular: doc},
	})
}

// DeleteOne removes a document entirely. No content on success.
func (h *CRUD[T]) DeleteOne(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteByID(c.Request.Context(), id); err != nil {
		abortWith(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, rejecting empty or malformed
// identifiers before any store access.
func (h *CRUD[T]) pathID(c *gin.Context) (primitive.ObjectID, bool) {
	raw := c.Param("id")
	if raw == "" {
		abortWith(c, apperror.BadRequest("identifier must not be empty"))
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWith(c, apperror.BadRequest("invalid identifier"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
