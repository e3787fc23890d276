package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate_PassesThroughAppErrors(t *testing.T) {
	original := Forbidden("no access")

	translated := Translate(fmt.Errorf("wrapped: %w", original))

	assert.Equal(t, original, translated)
}

func TestTranslate_NoDocuments(t *testing.T) {
	translated := Translate(fmt.Errorf("lookup: %w", mongo.ErrNoDocuments))

	assert.Equal(t, http.StatusNotFound, translated.Status)
}

func TestTranslate_InvalidObjectID(t *testing.T) {
	_, err := primitive.ObjectIDFromHex("not-an-id")
	assert.Error(t, err)

	translated := Translate(err)

	assert.Equal(t, http.StatusBadRequest, translated.Status)
}

func TestTranslate_DuplicateKeyNamesField(t *testing.T) {
	writeErr := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: `E11000 duplicate key error collection: accounts.users index: email_1 dup key: { email: "a@b.c" }`,
		}},
	}

	translated := Translate(writeErr)

	assert.Equal(t, http.StatusBadRequest, translated.Status)
	assert.Contains(t, translated.Message, "email")
}

func TestTranslate_UnknownErrorIsInternalAndGeneric(t *testing.T) {
	translated := Translate(errors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, translated.Status)
	assert.Equal(t, "something went wrong", translated.Message)
	assert.False(t, translated.Operational())
}

func TestOperational(t *testing.T) {
	assert.True(t, BadRequest("bad").Operational())
	assert.True(t, Unauthorized("no").Operational())
	assert.True(t, Forbidden("no").Operational())
	assert.True(t, NotFound("gone").Operational())
	assert.False(t, Internal(errors.New("boom")).Operational())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root cause")
}
