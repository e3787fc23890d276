package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account_api/internal/apperror"
	"account_api/internal/model"
	"account_api/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func findOneProjection(projection bson.M) *options.FindOneOptions {
	return options.FindOne().SetProjection(projection)
}

// UsersCollection is the backing collection name.
const UsersCollection = "users"

// notInactive is the default read predicate: soft-deleted users are invisible
// to every default query, lookups by email included.
var notInactive = bson.M{"active": bson.M{"$ne": false}}

// hidePassword keeps the hash out of every default read.
var hidePassword = bson.M{"password": 0}

// UserRepository defines operations for user data. Find methods return
// (nil, nil) when no matching user exists; the service layer decides what
// that means.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, tokenHash string) (*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Resource() *Resource[model.User]
}

type userRepository struct {
	coll *mongo.Collection
	res  *Resource[model.User]
}

// NewUserRepository creates a UserRepository over the users collection.
func NewUserRepository(db *mongo.Database) UserRepository {
	coll := db.Collection(UsersCollection)
	res := NewResource(coll,
		WithDefaultFilter[model.User](notInactive),
		WithDefaultProjection[model.User](hidePassword),
		WithBeforePersist(normalizeUser, hashUserPassword),
	)
	return &userRepository{coll: coll, res: res}
}

// Resource exposes the generic CRUD layer for the admin handlers.
func (r *userRepository) Resource() *Resource[model.User] { return r.res }

// normalizeUser fills defaults and normalizes the email before persistence.
func normalizeUser(u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return apperror.BadRequest("user email must not be empty")
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.Active = true
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// hashUserPassword replaces a plaintext password with its hash so clear text
// is never durably written. Already-hashed values pass through untouched.
func hashUserPassword(u *model.User) error {
	if u.Password == "" || strings.HasPrefix(u.Password, "$2") {
		return nil
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// Create inserts a new user. Uniqueness on email is enforced by the store's
// index; a concurrent duplicate surfaces as the driver's write error.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	id, err := r.res.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// FindByID retrieves an active user by identifier, password excluded.
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := r.res.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves an active user by normalized email. withPassword
// selects the normally hidden hash for credential checks.
func (r *userRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*model.User, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email)), "active": bson.M{"$ne": false}}

	finder := r.coll.FindOne(ctx, filter)
	if !withPassword {
		finder = r.coll.FindOne(ctx, filter, findOneProjection(hidePassword))
	}

	user := &model.User{}
	if err := finder.Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByResetToken retrieves the user holding an unexpired reset token hash.
func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string) (*model.User, error) {
	return r.findByToken(ctx, "resetPasswordToken", "resetPasswordTokenExpiresAt", tokenHash)
}

// FindByVerificationToken retrieves the user holding an unexpired
// verification token hash.
func (r *userRepository) FindByVerificationToken(ctx context.Context, tokenHash string) (*model.User, error) {
	return r.findByToken(ctx, "verificationToken", "verificationTokenExpiresAt", tokenHash)
}

func (r *userRepository) findByToken(ctx context.Context, tokenField, expiryField, tokenHash string) (*model.User, error) {
	filter := bson.M{
		tokenField:  tokenHash,
		expiryField: bson.M{"$gt": time.Now()},
		"active":    bson.M{"$ne": false},
	}
	user := &model.User{}
	if err := r.coll.FindOne(ctx, filter, findOneProjection(hidePassword)).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by token: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a self-service field update and returns the
// post-update document.
func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.User, error) {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	user, err := r.res.UpdateByID(ctx, id, fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return user, nil
}

// UpdatePassword rotates the stored hash, bumps passwordChangedAt and clears
// any outstanding reset token in the same write.
func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string, changedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"password":          passwordHash,
			"passwordChangedAt": changedAt,
			"updatedAt":         time.Now(),
		},
		"$unset": bson.M{
			"resetPasswordToken":          "",
			"resetPasswordTokenExpiresAt": "",
		},
	}
	return r.updateOne(ctx, id, update, "failed to update password")
}

// SetResetToken stores the hashed reset token and its expiry.
func (r *userRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"resetPasswordToken":          tokenHash,
		"resetPasswordTokenExpiresAt": expiresAt,
		"updatedAt":                   time.Now(),
	}}
	return r.updateOne(ctx, id, update, "failed to set reset token")
}

// ClearResetToken removes both reset token fields together.
func (r *userRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"updatedAt": time.Now()},
		"$unset": bson.M{
			"resetPasswordToken":          "",
			"resetPasswordTokenExpiresAt": "",
		},
	}
	return r.updateOne(ctx, id, update, "failed to clear reset token")
}

// MarkVerified flags the account verified and clears both verification
// token fields together.
func (r *userRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"verified": true, "updatedAt": time.Now()},
		"$unset": bson.M{
			"verificationToken":          "",
			"verificationTokenExpiresAt": "",
		},
	}
	return r.updateOne(ctx, id, update, "failed to mark user verified")
}

// Deactivate soft-deletes the account; default reads no longer see it.
func (r *userRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "failed to deactivate user")
}

func (r *userRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M, msg string) error {
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
