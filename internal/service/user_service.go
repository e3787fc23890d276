package service

import (
	"context"

	"account_api/internal/apperror"
	"account_api/internal/model"
	"account_api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService covers self-service account operations. Admin CRUD goes
// through the generic resource handlers instead.
type UserService interface {
	UpdateMe(ctx context.Context, id primitive.ObjectID, req model.UpdateMeRequest) (*model.User, error)
	DeactivateMe(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// UpdateMe applies a name/email update. Password changes are rejected here;
// they go through the credential flows so invalidation semantics hold.
func (s *userService) UpdateMe(ctx context.Context, id primitive.ObjectID, req model.UpdateMeRequest) (*model.User, error) {
	fields := bson.M{}
	if req.FullName != nil && *req.FullName != "" {
		fields["fullname"] = *req.FullName
	}
	if req.Email != nil && *req.Email != "" {
		fields["email"] = *req.Email
	}
	if len(fields) == 0 {
		return nil, apperror.BadRequest("nothing to update, provide fullname or email")
	}

	user, err := s.userRepo.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("no user found with that identifier")
	}
	return user, nil
}

// DeactivateMe soft-deletes the account; the record stays but default reads
// no longer see it.
func (s *userService) DeactivateMe(ctx context.Context, id primitive.ObjectID) error {
	return s.userRepo.Deactivate(ctx, id)
}
