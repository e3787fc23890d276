package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User represents an account document.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	FullName string             `bson:"fullname" json:"fullname"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never exposed
	Role     string             `bson:"role" json:"role"`
	Active   bool               `bson:"active" json:"-"`
	Verified bool               `bson:"verified" json:"verified"`

	PasswordChangedAt           time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	ResetPasswordToken          string    `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordTokenExpiresAt time.Time `bson:"resetPasswordTokenExpiresAt,omitempty" json:"-"`
	VerificationToken           string    `bson:"verificationToken,omitempty" json:"-"`
	VerificationTokenExpiresAt  time.Time `bson:"verificationTokenExpiresAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// HasRole reports whether the user's role is one of the given roles.
func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// PasswordChangedAfter reports whether the password changed strictly after
// the given token issue time. Comparison is at second granularity to match
// JWT iat resolution; the stored change time is backdated one second on
// rotation so a token issued in the same second as the change stays valid.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// SignupRequest is the payload for POST /users/signup.
type SignupRequest struct {
	FullName        string `json:"fullname" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// SigninRequest is the payload for POST /users/signin.
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the payload for POST /users/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the payload for PATCH /users/reset-password/:token.
type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// UpdatePasswordRequest is the payload for PATCH /users/update-password.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// UpdateMeRequest is the payload for PATCH /users/update-me. Only name and
// email are self-serviceable; everything else goes through admin routes.
type UpdateMeRequest struct {
	FullName *string `json:"fullname,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}
