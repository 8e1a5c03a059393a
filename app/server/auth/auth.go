// Package auth orchestrates registration and login on top of the store, the
// hasher and the token service. Every error it returns is an *apperr.Error.
package auth

import (
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/hasher"
	"catalog-service/app/server/jwt"
	"catalog-service/app/server/models"
	"catalog-service/app/server/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersByEmails(ctx context.Context, emails []string) ([]models.User, error)
	CreateUsersWithProfiles(ctx context.Context, users []*models.User) error
	UpdateUser(ctx context.Context, id uint, updates map[string]any) (*models.User, error)
}

type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext string, hashed string) bool
}

type TokenSigner interface {
	SignToken(user *jwt.User) (string, error)
}

type Service struct {
	l        *zap.Logger
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenSigner
	validate *validator.Validate

	// 用于邮箱不存在时仍执行一次校验，让两种失败耗时接近
	decoyMu sync.Mutex
	decoy   string
}

func New(l *zap.Logger, users UserStore, h PasswordHasher, tokens TokenSigner) *Service {
	return &Service{
		l:        l,
		users:    users,
		hasher:   h,
		tokens:   tokens,
		validate: utils.NewValidator(),
	}
}

type RegisterInput struct {
	Email    string  `json:"email" validate:"required"`
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
	Image    *string `json:"image"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Image    *string `json:"image"`
}

// PublicUser is the only user shape returned by registration.
type PublicUser struct {
	ID       uint    `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
}

func publicUser(u *models.User) PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username, Image: u.Image}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in *RegisterInput) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
}

// checkRequired 把 validator 的错误转换为 MissingField
func (s *Service) checkRequired(v any, prefix string) *apperr.Error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	fields, ok := utils.MissingFields(err)
	if !ok {
		return apperr.Wrap(apperr.InvalidInput, http.StatusBadRequest, "Invalid request body", err)
	}
	return apperr.New(apperr.MissingField, http.StatusBadRequest,
		fmt.Sprintf("%sMissing required fields: %s", prefix, strings.Join(fields, ", ")))
}

func (s *Service) hashError(err error) *apperr.Error {
	if errors.Is(err, hasher.ErrInvalidInput) {
		return apperr.Wrap(apperr.InvalidInput, http.StatusBadRequest, "Password is not acceptable", err)
	}
	s.l.Error("failed to hash password", zap.Error(err))
	return apperr.Wrap(apperr.Internal, http.StatusInternalServerError, "Internal server error", err)
}
