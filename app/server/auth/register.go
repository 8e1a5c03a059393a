package auth

import (
	"catalog-service/app/server/apperr"
	"catalog-service/app/server/models"
	"catalog-service/app/server/store"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func emailTaken(emails ...string) *apperr.Error {
	if len(emails) == 1 {
		return apperr.New(apperr.EmailTaken, http.StatusConflict, "Email already registered")
	}
	return apperr.New(apperr.EmailTaken, http.StatusConflict,
		fmt.Sprintf("Some emails already registered: %s", strings.Join(emails, ", ")))
}

// Register creates one user and its profile. The password is stored only as
// a hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*PublicUser, error) {
	in.normalize()
	if err := s.checkRequired(&in, ""); err != nil {
		return nil, err
	}

	// 邮箱是否已注册
	if _, err := s.users.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, emailTaken(in.Email)
	} else if !errors.Is(err, store.ErrNotFound) {
		s.l.Error("failed to look up email", zap.Error(err))
		return nil, apperr.DataAccess(err)
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, s.hashError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Username: in.Username,
		Image:    in.Image,
		Password: hashed,
	}
	if err := s.users.CreateUsersWithProfiles(ctx, []*models.User{user}); err != nil {
		// 并发注册同一邮箱时由唯一约束兜底
		if errors.Is(err, store.ErrDuplicate) {
			return nil, emailTaken(in.Email)
		}
		s.l.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, apperr.DataAccess(err)
	}

	out := publicUser(user)
	return &out, nil
}

// RegisterBulk registers every element or none of them. All elements are
// checked before anything is hashed or written.
func (s *Service) RegisterBulk(ctx context.Context, ins []RegisterInput) ([]PublicUser, error) {
	if len(ins) == 0 {
		return nil, apperr.New(apperr.InvalidInput, http.StatusBadRequest, "Request body must be a non-empty array")
	}

	emails := make([]string, 0, len(ins))
	seen := make(map[string]bool, len(ins))
	var repeated []string
	for i := range ins {
		ins[i].normalize()
		if err := s.checkRequired(&ins[i], fmt.Sprintf("users[%d]: ", i)); err != nil {
			return nil, err
		}
		if seen[ins[i].Email] {
			repeated = append(repeated, ins[i].Email)
			continue
		}
		seen[ins[i].Email] = true
		emails = append(emails, ins[i].Email)
	}
	if len(repeated) > 0 {
		return nil, emailTaken(repeated...)
	}

	// 一次查询找出全部冲突
	existing, err := s.users.FindUsersByEmails(ctx, emails)
	if err != nil {
		s.l.Error("failed to look up emails", zap.Error(err))
		return nil, apperr.DataAccess(err)
	}
	if len(existing) > 0 {
		taken := make([]string, 0, len(existing))
		for _, u := range existing {
			taken = append(taken, u.Email)
		}
		return nil, apperr.New(apperr.EmailTaken, http.StatusConflict,
			fmt.Sprintf("Some emails already registered: %s", strings.Join(taken, ", ")))
	}

	// 并行计算哈希，并发度由 hasher 内部限制
	users := make([]*models.User, len(ins))
	g, gctx := errgroup.WithContext(ctx)
	for i := range ins {
		in := ins[i]
		users[i] = &models.User{Email: in.Email, Username: in.Username, Image: in.Image}
		u := users[i]
		g.Go(func() error {
			hashed, err := s.hasher.Hash(gctx, in.Password)
			if err != nil {
				return err
			}
			u.Password = hashed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.hashError(err)
	}

	if err := s.users.CreateUsersWithProfiles(ctx, users); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.New(apperr.EmailTaken, http.StatusConflict, "Some emails already registered")
		}
		s.l.Error("failed to create users", zap.Int("count", len(users)), zap.Error(err))
		return nil, apperr.DataAccess(err)
	}

	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}
	return out, nil
}
