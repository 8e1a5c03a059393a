package store

import (
	"catalog-service/app/server/models"
	"context"
	"fmt"
	"gorm.io/gorm"
)

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Profile").Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) SearchUsers(ctx context.Context, username string) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\'", likePattern(username)).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return &user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", mapErr(err))
	}
	return &user, nil
}

// FindUsersByEmails returns the subset of emails that already belong to a user.
func (s *Store) FindUsersByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	var users []models.User
	if len(emails) == 0 {
		return users, nil
	}
	if err := s.db.WithContext(ctx).Where("email IN ?", emails).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users by emails: %w", err)
	}
	return users, nil
}

// CreateUserWithProfile inserts the user and its empty profile atomically.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *models.User) error {
	return s.CreateUsersWithProfiles(ctx, []*models.User{user})
}

// CreateUsersWithProfiles inserts every user and one profile per user in a
// single transaction. Any failure rolls back the whole batch.
func (s *Store) CreateUsersWithProfiles(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(users).Error; err != nil {
			return fmt.Errorf("create users: %w", mapErr(err))
		}

		profiles := make([]*models.Profile, 0, len(users))
		for _, u := range users {
			profiles = append(profiles, &models.Profile{UserID: u.ID})
		}
		if err := tx.Create(profiles).Error; err != nil {
			return fmt.Errorf("create profiles: %w", mapErr(err))
		}

		for i, u := range users {
			u.Profile = profiles[i]
		}
		return nil
	})
	if err != nil {
		// 回滚后清理已回填的主键，避免调用方误用
		for _, u := range users {
			u.ID = 0
			u.Profile = nil
		}
		return err
	}

	return nil
}

// UpdateUser applies the given column updates and returns the fresh record.
func (s *Store) UpdateUser(ctx context.Context, id uint, updates map[string]any) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user %d: %w", id, mapErr(err))
		}
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes the user with its profile and detaches owned items.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("detach items of user %d: %w", id, err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return fmt.Errorf("delete profile of user %d: %w", id, err)
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// UserOwnerID treats every user as owned by itself.
func (s *Store) UserOwnerID(ctx context.Context, id uint) (uint, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id").First(&user, "id = ?", id).Error; err != nil {
		return 0, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return user.ID, nil
}
