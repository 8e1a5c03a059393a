package store

import (
	"catalog-service/app/server/models"
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
)

// withRelations 预加载商品关联的用户、类型和品牌
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Type").Preload("Brand")
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := withRelations(s.db.WithContext(ctx)).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *Store) SearchItems(ctx context.Context, name string) ([]models.Item, error) {
	var items []models.Item
	if err := withRelations(s.db.WithContext(ctx)).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(name)).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := withRelations(s.db.WithContext(ctx)).First(&item, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, mapErr(err))
	}
	return &item, nil
}

// checkItemRefs 确认所有者、品牌和类型存在
func checkItemRefs(db *gorm.DB, items []*models.Item) error {
	var ownerIDs, brandIDs, typeIDs []uint
	for _, item := range items {
		if item.UserID != nil {
			ownerIDs = append(ownerIDs, *item.UserID)
		}
		if item.BrandID != nil {
			brandIDs = append(brandIDs, *item.BrandID)
		}
		if item.TypeID != nil {
			typeIDs = append(typeIDs, *item.TypeID)
		}
	}

	// 令牌仍有效但用户已被删除
	if err := checkIDs[models.User](db, ownerIDs); errors.Is(err, ErrBadRef) {
		return ErrOwnerGone
	} else if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if err := checkIDs[models.Brand](db, brandIDs); err != nil {
		return fmt.Errorf("brand: %w", err)
	}
	if err := checkIDs[models.Type](db, typeIDs); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	return s.CreateItems(ctx, []*models.Item{item})
}

// CreateItems inserts the batch in one transaction; nothing is kept on failure.
func (s *Store) CreateItems(ctx context.Context, items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkItemRefs(tx, items); err != nil {
			return err
		}
		if err := tx.Create(items).Error; err != nil {
			return fmt.Errorf("create items: %w", mapErr(err))
		}
		return nil
	})
	if err != nil {
		for _, item := range items {
			item.ID = 0
		}
		return err
	}

	return nil
}

// UpdateItem applies column updates. The owner column is never touched.
func (s *Store) UpdateItem(ctx context.Context, id uint, updates map[string]any) (*models.Item, error) {
	delete(updates, "user_id")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return fmt.Errorf("get item %d: %w", id, mapErr(err))
		}

		ref := &models.Item{}
		if v, ok := updates["brand_id"].(*uint); ok {
			ref.BrandID = v
		}
		if v, ok := updates["type_id"].(*uint); ok {
			ref.TypeID = v
		}
		if err := checkItemRefs(tx, []*models.Item{ref}); err != nil {
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return fmt.Errorf("update item %d: %w", id, mapErr(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetItem(ctx, id)
}

func (s *Store) DeleteItem(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete item %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	return nil
}

// ItemOwnerID returns the owning user id, read straight from the database.
// Items whose owner has been removed report 0, which matches no user.
func (s *Store) ItemOwnerID(ctx context.Context, id uint) (uint, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Select("id", "user_id").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("get item %d: %w", id, ErrNotFound)
		}
		return 0, fmt.Errorf("get item %d: %w", id, err)
	}
	if item.UserID == nil {
		return 0, nil
	}
	return *item.UserID, nil
}
