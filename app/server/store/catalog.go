package store

import (
	"catalog-service/app/server/models"
	"context"
	"fmt"
	"gorm.io/gorm"
)

// 品牌与类型的增删改查逻辑完全一致，用泛型函数实现

type catalogModel interface {
	models.Brand | models.Type
}

func listAll[M catalogModel](db *gorm.DB) ([]M, error) {
	var rows []M
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func searchByName[M catalogModel](db *gorm.DB, name string) ([]M, error) {
	var rows []M
	if err := db.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(name)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func getByID[M catalogModel](db *gorm.DB, id uint) (*M, error) {
	var row M
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &row, nil
}

func updateByID[M catalogModel](db *gorm.DB, id uint, updates map[string]any) (*M, error) {
	row, err := getByID[M](db, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(row).Updates(updates).Error; err != nil {
			return nil, mapErr(err)
		}
	}
	return getByID[M](db, id)
}

// deleteByID 删除并解除商品上的引用
func deleteByID[M catalogModel](db *gorm.DB, id uint, refColumn string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where(refColumn+" = ?", id).Update(refColumn, nil).Error; err != nil {
			return err
		}
		var model M
		res := tx.Delete(&model, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	brands, err := listAll[models.Brand](s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

func (s *Store) SearchBrands(ctx context.Context, name string) ([]models.Brand, error) {
	brands, err := searchByName[models.Brand](s.db.WithContext(ctx), name)
	if err != nil {
		return nil, fmt.Errorf("search brands: %w", err)
	}
	return brands, nil
}

func (s *Store) GetBrand(ctx context.Context, id uint) (*models.Brand, error) {
	brand, err := getByID[models.Brand](s.db.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get brand %d: %w", id, err)
	}
	return brand, nil
}

func (s *Store) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := s.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("create brand: %w", mapErr(err))
	}
	return nil
}

func (s *Store) UpdateBrand(ctx context.Context, id uint, updates map[string]any) (*models.Brand, error) {
	brand, err := updateByID[models.Brand](s.db.WithContext(ctx), id, updates)
	if err != nil {
		return nil, fmt.Errorf("update brand %d: %w", id, err)
	}
	return brand, nil
}

func (s *Store) DeleteBrand(ctx context.Context, id uint) error {
	if err := deleteByID[models.Brand](s.db.WithContext(ctx), id, "brand_id"); err != nil {
		return fmt.Errorf("delete brand %d: %w", id, err)
	}
	return nil
}

func (s *Store) ListTypes(ctx context.Context) ([]models.Type, error) {
	types, err := listAll[models.Type](s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	return types, nil
}

func (s *Store) SearchTypes(ctx context.Context, name string) ([]models.Type, error) {
	types, err := searchByName[models.Type](s.db.WithContext(ctx), name)
	if err != nil {
		return nil, fmt.Errorf("search types: %w", err)
	}
	return types, nil
}

func (s *Store) GetType(ctx context.Context, id uint) (*models.Type, error) {
	t, err := getByID[models.Type](s.db.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get type %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) CreateType(ctx context.Context, t *models.Type) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create type: %w", mapErr(err))
	}
	return nil
}

func (s *Store) UpdateType(ctx context.Context, id uint, updates map[string]any) (*models.Type, error) {
	t, err := updateByID[models.Type](s.db.WithContext(ctx), id, updates)
	if err != nil {
		return nil, fmt.Errorf("update type %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) DeleteType(ctx context.Context, id uint) error {
	if err := deleteByID[models.Type](s.db.WithContext(ctx), id, "type_id"); err != nil {
		return fmt.Errorf("delete type %d: %w", id, err)
	}
	return nil
}
