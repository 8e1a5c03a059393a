// Package store is the data access layer. Every method returns plain errors;
// missing rows surface as ErrNotFound and unique violations as ErrDuplicate.
package store

import (
	"errors"
	"fmt"
	"gorm.io/gorm"
	"strings"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrBadRef    = errors.New("referenced record does not exist")
	ErrOwnerGone = errors.New("owning user does not exist")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// mapErr 把 gorm / 驱动错误转换为包内的哨兵错误
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrBadRef, err)
	default:
		return err
	}
}

// 部分 sqlite 驱动版本不会翻译唯一约束错误
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// likePattern 构造大小写不敏感的子串匹配参数
func likePattern(q string) string {
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(q))
	return "%" + q + "%"
}

// 方法不能有类型形参，所以这里用函数
func checkIDs[M any](db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	uniq := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		uniq[id] = struct{}{}
	}
	var (
		count int64
		model M
	)
	if err := db.Model(&model).Where("id IN ?", ids).Count(&count).Error; err != nil {
		// 查询失败
		return fmt.Errorf("count: %w", err)
	} else if int(count) != len(uniq) {
		// 数量对不上
		return ErrBadRef
	}

	return nil
}
