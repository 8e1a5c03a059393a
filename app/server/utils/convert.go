package utils

import (
	"errors"
	"strconv"
)

var ErrInvalidID = errors.New("invalid id")

// ParseID 解析路径中的数字 ID
func ParseID(s string) (uint, error) {
	idUint64, err := strconv.ParseUint(s, 10, 64)
	if err != nil || idUint64 == 0 {
		return 0, ErrInvalidID
	}
	return uint(idUint64), nil
}
