package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启TranslateError时（如sqlmock测试）按错误信息判断
	return strings.Contains(err.Error(), "Duplicate entry")
}

// collectIDs 提取非零ID
func collectIDs[T any](data []T, id func(T) uint) []uint {
	ids := make([]uint, 0, len(data))
	for _, d := range data {
		if v := id(d); v != 0 {
			ids = append(ids, v)
		}
	}
	return ids
}
