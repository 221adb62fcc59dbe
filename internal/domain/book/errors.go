package book

import (
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrInvalidFormat 未知的版本格式
	ErrInvalidFormat = apperrors.New(apperrors.ErrCodeInvalidParams, "格式必须是PAPER、PDF、DOC或TXT")

	// ErrInvalidLanguage 未知的语言
	ErrInvalidLanguage = apperrors.New(apperrors.ErrCodeInvalidParams, "语言必须是CZ、EN、FR、JP或SK")
)
