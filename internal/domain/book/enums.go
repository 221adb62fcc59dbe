package book

import (
	"github.com/goccy/go-json"
)

// Format 版本格式
type Format string

const (
	FormatPaper Format = "PAPER"
	FormatPDF   Format = "PDF"
	FormatDOC   Format = "DOC"
	FormatTXT   Format = "TXT"
)

// Formats 全部格式（用于文档和校验）
var Formats = []Format{FormatPaper, FormatPDF, FormatDOC, FormatTXT}

// ParseFormat 解析格式，未知值返回ErrInvalidFormat
func ParseFormat(value string) (Format, error) {
	for _, f := range Formats {
		if string(f) == value {
			return f, nil
		}
	}
	return "", ErrInvalidFormat
}

// UnmarshalJSON 拒绝未知格式
func (f *Format) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseFormat(value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Language 版本语言
type Language string

const (
	LanguageCZ Language = "CZ"
	LanguageEN Language = "EN"
	LanguageFR Language = "FR"
	LanguageJP Language = "JP"
	LanguageSK Language = "SK"
)

// Languages 全部语言
var Languages = []Language{LanguageCZ, LanguageEN, LanguageFR, LanguageJP, LanguageSK}

// ParseLanguage 解析语言，未知值返回ErrInvalidLanguage
func ParseLanguage(value string) (Language, error) {
	for _, l := range Languages {
		if string(l) == value {
			return l, nil
		}
	}
	return "", ErrInvalidLanguage
}

// UnmarshalJSON 拒绝未知语言
func (l *Language) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseLanguage(value)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
