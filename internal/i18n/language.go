// Package i18n provides per-language string tables for rendered documents.
// A Catalog is a plain value: callers pass it around instead of switching
// any process-wide language setting.
package i18n

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported document language
type Language string

// Supported languages
const (
	English  Language = "en"
	Japanese Language = "ja"
)

// ErrUnsupportedLanguage is returned for tags that match neither English nor Japanese
var ErrUnsupportedLanguage = errors.New("unsupported language")

var (
	supported = []language.Tag{language.English, language.Japanese}
	matcher   = language.NewMatcher(supported)
)

// ParseLanguage accepts BCP 47 tags and Accept-Language style lists.
// An empty string selects English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}

	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return "", ErrUnsupportedLanguage
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", ErrUnsupportedLanguage
	}
	if supported[idx] == language.Japanese {
		return Japanese, nil
	}
	return English, nil
}

// Tag returns the x/text language tag
func (l Language) Tag() language.Tag {
	if l == Japanese {
		return language.Japanese
	}
	return language.English
}

// IsJapanese reports whether l selects Japanese content
func (l Language) IsJapanese() bool {
	return l == Japanese
}
