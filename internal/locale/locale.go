// Package locale resolves the caller supplied language tag to one of the
// languages the match copy is written in.
package locale

import (
	"golang.org/x/text/language"
)

type Language string

const (
	English Language = "en"
	Greek   Language = "el"
)

var (
	supported = []language.Tag{language.English, language.Greek}
	matcher   = language.NewMatcher(supported)
)

// Resolve maps a BCP 47 tag (or an Accept-Language style list) to a supported
// language. Anything that is not confidently Greek is English.
func Resolve(tag string) Language {
	if tag == "" {
		return English
	}

	_, idx, confidence := matcher.Match(parseTags(tag)...)
	if confidence == language.No {
		return English
	}
	if supported[idx] == language.Greek {
		return Greek
	}
	return English
}

func parseTags(raw string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return []language.Tag{language.Und}
	}
	return tags
}

// Name is the English name of the language, used inside model instructions.
func (l Language) Name() string {
	if l == Greek {
		return "Greek"
	}
	return "English"
}

func (l Language) String() string { return string(l) }
