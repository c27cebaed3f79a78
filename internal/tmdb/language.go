package tmdb

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

type languageKey struct{}

// WithLanguage scopes the TMDB "language" parameter to ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, strings.TrimSpace(lang))
}

func LanguageFrom(ctx context.Context, fallback string) string {
	if lang, ok := ctx.Value(languageKey{}).(string); ok && lang != "" {
		return lang
	}
	return fallback
}

// SupportedLanguages are the TMDB locales offered to clients. The first entry
// is the fallback when nothing in Accept-Language matches.
var SupportedLanguages = []string{
	"en-US", "ar-SA", "de-DE", "es-ES", "fr-FR", "it-IT", "ja-JP", "ko-KR", "pt-BR", "ru-RU", "tr-TR", "zh-CN",
}

var languageMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, l := range SupportedLanguages {
		tags = append(tags, language.MustParse(l))
	}
	return language.NewMatcher(tags)
}()

// MatchLanguage maps an Accept-Language header onto SupportedLanguages.
func MatchLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return SupportedLanguages[0]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return SupportedLanguages[0]
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return SupportedLanguages[0]
	}
	return SupportedLanguages[idx]
}
