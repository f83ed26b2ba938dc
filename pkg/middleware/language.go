package middleware

import (
	"context"

	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"
)

// AcceptLanguageKey - ключ metadata с предпочитаемым языком клиента.
// Влияет только на язык человекочитаемых сообщений и логов,
// но не на форму ответов.
const AcceptLanguageKey = "accept-language"

// Поддерживаемые языки сообщений. Русский - язык по умолчанию,
// арабский сохранен за оригинальными текстами LiveOrders.
var supportedLanguages = []language.Tag{
	language.Russian, // по умолчанию
	language.English,
	language.Arabic,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

type languageCtxKey struct{}

// ResolveLanguage подбирает язык сообщений по заголовку accept-language.
// Некорректный или отсутствующий заголовок дает язык по умолчанию.
func ResolveLanguage(md metadata.MD) language.Tag {
	header := ""
	if vals := md.Get(AcceptLanguageKey); len(vals) > 0 {
		header = vals[0]
	}
	if header == "" {
		return supportedLanguages[0]
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return supportedLanguages[0]
	}

	_, idx, _ := languageMatcher.Match(tags...)
	return supportedLanguages[idx]
}

// WithLanguage сохраняет язык вызова в контексте.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageCtxKey{}, tag)
}

// LanguageFromContext извлекает язык вызова из контекста.
// Возвращает язык по умолчанию, если он не был установлен.
func LanguageFromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(languageCtxKey{}).(language.Tag); ok {
		return tag
	}
	return supportedLanguages[0]
}
