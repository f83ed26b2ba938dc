package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"
)

// TestResolveLanguage тестирует подбор языка по заголовку accept-language.
func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   language.Tag
	}{
		{"арабский", "ar", language.Arabic},
		{"английский с регионом", "en-US", language.English},
		{"русский", "ru-RU", language.Russian},
		{"список с весами", "ar-EG;q=0.9, en;q=0.5", language.Arabic},
		{"неподдерживаемый язык", "ja", language.Russian},
		{"мусор в заголовке", ";;;", language.Russian},
		{"пустой заголовок", "", language.Russian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var md metadata.MD
			if tt.header != "" {
				md = metadata.Pairs(AcceptLanguageKey, tt.header)
			}

			assert.Equal(t, tt.want, ResolveLanguage(md))
		})
	}
}

// TestLanguageFromContext тестирует сохранение языка в контексте
// и язык по умолчанию.
func TestLanguageFromContext(t *testing.T) {
	assert.Equal(t, language.Russian, LanguageFromContext(context.Background()))

	ctx := WithLanguage(context.Background(), language.Arabic)
	assert.Equal(t, language.Arabic, LanguageFromContext(ctx))
}
