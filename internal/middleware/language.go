package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// LanguageContextKey is the key for storing language in context
	LanguageContextKey = "language"
	// DefaultLanguage is the default language
	DefaultLanguage = "en"
)

// Language resolves the caller's language from ?language_code, then
// Accept-Language, against the supported set, and stores the base code.
func Language(supported ...string) gin.HandlerFunc {
	if len(supported) == 0 {
		supported = []string{DefaultLanguage}
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		lang := MatchLanguage(matcher, c.Query("language_code"), c.GetHeader("Accept-Language"))
		c.Set(LanguageContextKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// MatchLanguage returns the base language code of the best supported match.
func MatchLanguage(matcher language.Matcher, preferences ...string) string {
	var wanted []language.Tag
	for _, p := range preferences {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, parsed...)
	}
	if len(wanted) == 0 {
		return DefaultLanguage
	}
	tag, _, _ := matcher.Match(wanted...)
	base, _ := tag.Base()
	return base.String()
}

// GetLanguage returns the language set by Language, or the default.
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString(LanguageContextKey); lang != "" {
		return lang
	}
	return DefaultLanguage
}
