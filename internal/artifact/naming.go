package artifact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Studly converts free text to an upper camel case identifier:
// "check user status" -> "CheckUserStatus". Hyphens, underscores and
// whitespace separate words; capitals inside a word are preserved, so
// "userRepository" -> "UserRepository".
func Studly(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})

	var b strings.Builder
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}
	return b.String()
}

// Snake converts an identifier to snake case: "CreateUsersTable" ->
// "create_users_table". Every capital after the first character starts a new
// word, including those in acronyms.
func Snake(s string) string {
	s = Studly(s)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Plural applies the regular English plural rules to the last word of a
// snake case name: "category" -> "categories", "box" -> "boxes",
// "blog_post" -> "blog_posts". Irregular nouns are not handled.
func Plural(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "z"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}

// ModelTable is the conventional table name of an Eloquent model:
// "BlogPost" -> "blog_posts".
func ModelTable(model string) string {
	return Plural(Snake(model))
}
