package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Сколько символов заголовка участвует в поиске модели. Если номер модели
// встречается дальше, это скорее аксессуар к ней, а не сам товар.
const titleWindow = 50

// Содержимое скобок игнорируем (цвет, комплектация и т.п.).
var reParens = regexp.MustCompile(`\(.*?\)`)

// Всё, что идёт после "for"/"pour"/"für", описывает совместимость, а не товар.
// Граница слова задаётся явно: \b в RE2 знает только ASCII.
var reBreakWord = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(for|pour|für)(?:$|[^\p{L}\p{N}_])`)

var reShortNumber = regexp.MustCompile(`^\s*\p{Nd}{1,3}\s*$`)

// === NormalizeTitle — главный конвейер ===
//
// Результат чистый и идемпотентный: повторная нормализация ничего не меняет.
func NormalizeTitle(title string) string {
	// 1) Регистр
	out := lower(title)

	// 2) Скобки заменяем пробелами той же длины, чтобы не сдвигать окно в 50 символов
	out = reParens.ReplaceAllStringFunc(out, func(m string) string {
		return strings.Repeat(" ", utf8.RuneCountInString(m))
	})

	// 3) Обрезаем на первом стоп-слове (само слово тоже отбрасываем)
	out = cutAtBreakWord(out)

	// 4) Окно в 50 символов. Окно может оставить от слова голое "for"
	// ("... format" → "... for"), поэтому режем ещё раз.
	return cutAtBreakWord(truncateRunes(out, titleWindow))
}

// ===== helpers =====

// lower: нижний регистр с учётом Unicode. Caser не потокобезопасен, поэтому
// создаётся на каждый вызов.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// fold: каноническая форма имени производителя для сравнения без учёта регистра.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func cutAtBreakWord(s string) string {
	if loc := reBreakWord.FindStringSubmatchIndex(s); loc != nil {
		return s[:loc[2]]
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// isSeparatorRune: пунктуация и пробелы, то есть всё, что не буква и не цифра.
func isSeparatorRune(r rune) bool { return !isWordRune(r) }

func isShortNumber(s string) bool { return reShortNumber.MatchString(s) }

func hasDigit(s string) bool { return strings.IndexFunc(s, unicode.IsDigit) >= 0 }

// isWordLike: только буквы, не короче трёх.
func isWordLike(s string) bool {
	if utf8.RuneCountInString(s) < 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// splitSegments режет модель по дефисам и пробелам.
func splitSegments(s string) []string {
	return strings.FieldsFunc(s, isSegmentBreak)
}

// splitTokens режет модель по дефисам, подчёркиваниям и пробелам.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || unicode.IsSpace(r) })
}
