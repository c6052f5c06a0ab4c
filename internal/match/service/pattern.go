package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"listing-matcher/internal/match/model"
)

// UnitKind tags one element of a compiled model pattern.
type UnitKind int

const (
	UnitLiteral   UnitKind = iota // обязательный текст
	UnitOptional                  // текст или ничего (префикс производителя, семейство)
	UnitSeparator                 // ноль или больше пробелов/знаков препинания
	UnitBoundary                  // граница слова
	UnitDelimiter                 // ровно один пробел/знак препинания
)

func (k UnitKind) String() string {
	switch k {
	case UnitLiteral:
		return "literal"
	case UnitOptional:
		return "optional"
	case UnitSeparator:
		return "separator"
	case UnitBoundary:
		return "boundary"
	case UnitDelimiter:
		return "delimiter"
	default:
		return "?"
	}
}

type Unit struct {
	Kind  UnitKind
	Text  string // исходный текст для literal/optional
	Units []Unit // содержимое optional
}

// Token is a separately searchable piece of the model (or a family word).
type Token struct {
	Text     string
	Required bool
	pattern  *Pattern
}

// Pattern — скомпилированный шаблон модели. Сначала строится как список единиц,
// затем переводится в regexp; каждая необязательная единица получает свою
// именованную группу, чтобы при проверке было видно, участвовала ли она.
type Pattern struct {
	Units      []Unit
	Tokens     []Token // пусто, если модель не делится на токены
	BareNumber bool    // модель — число до трёх цифр и семейства нет
	HasFamily  bool

	re       *regexp.Regexp
	body     int   // подгруппа, задающая границы совпадения
	optional []int // подгруппы необязательных единиц
}

// Классы символов. Буквы и цифры — "слово", всё остальное — разделитель.
// \b в RE2 работает только с ASCII, поэтому границы собираются вручную.
const (
	reWord    = `[\p{L}\p{Nd}]`
	reNonWord = `[^\p{L}\p{Nd}]`
	reSep     = reNonWord + `*`
	// перед шаблоном: начало строки или не-буква
	reLead = `(?:^|` + reNonWord + `)`
	// после шаблона: граница слова, допускается до трёх не-цифр перед ней
	// ("w300b" для чёрного корпуса), но не "300digital"
	reTail = `(?:$|` + reNonWord + `|\P{Nd}{0,2}(?:\p{L}(?:$|` + reNonWord + `)|` + reNonWord + reWord + `))`

	bodyGroup = "m"
)

// CompileModel строит шаблон для товара. affixes — необязательные сегменты
// производителя (может быть nil).
func CompileModel(modelStr, family string, affixes AffixSet) (*Pattern, error) {
	modelStr = strings.TrimSpace(modelStr)
	family = strings.TrimSpace(family)
	if modelStr == "" {
		return nil, model.ErrEmptyModel
	}

	body, err := modelUnits(modelStr, affixes)
	if err != nil {
		return nil, err
	}

	units := []Unit{{Kind: UnitBoundary}}
	if fam := literalUnits(family); len(fam) > 0 {
		// "cyber-shot" и "cybershot" оба подходят: дефис — гибкий разделитель.
		// После семейства нужен один разделитель: "ixus100" семейством не считается.
		fam = append(fam, Unit{Kind: UnitDelimiter})
		units = append(units, Unit{Kind: UnitOptional, Text: family, Units: fam})
	}
	units = append(units, body...)
	units = append(units, Unit{Kind: UnitBoundary})

	p := &Pattern{
		Units:      units,
		BareNumber: isShortNumber(modelStr) && family == "",
		HasFamily:  family != "",
	}
	if err := p.compile(); err != nil {
		return nil, err
	}

	p.Tokens, err = tokenize(modelStr, family, affixes)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// modelUnits: модель без семейства, с необязательным префиксом/суффиксом
// производителя по краям.
func modelUnits(modelStr string, affixes AffixSet) ([]Unit, error) {
	segs := splitSegments(modelStr)
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: %q", model.ErrEmptyModel, modelStr)
	}

	core := strings.TrimFunc(modelStr, isSegmentBreak)
	var (
		prefix, suffix         []Unit
		prefixText, suffixText string
	)

	// аффикс не снимается, если от модели ничего не останется
	if len(segs) > 1 && affixes.Has(segs[0]) {
		if lu := literalUnits(segs[0]); len(lu) > 0 {
			prefix = append(lu, Unit{Kind: UnitSeparator})
			prefixText = segs[0]
			core = strings.TrimLeftFunc(strings.TrimPrefix(core, segs[0]), isSegmentBreak)
			segs = segs[1:]
		}
	}
	if last := segs[len(segs)-1]; len(segs) > 1 && affixes.Has(last) {
		if lu := literalUnits(last); len(lu) > 0 {
			suffix = append([]Unit{{Kind: UnitSeparator}}, lu...)
			suffixText = last
			core = strings.TrimRightFunc(strings.TrimSuffix(core, last), isSegmentBreak)
		}
	}

	coreUnits := literalUnits(core)
	if len(coreUnits) == 0 {
		return nil, fmt.Errorf("%w: %q has no letters or digits", model.ErrEmptyModel, modelStr)
	}

	var out []Unit
	if prefix != nil {
		out = append(out, Unit{Kind: UnitOptional, Text: prefixText, Units: prefix})
	}
	out = append(out, coreUnits...)
	if suffix != nil {
		out = append(out, Unit{Kind: UnitOptional, Text: suffixText, Units: suffix})
	}
	return out, nil
}

func isSegmentBreak(r rune) bool { return r == '-' || unicode.IsSpace(r) }

// literalUnits разбивает строку на буквенные и цифровые куски. Любая
// пунктуация или пробел становится гибким разделителем; переход буква↔цифра
// тоже получает разделитель, даже если в исходной строке его не было
// ("a1" находит и "a 1", и "a-1"). Разделители по краям отбрасываются.
func literalUnits(s string) []Unit {
	const (
		clsNone = iota
		clsLetter
		clsDigit
		clsSep
	)
	var (
		units []Unit
		buf   strings.Builder
		prev  = clsNone
	)
	flush := func() {
		if buf.Len() > 0 {
			units = append(units, Unit{Kind: UnitLiteral, Text: buf.String()})
			buf.Reset()
		}
	}
	sep := func() {
		flush()
		if len(units) > 0 && units[len(units)-1].Kind != UnitSeparator {
			units = append(units, Unit{Kind: UnitSeparator})
		}
	}

	for _, r := range s {
		var cls int
		switch {
		case unicode.IsDigit(r):
			cls = clsDigit
		case unicode.IsLetter(r):
			cls = clsLetter
		default:
			cls = clsSep
		}
		switch {
		case cls == clsSep:
			sep()
		case (prev == clsLetter || prev == clsDigit) && cls != prev:
			sep()
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
		prev = cls
	}
	flush()

	if n := len(units); n > 0 && units[n-1].Kind == UnitSeparator {
		units = units[:n-1]
	}
	return units
}

// tokenize: токены модели (и слова семейства) для поиска по отдельности.
func tokenize(modelStr, family string, affixes AffixSet) ([]Token, error) {
	words := splitTokens(modelStr)
	// Если деление по дефису дало числа или совсем короткие куски ("a-200"),
	// искать "a" и "200" отдельно бессмысленно: делим только по пробелам.
	for _, w := range words {
		if utf8.RuneCountInString(w) < 3 || isShortNumber(w) {
			words = strings.Fields(modelStr)
			break
		}
	}

	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}
	famWords := make([]string, 0)
	famSet := make(map[string]bool)
	for _, w := range strings.Fields(family) {
		famSet[w] = true
		if !seen[w] {
			famWords = append(famWords, w)
			seen[w] = true
		}
	}

	if len(words)+len(famWords) < 2 {
		return nil, nil
	}

	// в модели без цифр нет числового якоря, и словам нельзя быть необязательными
	numeric := hasDigit(modelStr)

	tokens := make([]Token, 0, len(words)+len(famWords))
	add := func(text string, required bool) error {
		lu := literalUnits(text)
		if len(lu) == 0 {
			return nil
		}
		units := append([]Unit{{Kind: UnitBoundary}}, lu...)
		units = append(units, Unit{Kind: UnitBoundary})
		p := &Pattern{Units: units}
		if err := p.compile(); err != nil {
			return err
		}
		tokens = append(tokens, Token{Text: text, Required: required, pattern: p})
		return nil
	}

	for _, w := range words {
		required := true
		if numeric && (affixes.Has(w) || famSet[w] || isWordLike(w)) {
			required = false
		}
		if err := add(w, required); err != nil {
			return nil, err
		}
	}
	for _, w := range famWords {
		if err := add(w, false); err != nil {
			return nil, err
		}
	}

	if len(tokens) < 2 {
		return nil, nil
	}
	return tokens, nil
}

// compile переводит список единиц в regexp.
func (p *Pattern) compile() error {
	var (
		b     strings.Builder
		names []string
	)
	var write func(units []Unit, top bool)
	write = func(units []Unit, top bool) {
		for i, u := range units {
			switch u.Kind {
			case UnitLiteral:
				b.WriteString(regexp.QuoteMeta(u.Text))
			case UnitSeparator:
				b.WriteString(reSep)
			case UnitDelimiter:
				b.WriteString(reNonWord)
			case UnitOptional:
				name := fmt.Sprintf("o%d", len(names)+1)
				names = append(names, name)
				b.WriteString("(?P<" + name + ">")
				write(u.Units, false)
				b.WriteString(")?")
			case UnitBoundary:
				switch {
				case top && i == 0:
					b.WriteString(reLead + "(?P<" + bodyGroup + ">")
				case top && i == len(units)-1:
					b.WriteString(")" + reTail)
				}
			}
		}
	}
	write(p.Units, true)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", b.String(), err)
	}
	p.re = re
	p.body = re.SubexpIndex(bodyGroup)
	if p.body < 0 {
		return fmt.Errorf("pattern %q: missing boundaries", b.String())
	}
	p.optional = p.optional[:0]
	for _, n := range names {
		p.optional = append(p.optional, re.SubexpIndex(n))
	}
	return nil
}

// span — найденный фрагмент нормализованного заголовка.
type span struct {
	start, end  int
	optionalHit bool // хотя бы одна необязательная единица что-то совпала
}

func (s span) text(title string) string { return title[s.start:s.end] }

// find возвращает самое левое совпадение.
func (p *Pattern) find(title string) (span, bool) {
	loc := p.re.FindStringSubmatchIndex(title)
	if loc == nil {
		return span{}, false
	}
	sp := span{start: loc[2*p.body], end: loc[2*p.body+1]}
	for _, g := range p.optional {
		if loc[2*g] >= 0 && loc[2*g+1] > loc[2*g] {
			sp.optionalHit = true
			break
		}
	}
	return sp, true
}

// Regexp returns the lowered regular expression.
func (p *Pattern) Regexp() string { return p.re.String() }
