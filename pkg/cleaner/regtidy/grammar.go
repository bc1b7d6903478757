package regtidy

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jmylchreest/regtidy/pkg/dom"
)

// Kind is the structural role a heuristic assigns to a block.
type Kind int

const (
	KindNone Kind = iota
	KindArticleTitle
	KindProvisionalArticle
	KindChapterTitle
	KindAppendix
	KindSectionTitle
	KindSubchapterTitle
	KindDocTitle
	KindSigningDate
	KindOnBehalfOf
	KindSignatory
)

var kindNames = map[Kind]string{
	KindNone:               "none",
	KindArticleTitle:       "article-title",
	KindProvisionalArticle: "provisional-article",
	KindChapterTitle:       "chapter-title",
	KindAppendix:           "appendix",
	KindSectionTitle:       "section-title",
	KindSubchapterTitle:    "subchapter-title",
	KindDocTitle:           "doc-title",
	KindSigningDate:        "signing-date",
	KindOnBehalfOf:         "on-behalf-of",
	KindSignatory:          "signatory",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Classes returns the semantic classes an element of this kind carries.
func (k Kind) Classes() []string {
	switch k {
	case KindArticleTitle:
		return []string{dom.ClassArticleTitle}
	case KindProvisionalArticle:
		return []string{dom.ClassArticleTitle, dom.ClassArticleTitleProvisional}
	case KindChapterTitle:
		return []string{dom.ClassChapterTitle}
	case KindAppendix:
		return []string{dom.ClassChapterTitle, dom.ClassChapterTitleAppendix}
	case KindSectionTitle:
		return []string{dom.ClassSectionTitle}
	case KindSubchapterTitle:
		return []string{dom.ClassSubchapterTitle}
	case KindDocTitle:
		return []string{dom.ClassDocTitle}
	case KindSigningDate:
		return []string{dom.ClassSigningDate}
	case KindOnBehalfOf:
		return []string{dom.ClassOnBehalfOf}
	case KindSignatory:
		return []string{dom.ClassSignatory}
	}
	return nil
}

// NameClass returns the class of the name sub-element, or "" when the
// kind has no name.
func (k Kind) NameClass() string {
	switch k {
	case KindArticleTitle, KindProvisionalArticle:
		return dom.ClassArticleName
	case KindChapterTitle, KindAppendix:
		return dom.ClassChapterName
	case KindSubchapterTitle:
		return dom.ClassSubchapterName
	}
	return ""
}

// HeadingTag returns the element a title of this kind is rendered as, or
// "" when it stays a paragraph.
func (k Kind) HeadingTag() string {
	switch k {
	case KindChapterTitle, KindAppendix, KindSectionTitle, KindSubchapterTitle:
		return "h2"
	case KindArticleTitle, KindProvisionalArticle:
		return "h3"
	}
	return ""
}

// Classification is the verdict of a detector.
type Classification struct {
	Kind  Kind
	Title string
	Name  string
}

// Title grammars.
var (
	ArticleTitleRe    = regexp.MustCompile(`^(\d+(?:\.\d+)*[a-e]?)\.\s*gr\.?$`)
	ProvisionalRe     = regexp.MustCompile(`(?i)^ákvæði\s+til\s+bráðabirgða\.?$`)
	ChapterRomanRe    = regexp.MustCompile(`^([IVX]+)\.(?:\s*(?i:kafli)\.?)?$`)
	ChapterDecimalRe  = regexp.MustCompile(`(?i)^(\d+)\.\s*kafli\.?$`)
	AppendixRe        = regexp.MustCompile(`(?i)^viðauki\b`)
	SectionTitleRe    = regexp.MustCompile(`(?i)^(\d+|[IVX]+)\.\s*(?:hluti|þáttur)\.?$`)
	SubchapterTitleRe = regexp.MustCompile(`^([A-ZÁÐÉÍÓÚÝÞÆÖ])\.(?:\s+(.+))?$`)
	DocTitleRe        = regexp.MustCompile(`^(?:REGLUGERÐ|AUGLÝSING|REGLUR|GJALDSKRÁ|SAMÞYKKT|LÖG|SKIPULAGSSKRÁ)(?:\s|$)`)
	NameSeparatorRe   = regexp.MustCompile(`\s+[–—-]\s+`)
)

// chapterRomanBounds is the closed set of Roman chapter numbers.
var chapterRomanBounds = map[string]bool{
	"I": true, "II": true, "III": true, "IV": true, "V": true,
	"VI": true, "VII": true, "VIII": true, "IX": true, "X": true,
	"XI": true, "XII": true, "XIII": true, "XIV": true,
}

// Signature grammars.
var (
	SigningDateRe = regexp.MustCompile(`(?i)^(.{0,120}?uneyti(?:nu|ð)?),\s*(?:þann\s+)?(\d{1,2})\.\s*(\p{L}+)\s+(\d{4})\s*[,.]?$`)
	OnBehalfOfRe  = regexp.MustCompile(`(?i)^(?:f\.\s*h\.\s*r\.?|f\.\s*h\.\s+\p{L}*ráðherra\.?)$`)
)

var icelandicMonths = map[string]bool{
	"janúar": true, "febrúar": true, "mars": true, "apríl": true,
	"maí": true, "júní": true, "júlí": true, "ágúst": true,
	"september": true, "október": true, "nóvember": true, "desember": true,
}

// DetectArticleTitle matches "N. gr." titles and the provisional-article
// phrase.
func DetectArticleTitle(text string) (Classification, bool) {
	text = normalizeLine(text)
	switch {
	case ArticleTitleRe.MatchString(text):
		return Classification{Kind: KindArticleTitle, Title: text}, true
	case ProvisionalRe.MatchString(text):
		return Classification{Kind: KindProvisionalArticle, Title: text}, true
	}
	return Classification{}, false
}

// DetectChapterTitle matches Roman-numbered chapters I to XIV and
// "N. kafli".
func DetectChapterTitle(text string) (Classification, bool) {
	text = normalizeLine(text)
	if m := ChapterRomanRe.FindStringSubmatch(text); m != nil {
		if !chapterRomanBounds[m[1]] {
			return Classification{}, false
		}
		return Classification{Kind: KindChapterTitle, Title: text}, true
	}
	if ChapterDecimalRe.MatchString(text) {
		return Classification{Kind: KindChapterTitle, Title: text}, true
	}
	return Classification{}, false
}

// DetectAppendix matches appendix chapter titles.
func DetectAppendix(text string) (Classification, bool) {
	text = normalizeLine(text)
	if AppendixRe.MatchString(text) {
		return Classification{Kind: KindAppendix, Title: text}, true
	}
	return Classification{}, false
}

// DetectSectionTitle matches "N. hluti" and "N. þáttur".
func DetectSectionTitle(text string) (Classification, bool) {
	text = normalizeLine(text)
	if SectionTitleRe.MatchString(text) {
		return Classification{Kind: KindSectionTitle, Title: text}, true
	}
	return Classification{}, false
}

// DetectSubchapterTitle matches "A." optionally followed by a name on the
// same line.
func DetectSubchapterTitle(text string) (Classification, bool) {
	text = normalizeLine(text)
	m := SubchapterTitleRe.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	return Classification{Kind: KindSubchapterTitle, Title: m[1] + ".", Name: m[2]}, true
}

// DetectDocTitle matches the first line of a regulation's own title.
func DetectDocTitle(text string) (Classification, bool) {
	text = normalizeLine(text)
	if DocTitleRe.MatchString(text) {
		return Classification{Kind: KindDocTitle, Title: text}, true
	}
	return Classification{}, false
}

// DetectSigningDate matches "<ministry>uneytinu, <day>. <month> <year>."
// The match is retracted unless the month is a real month name and the
// year falls within [minYear, maxYear].
func DetectSigningDate(text string, minYear, maxYear int) (Classification, bool) {
	text = normalizeLine(text)
	m := SigningDateRe.FindStringSubmatch(text)
	if m == nil {
		return Classification{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[4])
	if day < 1 || day > 31 || !icelandicMonths[strings.ToLower(m[3])] {
		return Classification{}, false
	}
	if year < minYear || year > maxYear {
		return Classification{}, false
	}
	return Classification{Kind: KindSigningDate, Title: text}, true
}

// DetectOnBehalfOf matches "f.h.r." and "f.h. <minister>ráðherra".
func DetectOnBehalfOf(text string) (Classification, bool) {
	text = normalizeLine(text)
	if OnBehalfOfRe.MatchString(text) {
		return Classification{Kind: KindOnBehalfOf, Title: text}, true
	}
	return Classification{}, false
}

// DetectSignatory accepts a short line that reads like a person's name.
func DetectSignatory(text string, maxLen int) (Classification, bool) {
	text = normalizeLine(text)
	n := len([]rune(text))
	if n == 0 || n >= maxLen {
		return Classification{}, false
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			return Classification{}, false
		}
	}
	first := []rune(text)[0]
	if !unicode.IsUpper(first) {
		return Classification{}, false
	}
	if matchesTitleGrammar(text) {
		return Classification{}, false
	}
	return Classification{Kind: KindSignatory, Title: text}, true
}

// matchesTitleGrammar reports whether text is any kind of structural
// title.
func matchesTitleGrammar(text string) bool {
	for _, detect := range []func(string) (Classification, bool){
		DetectArticleTitle, DetectChapterTitle, DetectAppendix,
		DetectSectionTitle, DetectSubchapterTitle,
	} {
		if _, ok := detect(text); ok {
			return true
		}
	}
	return false
}

// SplitName splits "TITLE – NAME" at the first dash separator.
func SplitName(text string) (title, name string, ok bool) {
	loc := NameSeparatorRe.FindStringIndex(text)
	if loc == nil {
		return text, "", false
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:]), true
}

func normalizeLine(s string) string {
	return strings.TrimSpace(collapseSpaces(s))
}

// Marker grammars for list items.
var (
	ComplexMarkerRe = regexp.MustCompile(`^\d+(?:\.\d+)+\.?\s+`)
	BulletMarkerRe  = regexp.MustCompile(`^[-–—•·*▪◦]\s+`)
	DecimalMarkerRe = regexp.MustCompile(`^(?:\((\d+)\)|(\d+)[.)])\s+`)
	AlphaMarkerRe   = regexp.MustCompile(`^(?:\(([a-zA-Z])\)|([a-zA-Z])[.)])\s+`)
	RomanMarkerRe   = regexp.MustCompile(`^(?:\(([ivxlcdmIVXLCDM]+)\)|([ivxlcdmIVXLCDM]+)[.)])\s+`)
	BareMarkerRe    = regexp.MustCompile(`^(?:\(?[0-9a-zA-Z]+[.)]|[-–—•·*▪◦])$`)
	romanValidRe    = regexp.MustCompile(`^M{0,3}(?:CM|CD|D?C{0,3})(?:XC|XL|L?X{0,3})(?:IX|IV|V?I{0,3})$`)
)

// MarkerKind is the numbering style of a list item marker.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerBullet
	MarkerDecimal
	MarkerLowerAlpha
	MarkerUpperAlpha
	MarkerLowerRoman
	MarkerUpperRoman
	// MarkerComplex is multi-level numbering such as "1.2.3". It forbids
	// list reconstruction.
	MarkerComplex
)

// Marker is a parsed list item marker.
type Marker struct {
	Kind  MarkerKind
	Value string
	// Len is the byte length of the marker including trailing space.
	Len int
}

// Ordinal returns the position the marker denotes, starting at 1. Bullets
// have no ordinal.
func (m Marker) Ordinal() int {
	switch m.Kind {
	case MarkerDecimal:
		n, _ := strconv.Atoi(m.Value)
		return n
	case MarkerLowerAlpha, MarkerUpperAlpha:
		return int(unicode.ToLower(rune(m.Value[0]))-'a') + 1
	case MarkerLowerRoman, MarkerUpperRoman:
		return RomanValue(m.Value)
	}
	return 0
}

// ListTag returns the list element for the marker kind.
func (k MarkerKind) ListTag() string {
	if k == MarkerBullet {
		return "ul"
	}
	return "ol"
}

// ListType returns the type attribute for the marker kind. Decimal is the
// default and has none.
func (k MarkerKind) ListType() string {
	switch k {
	case MarkerLowerAlpha:
		return "a"
	case MarkerUpperAlpha:
		return "A"
	case MarkerLowerRoman:
		return "i"
	case MarkerUpperRoman:
		return "I"
	}
	return ""
}

// InferMarker detects the marker of a first list item. A lone "i" or "I"
// starts a Roman list; other single letters start alphabetic ones.
func InferMarker(text string) (Marker, bool) {
	if loc := ComplexMarkerRe.FindStringIndex(text); loc != nil {
		return Marker{Kind: MarkerComplex, Value: strings.TrimSpace(text[:loc[1]]), Len: loc[1]}, true
	}
	if loc := BulletMarkerRe.FindStringIndex(text); loc != nil {
		return Marker{Kind: MarkerBullet, Value: strings.TrimSpace(text[:loc[1]]), Len: loc[1]}, true
	}
	if m, ok := matchMarker(DecimalMarkerRe, text, MarkerDecimal); ok {
		return m, true
	}
	if m, ok := matchMarker(RomanMarkerRe, text, MarkerLowerRoman); ok {
		if len(m.Value) > 1 || m.Value == "i" || m.Value == "I" {
			return romanCase(m), true
		}
	}
	if m, ok := matchMarker(AlphaMarkerRe, text, MarkerLowerAlpha); ok {
		return alphaCase(m), true
	}
	return Marker{}, false
}

// ParseMarker parses the marker of a subsequent item, which must be of
// the given kind.
func ParseMarker(text string, kind MarkerKind) (Marker, bool) {
	switch kind {
	case MarkerBullet:
		if loc := BulletMarkerRe.FindStringIndex(text); loc != nil {
			return Marker{Kind: MarkerBullet, Value: strings.TrimSpace(text[:loc[1]]), Len: loc[1]}, true
		}
	case MarkerDecimal:
		if ComplexMarkerRe.MatchString(text) {
			return Marker{}, false
		}
		return matchMarker(DecimalMarkerRe, text, MarkerDecimal)
	case MarkerLowerAlpha, MarkerUpperAlpha:
		if m, ok := matchMarker(AlphaMarkerRe, text, kind); ok {
			if m = alphaCase(m); m.Kind == kind {
				return m, true
			}
		}
	case MarkerLowerRoman, MarkerUpperRoman:
		if m, ok := matchMarker(RomanMarkerRe, text, kind); ok {
			if m = romanCase(m); m.Kind == kind {
				return m, true
			}
		}
	}
	return Marker{}, false
}

func matchMarker(re *regexp.Regexp, text string, kind MarkerKind) (Marker, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Marker{}, false
	}
	value := m[1]
	if value == "" {
		value = m[2]
	}
	return Marker{Kind: kind, Value: value, Len: len(m[0])}, true
}

func alphaCase(m Marker) Marker {
	m.Kind = MarkerLowerAlpha
	if unicode.IsUpper(rune(m.Value[0])) {
		m.Kind = MarkerUpperAlpha
	}
	return m
}

func romanCase(m Marker) Marker {
	switch {
	case m.Value == strings.ToLower(m.Value):
		m.Kind = MarkerLowerRoman
	case m.Value == strings.ToUpper(m.Value):
		m.Kind = MarkerUpperRoman
	default:
		m.Kind = MarkerNone
	}
	if RomanValue(m.Value) == 0 {
		m.Kind = MarkerNone
	}
	return m
}

// RomanValue converts a Roman numeral, returning 0 when it is invalid.
func RomanValue(s string) int {
	s = strings.ToUpper(s)
	if s == "" || !romanValidRe.MatchString(s) {
		return 0
	}
	values := map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total := 0
	for i := 0; i < len(s); i++ {
		v := values[s[i]]
		if i+1 < len(s) && values[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total
}

// IsBareMarker reports whether text is nothing but a list marker, as in
// the marker column of a list-layout table.
func IsBareMarker(text string) bool {
	return BareMarkerRe.MatchString(normalizeLine(text))
}
