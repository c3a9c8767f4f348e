package lang

import (
	"regexp"

	"golang.org/x/text/language"
)

// The tables below are data, not logic: the detector iterates them in
// order and never special-cases a language outside of what the tables
// express. Extend or swap them per locale without touching detect.go.

// scriptRule decides a language immediately from unambiguous script
// ranges. Kana is listed before Han because Japanese text mixes both.
type scriptRule struct {
	pattern *regexp.Regexp
	tag     language.Tag
}

var scriptRules = []scriptRule{
	{regexp.MustCompile(`[\p{Hiragana}\p{Katakana}]`), language.Japanese},
	{regexp.MustCompile(`\p{Hangul}`), language.Korean},
	{regexp.MustCompile(`\p{Han}`), language.Chinese},
	{regexp.MustCompile(`\p{Arabic}`), language.Arabic},
}

// markerSet scores a language by counting matches of its stop/marker
// words. Patterns are whole-word and case-insensitive.
type markerSet struct {
	tag      language.Tag
	patterns []*regexp.Regexp
}

func markers(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+w+`\b`))
	}
	return out
}

var lexicalMarkers = []markerSet{
	{language.Spanish, markers("el", "la", "los", "las", "que", "para", "una", "es", "deber[íi]amos", "construir", "negocio")},
	{language.Portuguese, markers("o", "os", "uma", "n[ãa]o", "voc[êe]", "para", "com", "dever[íi]amos", "construir", "neg[óo]cio", "em")},
	{language.French, markers("le", "la", "les", "des", "est", "pour", "nous", "devrions", "construire", "une", "avec")},
	{language.German, markers("der", "die", "das", "und", "ist", "nicht", "wir", "sollten", "ein", "eine", "f[üu]r")},
	{language.Italian, markers("il", "lo", "gli", "che", "per", "una", "dovremmo", "costruire", "con", "non")},
	{language.English, markers("the", "and", "for", "should", "we", "build", "with", "is", "a", "an", "of")},
}

// diacriticTell disambiguates a lexical tie. Checked in order.
type diacriticTell struct {
	pattern *regexp.Regexp
	tag     language.Tag
}

var diacriticTells = []diacriticTell{
	{regexp.MustCompile(`ñ`), language.Spanish},
	{regexp.MustCompile(`[ãõ]`), language.Portuguese},
	{regexp.MustCompile(`[êèëâîôùûœ]`), language.French},
	{regexp.MustCompile(`[äöüß]`), language.German},
}

// geoRule maps lexical cues (place names, currency tells) to a steering
// instruction for prompt construction. Cues are whole-word patterns
// matched against the lowercased idea.
type geoRule struct {
	patterns []*regexp.Regexp
	context  string
}

func geoCues(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`\b`+w+`\b`))
	}
	return out
}

var geoRules = []geoRule{
	{geoCues("lisbon", "lisboa", "porto", "portugal"), "Assume the venture operates in Portugal: EUR pricing, EU consumer law, Portuguese market size."},
	{geoCues("brazil", "brasil", "s[ãa]o paulo", "rio de janeiro", "brl"), "Assume the venture operates in Brazil: BRL pricing, LGPD, Brazilian market dynamics."},
	{geoCues("spain", "madrid", "barcelona", "espa[ñn]a"), "Assume the venture operates in Spain: EUR pricing, EU consumer law, Spanish market size."},
	{geoCues("france", "paris", "lyon"), "Assume the venture operates in France: EUR pricing, EU consumer law, French market size."},
	{geoCues("germany", "berlin", "munich", "m[üu]nchen", "deutschland"), "Assume the venture operates in Germany: EUR pricing, EU consumer law and GDPR scrutiny, German market size."},
	{geoCues("china", "beijing", "shanghai", "shenzhen", "rmb", "yuan", "renminbi"), "Assume the venture operates in mainland China: RMB pricing, PIPL and local licensing, domestic platform ecosystem."},
	{geoCues("dubai", "abu dhabi", "riyadh", "saudi", "qatar", "dirham", "riyal", "uae"), "Assume the venture operates in the Gulf region: local licensing regimes, expat-heavy demographics, GCC payment rails."},
	{geoCues("london", "uk", "united kingdom", "gbp"), "Assume the venture operates in the United Kingdom: GBP pricing, UK GDPR, post-Brexit trade considerations."},
	{geoCues("new york", "california", "san francisco", "austin", "usd"), "Assume the venture operates in the United States: USD pricing, state-level regulation, US market size."},
	{geoCues("india", "mumbai", "bangalore", "bengaluru", "delhi", "rupee", "inr"), "Assume the venture operates in India: INR pricing, price-sensitive demand, UPI payment rails."},
}

// geoLanguageFallback is consulted only when no geographic keyword
// matched at all.
var geoLanguageFallback = map[language.Tag]string{
	language.Portuguese: "No location stated; infer Brazil or Portugal from the Portuguese-language input and say which you assumed.",
	language.Spanish:    "No location stated; infer Spain or Latin America from the Spanish-language input and say which you assumed.",
	language.French:     "No location stated; infer France or francophone markets from the French-language input and say which you assumed.",
	language.German:     "No location stated; infer the DACH region from the German-language input and say which you assumed.",
	language.Chinese:    "No location stated; infer mainland China from the Chinese-language input and say so.",
	language.Arabic:     "No location stated; infer the MENA region from the Arabic-language input and say which market you assumed.",
}
