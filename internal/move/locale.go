package move

import (
	"golang.org/x/text/language"
)

// Locale selects the language used for labels, banners and commentary.
type Locale string

const (
	TraditionalChinese Locale = "zh-TW"
	English            Locale = "en"
)

// DefaultLocale is used when nothing else matches.
const DefaultLocale = TraditionalChinese

var (
	supportedTags = []language.Tag{
		language.MustParse(string(TraditionalChinese)),
		language.English,
	}
	supportedLocales = []Locale{TraditionalChinese, English}
	matcher          = language.NewMatcher(supportedTags)
)

// MatchLocale picks the closest supported locale for a BCP 47 tag such as
// "zh-Hant", "en-GB" or "zh-TW". Unparseable or unsupported tags fall back to
// DefaultLocale.
func MatchLocale(tag string) Locale {
	if tag == "" {
		return DefaultLocale
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[index]
}

var labels = map[Locale]map[Move]string{
	TraditionalChinese: {
		Rock:     "石頭",
		Paper:    "布",
		Scissors: "剪刀",
	},
	English: {
		Rock:     "Rock",
		Paper:    "Paper",
		Scissors: "Scissors",
	},
}

// Label returns the display name of the move in the given locale
func (m Move) Label(l Locale) string {
	if byMove, ok := labels[l]; ok {
		return byMove[m]
	}
	return labels[DefaultLocale][m]
}

var banners = map[Locale]map[Outcome]string{
	TraditionalChinese: {
		Win:  "你贏了！🎉",
		Lose: "電腦贏了 🤖",
		Draw: "平手！🤝",
	},
	English: {
		Win:  "You win! 🎉",
		Lose: "Computer wins 🤖",
		Draw: "Draw! 🤝",
	},
}

// Banner returns the headline shown once a round is settled
func (o Outcome) Banner(l Locale) string {
	if byOutcome, ok := banners[l]; ok {
		return byOutcome[o]
	}
	return banners[DefaultLocale][o]
}
