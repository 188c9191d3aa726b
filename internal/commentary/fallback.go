package commentary

import "github.com/lox/rpsduel/internal/move"

var fallbacks = map[move.Locale]map[move.Outcome]string{
	move.TraditionalChinese: {
		move.Win:  "運氣不錯喔！",
		move.Lose: "再接再厲！",
		move.Draw: "不分軒輊！",
	},
	move.English: {
		move.Win:  "Lucky you!",
		move.Lose: "Better luck next time!",
		move.Draw: "Great minds think alike!",
	},
}

var placeholders = map[move.Locale]struct{ idle, thinking string }{
	move.TraditionalChinese: {idle: "準備好開始猜拳了嗎？", thinking: "..."},
	move.English:            {idle: "Ready to play?", thinking: "..."},
}

// Fallback returns the fixed remark for an outcome, used whenever the
// provider fails. It is never empty for Win, Lose or Draw.
func Fallback(outcome move.Outcome, locale move.Locale) string {
	byOutcome, ok := fallbacks[locale]
	if !ok {
		byOutcome = fallbacks[move.DefaultLocale]
	}
	return byOutcome[outcome]
}

// IdlePlaceholder is shown before the first round and after a reset.
func IdlePlaceholder(locale move.Locale) string {
	p, ok := placeholders[locale]
	if !ok {
		p = placeholders[move.DefaultLocale]
	}
	return p.idle
}

// ThinkingPlaceholder is shown while the opponent is deciding.
func ThinkingPlaceholder(locale move.Locale) string {
	p, ok := placeholders[locale]
	if !ok {
		p = placeholders[move.DefaultLocale]
	}
	return p.thinking
}
