package commentary

import (
	"fmt"
	"strings"

	"github.com/lox/rpsduel/internal/move"
)

// MaxRunes is the length, in characters of the target script, that the
// prompt asks the model to stay within.
const MaxRunes = 20

// BuildPrompt renders the request sent to the generation service for a round.
func BuildPrompt(round Round, locale move.Locale) string {
	player := round.Player.Label(locale)
	opponent := round.Opponent.Label(locale)

	var b strings.Builder
	switch locale {
	case move.English:
		fmt.Fprintln(&b, "This is a game of rock-paper-scissors.")
		fmt.Fprintf(&b, "The player threw: %s\n", player)
		fmt.Fprintf(&b, "The computer threw: %s\n", opponent)
		fmt.Fprintf(&b, "Result: %s\n", englishResult(round.Outcome))
		fmt.Fprintf(&b, "Reply in English with one short, funny, slightly teasing remark of at most %d characters.\n", MaxRunes)
		fmt.Fprintln(&b, "Praise luck or skill on a win, tease gently on a loss, and call a draw a sign of great minds.")
		fmt.Fprint(&b, "Keep it lively.")
	default:
		fmt.Fprintln(&b, "這是一場猜拳遊戲。")
		fmt.Fprintf(&b, "玩家出了：%s\n", player)
		fmt.Fprintf(&b, "電腦出了：%s\n", opponent)
		fmt.Fprintf(&b, "結果：%s\n", chineseResult(round.Outcome))
		fmt.Fprintf(&b, "請用繁體中文回一句簡短、幽默或略帶調侃的評論（%d字以內）。\n", MaxRunes)
		fmt.Fprintln(&b, "玩家贏時稱讚運氣或技巧，玩家輸時輕鬆調侃，平手就說真有默契。")
		fmt.Fprint(&b, "語氣要活潑。")
	}
	return b.String()
}

func englishResult(o move.Outcome) string {
	switch o {
	case move.Win:
		return "the player won"
	case move.Lose:
		return "the player lost"
	default:
		return "a draw"
	}
}

func chineseResult(o move.Outcome) string {
	switch o {
	case move.Win:
		return "玩家贏了"
	case move.Lose:
		return "玩家輸了"
	default:
		return "平手"
	}
}

// firstLine returns the first non-empty line of a model response with
// surrounding whitespace and quotes removed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"'「」“”`)
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
