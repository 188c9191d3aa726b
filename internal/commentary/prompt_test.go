package commentary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/rpsduel/internal/move"
)

func TestBuildPrompt(t *testing.T) {
	t.Run("traditional chinese", func(t *testing.T) {
		p := BuildPrompt(Round{Player: move.Paper, Opponent: move.Scissors, Outcome: move.Lose}, move.TraditionalChinese)
		assert.Contains(t, p, "玩家出了：布")
		assert.Contains(t, p, "電腦出了：剪刀")
		assert.Contains(t, p, "玩家輸了")
		assert.Contains(t, p, "20字以內")
	})

	t.Run("english", func(t *testing.T) {
		p := BuildPrompt(Round{Player: move.Rock, Opponent: move.Rock, Outcome: move.Draw}, move.English)
		assert.Contains(t, p, "The player threw: Rock")
		assert.Contains(t, p, "The computer threw: Rock")
		assert.Contains(t, p, "a draw")
		assert.Contains(t, p, "at most 20 characters")
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello", firstLine("\n\n  hello \nworld"))
	assert.Equal(t, "quoted", firstLine(`"quoted"`))
	assert.Equal(t, "", firstLine(" \n\t\n"))
}

func TestFallback(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range []move.Outcome{move.Win, move.Lose, move.Draw} {
		text := Fallback(o, move.TraditionalChinese)
		assert.NotEmpty(t, text)
		assert.NotEqual(t, ThinkingPlaceholder(move.TraditionalChinese), text)
		seen[text] = true
	}
	assert.Len(t, seen, 3, "each outcome needs its own fallback")

	assert.Equal(t, "運氣不錯喔！", Fallback(move.Win, move.TraditionalChinese))
	assert.Equal(t, "再接再厲！", Fallback(move.Lose, move.TraditionalChinese))
	assert.Equal(t, "不分軒輊！", Fallback(move.Draw, move.TraditionalChinese))
	assert.Equal(t, "Lucky you!", Fallback(move.Win, move.English))
	assert.Equal(t, Fallback(move.Draw, move.DefaultLocale), Fallback(move.Draw, move.Locale("xx")))
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(ctx context.Context, r Round) (string, error) {
		if r.Outcome == move.Lose {
			return "", errors.New("nope")
		}
		return r.Player.String(), nil
	})

	text, err := p.Generate(context.Background(), Round{Player: move.Rock, Outcome: move.Win})
	assert.NoError(t, err)
	assert.Equal(t, "rock", text)

	_, err = p.Generate(context.Background(), Round{Outcome: move.Lose})
	assert.Error(t, err)
}
