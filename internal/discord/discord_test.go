package discord

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/bot"
	"plancal/internal/plan"
)

type sent struct {
	channel string
	text    string
	embed   *discordgo.MessageEmbed
}

type fakeSender struct {
	msgs []sent
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.msgs = append(f.msgs, sent{channel: channelID, text: content})
	return &discordgo.Message{}, nil
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.msgs = append(f.msgs, sent{channel: channelID, embed: embed})
	return &discordgo.Message{}, nil
}

func newTestBot(out sender) *Bot {
	fixed := time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	svc := plan.NewService(plan.NewMemoryStore(), plan.WithClock(func() time.Time { return fixed }), plan.WithLocation(time.UTC))
	return &Bot{out: out, router: bot.NewRouter(svc, "!")}
}

func TestHandle_RepliesInSameChannel(t *testing.T) {
	out := &fakeSender{}
	b := newTestBot(out)
	ctx := context.Background()

	b.handle(ctx, "c1", "u1", "just chatting")
	assert.Empty(t, out.msgs)

	b.handle(ctx, "c1", "u1", "!start_plan 2024-06-20")
	b.handle(ctx, "c2", "u1", "!view_plan 2024-06-20")
	require.Len(t, out.msgs, 2)

	assert.Equal(t, "c1", out.msgs[0].channel)
	assert.Equal(t, "✅ 已成功建立 2024-06-20 的每日計畫表！", out.msgs[0].text)

	assert.Equal(t, "c2", out.msgs[1].channel)
	require.NotNil(t, out.msgs[1].embed)
	assert.Equal(t, bot.ColorBlue, out.msgs[1].embed.Color)
	assert.Len(t, out.msgs[1].embed.Fields, 8)
}

func TestToEmbed(t *testing.T) {
	e := &bot.Embed{
		Title: "t",
		Color: bot.ColorBlue,
		Fields: []bot.Field{
			{Name: "empty", Value: ""},
			{Name: "long", Value: strings.Repeat("任", 2000)},
		},
	}

	out := toEmbed(e)
	require.Len(t, out.Fields, 2)
	assert.Equal(t, blankValue, out.Fields[0].Value)
	assert.Equal(t, maxFieldValue, utf8.RuneCountInString(out.Fields[1].Value))
	assert.True(t, strings.HasSuffix(out.Fields[1].Value, "…"))
}

func TestToEmbed_CapsFieldCount(t *testing.T) {
	e := &bot.Embed{Title: "many"}
	for i := 0; i < 30; i++ {
		e.Fields = append(e.Fields, bot.Field{Name: "n", Value: "v"})
	}
	assert.Len(t, toEmbed(e).Fields, maxFields)
}

func TestToEmbed_CapsTotalSize(t *testing.T) {
	e := &bot.Embed{Title: "📅 2024 年 6 月計畫表", Description: "當月計畫（已過去的日期會劃掉）。"}
	for i := 0; i < 6; i++ {
		e.Fields = append(e.Fields, bot.Field{Name: "第 1 週", Value: strings.Repeat("長", 2000)})
	}

	out := toEmbed(e)
	total := utf8.RuneCountInString(out.Title) + utf8.RuneCountInString(out.Description)
	for _, f := range out.Fields {
		total += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
		assert.LessOrEqual(t, utf8.RuneCountInString(f.Value), maxFieldValue)
	}
	assert.LessOrEqual(t, total, maxEmbedTotal)
	require.Len(t, out.Fields, 6)
	assert.True(t, strings.HasSuffix(out.Fields[5].Value, "…"))
}
