// Package discord connects the command router to a Discord bot account.
package discord

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"plancal/internal/bot"
	appLog "plancal/internal/log"
)

const (
	maxFieldValue = 1024
	maxFields     = 25
	maxEmbedTotal = 6000
	// zero-width space; Discord rejects empty field values.
	blankValue = "\u200b"
)

// sender is the subset of *discordgo.Session used to post replies.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot relays prefixed messages to a Router and posts the replies back.
type Bot struct {
	session *discordgo.Session
	out     sender
	router  *bot.Router
}

// New creates a bot session for token. Events are dispatched synchronously,
// so commands from one connection are handled in arrival order.
func New(token string, router *bot.Router) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	s.SyncEvents = true

	b := &Bot{session: s, out: s, router: router}
	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessage)
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	appLog.Info("discord connected")

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		appLog.Error("discord close failed", err)
	}
	appLog.Info("discord disconnected")
	return nil
}

// Send posts r to channelID.
func (b *Bot) Send(ctx context.Context, channelID string, r bot.Reply) error {
	return send(ctx, b.out, channelID, r)
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	appLog.Info("discord ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.handle(context.Background(), m.ChannelID, m.Author.ID, m.Content)
}

func (b *Bot) handle(ctx context.Context, channelID, authorID, content string) {
	reply, ok := b.router.Handle(ctx, content)
	if !ok {
		return
	}
	appLog.Debug("discord command", "channel", channelID, "author", authorID)
	if err := send(ctx, b.out, channelID, reply); err != nil {
		appLog.Error("discord send failed", err, "channel", channelID)
	}
}

func send(ctx context.Context, out sender, channelID string, r bot.Reply) error {
	var err error
	if r.Embed != nil {
		_, err = out.ChannelMessageSendEmbed(channelID, toEmbed(r.Embed), discordgo.WithContext(ctx))
	} else {
		_, err = out.ChannelMessageSend(channelID, r.Text, discordgo.WithContext(ctx))
	}
	if err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

func toEmbed(e *bot.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	// Title, description, field names and values share one character budget.
	budget := maxEmbedTotal - utf8.RuneCountInString(e.Title) - utf8.RuneCountInString(e.Description)
	for i, f := range e.Fields {
		if i == maxFields {
			appLog.Warn("embed fields dropped", "title", e.Title, "dropped", len(e.Fields)-maxFields)
			break
		}
		name, value := fieldText(f.Name), fieldText(f.Value)
		nameLen, valueLen := utf8.RuneCountInString(name), utf8.RuneCountInString(value)
		if nameLen+valueLen > budget {
			room := budget - nameLen
			if room < 2 {
				appLog.Warn("embed fields dropped", "title", e.Title, "dropped", len(e.Fields)-i)
				break
			}
			value = clamp(value, room)
			appLog.Warn("embed truncated to total size limit", "title", e.Title, "dropped", len(e.Fields)-i-1)
			out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: name, Value: value})
			break
		}
		budget -= nameLen + valueLen
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: name, Value: value})
	}
	return out
}

// fieldText clamps s to the field value limit, counted in runes.
func fieldText(s string) string {
	if s == "" {
		return blankValue
	}
	return clamp(s, maxFieldValue)
}

// clamp shortens s to at most n runes, ending with an ellipsis when cut.
func clamp(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
