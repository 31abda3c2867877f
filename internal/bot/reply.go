package bot

import (
	"context"
	"fmt"
	"strings"

	"plancal/internal/calendar"
	"plancal/internal/model"
)

// ColorBlue is the accent color of every embed.
const ColorBlue = 0x3498db

// Field is one titled block of an Embed.
type Field struct {
	Name  string
	Value string
}

// Embed is a titled, colored, multi-field view.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
}

// Reply is what a command produces: plain text, or an embed.
type Reply struct {
	Text  string
	Embed *Embed
}

// Text builds a plain text reply.
func Text(format string, args ...any) Reply {
	if len(args) == 0 {
		return Reply{Text: format}
	}
	return Reply{Text: fmt.Sprintf(format, args...)}
}

// Sink delivers replies to a channel of the chat platform.
type Sink interface {
	Send(ctx context.Context, channelID string, r Reply) error
}

// String renders the reply as plain text, for transports without embeds.
func (r Reply) String() string {
	if r.Embed == nil {
		return r.Text
	}
	var b strings.Builder
	if r.Text != "" {
		b.WriteString(r.Text)
		b.WriteString("\n")
	}
	b.WriteString(r.Embed.Title)
	b.WriteString("\n")
	if r.Embed.Description != "" {
		b.WriteString(r.Embed.Description)
		b.WriteString("\n")
	}
	for _, f := range r.Embed.Fields {
		b.WriteString("\n[")
		b.WriteString(f.Name)
		b.WriteString("]\n")
		b.WriteString(strings.TrimRight(f.Value, "\n"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// PlanEmbed shows every slot of one day.
func PlanEmbed(date string, day *model.DayPlan) *Embed {
	e := &Embed{
		Title:       fmt.Sprintf("📅 %s 的計畫表", date),
		Description: "以下是當日的代辦事項：",
		Color:       ColorBlue,
	}
	for _, entry := range day.Entries() {
		e.Fields = append(e.Fields, Field{Name: entry.Slot, Value: entry.Task})
	}
	return e
}

// CalendarEmbed shows a month, one field per week.
func CalendarEmbed(view calendar.View) *Embed {
	e := &Embed{
		Title:       fmt.Sprintf("📅 %d 年 %d 月計畫表", view.Year, int(view.Month)),
		Description: "當月計畫（已過去的日期會劃掉）。",
		Color:       ColorBlue,
	}
	for _, s := range view.Sections() {
		e.Fields = append(e.Fields, Field{Name: s.Label, Value: s.Text})
	}
	return e
}
