// Package bot turns chat command lines into schedule operations and replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plancal/internal/calendar"
	appLog "plancal/internal/log"
	"plancal/internal/plan"
)

// command describes one chat command. When rest is set, the last argument
// takes the remainder of the line verbatim.
type command struct {
	name  string
	args  []string
	rest  bool
	about string
	run   func(ctx context.Context, args []string) Reply
}

func (c command) usage(prefix string) string {
	parts := append([]string{prefix + c.name}, c.args...)
	return strings.Join(parts, " ")
}

// Router dispatches prefixed command lines to the schedule service.
type Router struct {
	svc      *plan.Service
	prefix   string
	commands map[string]command
	order    []string
}

// NewRouter registers the built-in commands.
func NewRouter(svc *plan.Service, prefix string) *Router {
	r := &Router{
		svc:      svc,
		prefix:   prefix,
		commands: make(map[string]command),
	}
	r.register(command{name: "start_plan", args: []string{"YYYY-MM-DD"}, about: "初始化一個新的每日計畫表。", run: r.startPlan})
	r.register(command{name: "add_task", args: []string{"YYYY-MM-DD", "8-10時", "任務內容"}, rest: true, about: "在指定時段輸入任務。", run: r.addTask})
	r.register(command{name: "view_plan", args: []string{"YYYY-MM-DD"}, about: "查看某天的計畫表。", run: r.viewPlan})
	r.register(command{name: "view_calendar", args: []string{"YYYY-MM"}, about: "查看某月的計畫表，過去的日期劃掉。", run: r.viewCalendar})
	r.register(command{name: "complete_task", args: []string{"YYYY-MM-DD", "8-10時"}, about: "標記某個時段的任務為完成。", run: r.completeTask})
	r.register(command{name: "help", about: "顯示這個說明。", run: r.help})
	return r
}

func (r *Router) register(c command) {
	r.commands[c.name] = c
	r.order = append(r.order, c.name)
}

// Prefix returns the command prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

// Handle runs a raw message such as "!add_task 2024-06-01 8-10時 write report".
// ok is false when the message is not addressed to the bot.
func (r *Router) Handle(ctx context.Context, content string) (reply Reply, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return Reply{}, false
	}
	line := strings.TrimPrefix(content, r.prefix)
	name, raw := cutWord(line)
	if name == "" {
		return Reply{}, false
	}

	cmd, found := r.commands[name]
	if !found {
		appLog.Debug("unknown command", "command", name)
		return r.notFound(), true
	}
	args, complete := splitArgs(raw, len(cmd.args), cmd.rest)
	if !complete {
		return r.missingArgument(), true
	}
	return r.run(ctx, cmd, args), true
}

// Dispatch runs a command whose arguments are already tokenized. For commands
// whose last argument takes the rest of the line, surplus tokens are joined
// with single spaces.
func (r *Router) Dispatch(ctx context.Context, name string, args []string) Reply {
	cmd, found := r.commands[name]
	if !found {
		return r.notFound()
	}
	n := len(cmd.args)
	if len(args) < n {
		return r.missingArgument()
	}
	if cmd.rest && n > 0 {
		last := strings.TrimSpace(strings.Join(args[n-1:], " "))
		if last == "" {
			return r.missingArgument()
		}
		args = append(append([]string(nil), args[:n-1]...), last)
	}
	return r.run(ctx, cmd, args[:n])
}

func (r *Router) run(ctx context.Context, cmd command, args []string) Reply {
	appLog.Debug("command", "command", cmd.name, "args", len(args))
	return cmd.run(ctx, args)
}

func (r *Router) startPlan(ctx context.Context, args []string) Reply {
	date := args[0]
	err := r.svc.StartPlan(ctx, date)
	switch {
	case err == nil:
		return Text("✅ 已成功建立 %s 的每日計畫表！", date)
	case errors.Is(err, plan.ErrInvalidDateFormat):
		return Text("❌ 日期格式錯誤！請使用 YYYY-MM-DD 格式。")
	case errors.Is(err, plan.ErrAlreadyExists):
		return Text("📅 %s 的計畫表已經存在！您可以使用 `%sadd_task` 添加任務。", date, r.prefix)
	default:
		return r.unexpected("start_plan", err)
	}
}

func (r *Router) addTask(ctx context.Context, args []string) Reply {
	date, slot, task := args[0], args[1], args[2]
	err := r.svc.AddTask(ctx, date, slot, task)
	if err == nil {
		return Text("✅ 已成功在 %s 的 %s 輸入任務：%s", date, slot, task)
	}
	if reply, ok := r.slotFailure(date, err); ok {
		return reply
	}
	return r.unexpected("add_task", err)
}

func (r *Router) viewPlan(ctx context.Context, args []string) Reply {
	date := args[0]
	day, err := r.svc.ViewPlan(ctx, date)
	if err == nil {
		return Reply{Embed: PlanEmbed(date, day)}
	}
	if errors.Is(err, plan.ErrUnknownDate) {
		return r.unknownDate(date)
	}
	return r.unexpected("view_plan", err)
}

func (r *Router) viewCalendar(ctx context.Context, args []string) Reply {
	view, err := r.svc.Calendar(ctx, args[0])
	var reason string
	switch {
	case err == nil:
		return Reply{Embed: CalendarEmbed(view)}
	case errors.Is(err, calendar.ErrInvalidMonth):
		reason = "月份必須在 1 到 12 之間"
	case errors.Is(err, calendar.ErrInvalidFormat):
		reason = "日期格式錯誤"
	default:
		appLog.Error("command failed", err, "command", "view_calendar")
		return Text("⚠️ 發生未知錯誤：%s", err.Error())
	}
	return Text("❌ 日期格式錯誤：%s！請使用 YYYY-MM 格式，例如 `%sview_calendar 2024-12`。", reason, r.prefix)
}

func (r *Router) completeTask(ctx context.Context, args []string) Reply {
	date, slot := args[0], args[1]
	err := r.svc.CompleteTask(ctx, date, slot)
	if err == nil {
		return Text("🎉 已成功標記 %s 的 %s 任務為完成！", date, slot)
	}
	if reply, ok := r.slotFailure(date, err); ok {
		return reply
	}
	return r.unexpected("complete_task", err)
}

func (r *Router) help(_ context.Context, _ []string) Reply {
	e := &Embed{
		Title:       "📖 指令列表",
		Description: fmt.Sprintf("所有指令都以 `%s` 開頭。", r.prefix),
		Color:       ColorBlue,
	}
	for _, name := range r.order {
		cmd := r.commands[name]
		e.Fields = append(e.Fields, Field{Name: cmd.usage(r.prefix), Value: cmd.about})
	}
	return Reply{Embed: e}
}

// slotFailure maps the date/slot validation errors shared by add_task and
// complete_task.
func (r *Router) slotFailure(date string, err error) (Reply, bool) {
	var slotErr *plan.UnknownSlotError
	switch {
	case errors.Is(err, plan.ErrUnknownDate):
		return r.unknownDate(date), true
	case errors.As(err, &slotErr):
		return Text("❌ 時段 %s 無效！請使用這些時段之一：%s", slotErr.Slot, strings.Join(slotErr.Valid, ", ")), true
	}
	return Reply{}, false
}

func (r *Router) unknownDate(date string) Reply {
	return Text("❌ %s 尚未建立計畫表！請先使用 `%sstart_plan %s` 初始化。", date, r.prefix, date)
}

func (r *Router) notFound() Reply {
	return Text("❌ 找不到這個指令，請確保您輸入的指令正確。")
}

func (r *Router) missingArgument() Reply {
	return Text("❌ 您缺少必要的參數！請使用 `%shelp` 查詢指令格式。", r.prefix)
}

func (r *Router) unexpected(name string, err error) Reply {
	appLog.Error("command failed", err, "command", name)
	return Text("⚠️ 發生錯誤：%s", err.Error())
}

// cutWord splits off the first whitespace-delimited word of s.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t\r\n")
	i := strings.IndexAny(s, " \t\r\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// splitArgs takes n whitespace-delimited arguments from raw. With rest set,
// the last one is the trimmed remainder of the line instead of a single word.
// Surplus words are ignored. complete is false when arguments are missing.
func splitArgs(raw string, n int, rest bool) (args []string, complete bool) {
	args = make([]string, 0, n)
	for i := 0; i < n; i++ {
		if rest && i == n-1 {
			remainder := strings.TrimSpace(raw)
			if remainder == "" {
				return args, false
			}
			return append(args, remainder), true
		}
		var word string
		word, raw = cutWord(raw)
		if word == "" {
			return args, false
		}
		args = append(args, word)
	}
	return args, true
}
