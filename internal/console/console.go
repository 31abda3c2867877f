// Package console runs the command router against a line-oriented stream,
// normally stdin/stdout, for local use without a chat account.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"plancal/internal/bot"
	appLog "plancal/internal/log"
)

// Console reads one command per line and prints each reply.
type Console struct {
	in     io.Reader
	router *bot.Router

	mu  sync.Mutex
	out io.Writer
}

func New(in io.Reader, out io.Writer, router *bot.Router) *Console {
	return &Console{in: in, out: out, router: router}
}

// Run processes lines until EOF or ctx is canceled. Lines without the
// command prefix are ignored.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	appLog.Info("console ready", "prefix", c.router.Prefix())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read console input: %w", err)
					}
				default:
				}
				return nil
			}
			reply, handled := c.router.Handle(ctx, line)
			if !handled {
				continue
			}
			if err := c.write(reply); err != nil {
				return err
			}
		}
	}
}

// Send prints r; the channel is shown as a header when set.
func (c *Console) Send(_ context.Context, channelID string, r bot.Reply) error {
	if channelID != "" {
		c.mu.Lock()
		_, err := fmt.Fprintf(c.out, "# %s\n", channelID)
		c.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return c.write(r)
}

func (c *Console) write(r bot.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, r.String()); err != nil {
		return fmt.Errorf("write console output: %w", err)
	}
	return nil
}
