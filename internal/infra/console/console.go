// Package console implements the operator prompt on standard input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/infra/reply"

	"github.com/sirupsen/logrus"
)

// ErrQuit is returned by Run when the operator asked to stop the bot.
var ErrQuit = errors.New("console: quit requested")

// Scheduler is the part of the birthday scheduler the console drives.
type Scheduler interface {
	RunNow(ctx context.Context) ([]*app.SweepResult, error)
	Next() time.Time
}

// StatusReporter describes the connected chat platform.
type StatusReporter interface {
	Status() string
}

// StatusFunc adapts a plain function to StatusReporter.
type StatusFunc func() string

func (f StatusFunc) Status() string { return f() }

type Console struct {
	in        io.Reader
	out       io.Writer
	scheduler Scheduler
	status    StatusReporter
	logger    *logrus.Entry
}

func New(in io.Reader, out io.Writer, scheduler Scheduler, status StatusReporter, logger *logrus.Entry) *Console {
	return &Console{
		in:        in,
		out:       out,
		scheduler: scheduler,
		status:    status,
		logger:    logger.WithField("component", "console"),
	}
}

// Run reads one command per line until quit, end of input or ctx is done.
// End of input is not a quit request: the bot keeps running without a prompt.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("console input: %w", err)
					}
				default:
				}
				c.logger.Debug("Console input closed")
				return nil
			}
			if err := c.Execute(ctx, line); err != nil {
				return err
			}
		}
	}
}

// Execute runs a single console command.
func (c *Console) Execute(ctx context.Context, line string) error {
	input := strings.ToLower(strings.TrimSpace(line))
	if input == "" {
		return nil
	}

	switch input {
	case "birthday":
		c.logger.Info("Manual birthday sweep requested")
		results, err := c.scheduler.RunNow(ctx)
		if err != nil {
			c.logger.WithError(err).Error("Manual birthday sweep failed")
			c.printf("Birthday sweep failed: %v\n", err)
			return nil
		}
		c.printf("%s\n", reply.DailySweep(results))
	case "status":
		c.printf("Bot status:\n")
		if c.status != nil {
			for _, l := range strings.Split(c.status.Status(), "\n") {
				c.printf("  %s\n", l)
			}
		}
		if next := c.scheduler.Next(); !next.IsZero() {
			c.printf("  Next sweep: %s\n", next.Format(time.RFC1123))
		}
	case "help":
		c.printf("Available console commands:\n")
		c.printf("  'birthday' - Manually trigger birthday check\n")
		c.printf("  'status' - Show bot status\n")
		c.printf("  'help' - Show this help message\n")
		c.printf("  'quit' or 'exit' - Stop the bot\n")
	case "quit", "exit":
		c.printf("Shutting down bot...\n")
		return ErrQuit
	default:
		c.printf("Unknown command: '%s'. Type 'help' for available commands.\n", input)
	}
	return nil
}

func (c *Console) printf(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(c.out, format, args...); err != nil {
		c.logger.WithError(err).Warn("Failed to write console output")
	}
}
