// Package console is a local transport for the command router: a REPL on
// standard input that speaks the same slash commands as the chat bot.
//
//	dk> alice > /owe @bob 500
//	Долг создан и ожидает подтверждения получателем.
//	ID: 1
//	  [@bob] @alice записал долг перед тобой: 500 ₽. ...
//	dk> alice > as bob
//	dk> bob > /confirm 1
//
// Besides slash commands it understands:
//
//	as <identity>  act as another user
//	whoami         print the current identity
//	exit | quit    leave the program
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/router"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type Handler interface {
	Handle(ctx context.Context, actor, text string) (router.Reply, bool)
}

type Console struct {
	handler  Handler
	logger   logging.Logger
	in       *bufio.Reader
	out      io.Writer
	identity string
	prompt   bool
}

// New builds a console over in/out. The prompt is printed only when in is an
// interactive terminal.
func New(h Handler, l logging.Logger, in io.Reader, out io.Writer) *Console {
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = isTerminal(int(f.Fd()))
	}
	return &Console{
		handler: h,
		logger:  l.With("module", "console"),
		in:      bufio.NewReader(in),
		out:     out,
		prompt:  prompt,
	}
}

// SetIdentity selects the user the following commands are issued as.
func (c *Console) SetIdentity(identity string) {
	c.identity = strings.TrimLeft(strings.TrimSpace(identity), "@")
}

// Run reads commands until EOF, "exit" or ctx cancellation. If no identity was
// set, it is asked for first.
func (c *Console) Run(ctx context.Context) error {
	if c.identity == "" {
		id, err := GetSimpleText(c.in, "Who are you? (handle without @)", c.out)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		c.SetIdentity(id)
		if c.identity == "" {
			return fmt.Errorf("empty identity")
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.prompt {
			fmt.Fprintf(c.out, "dk> %s > ", c.identity)
		}

		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if !c.exec(ctx, strings.TrimSpace(line)) {
			return nil
		}
	}
}

// exec runs one line and reports whether the loop should continue.
func (c *Console) exec(ctx context.Context, line string) (cont bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	switch parts[0] {
	case "exit", "quit":
		fmt.Fprintln(c.out, "Bye!")
		return false

	case "whoami":
		fmt.Fprintln(c.out, c.identity)
		return true

	case "as":
		if len(parts) != 2 || strings.TrimLeft(parts[1], "@") == "" {
			fmt.Fprintln(c.out, "Usage: as <identity>")
			return true
		}
		c.SetIdentity(parts[1])
		return true
	}

	ctx = logging.ContextWith(ctx, "request_id", uuid.NewString(), "actor", c.identity)

	defer func() {
		if p := recover(); p != nil {
			c.logger.Error(ctx, "panic while handling command", "panic", fmt.Sprint(p))
			fmt.Fprintln(c.out, router.GenericFailure)
			cont = true
		}
	}()

	reply, ok := c.handler.Handle(ctx, c.identity, line)
	if !ok {
		fmt.Fprintln(c.out, "Unknown command:", parts[0])
		return true
	}

	fmt.Fprintln(c.out, strings.TrimRight(reply.Text, "\n"))
	for _, n := range reply.Notices {
		fmt.Fprintf(c.out, "  [@%s] %s\n", n.To, n.Text)
	}
	return true
}

// GetSimpleText prints a prompt to w and reads a single line from reader.
// If EOF occurs after some input was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
