package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"herbar/client/internal/app"
	"herbar/client/internal/dom"
)

var errQuit = errors.New("quit")

// ErrUnknownCommand is returned by parseLine for anything it cannot map.
var ErrUnknownCommand = errors.New("unknown command")

// command is one parsed REPL line: either a document event or a local query.
type command struct {
	event dom.Event
	local string
}

var eventCommands = map[string]string{
	"search":  "search:input",
	"sort":    "sort:change",
	"tag":     "tag:toggle",
	"clear":   "filters:clear",
	"open":    "card:open",
	"next":    "modal:next",
	"prev":    "modal:prev",
	"close":   "modal:close",
	"copy":    "modal:copy",
	"refresh": "modal:refresh",
	"fav":     "favorites:toggle",
	"only":    "favorites:only",
	"dismiss": "notification:dismiss",
}

var localCommands = map[string]bool{
	"list": true, "url": true, "html": true, "notes": true, "help": true, "quit": true, "exit": true,
}

func parseLine(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, nil
	}
	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	if name == "faq" {
		if strings.EqualFold(arg, "close") {
			return command{event: dom.Event{Type: "faq:close"}}, nil
		}
		return command{event: dom.Event{Type: "faq:open"}}, nil
	}
	if typ, ok := eventCommands[name]; ok {
		return command{event: dom.Event{Type: typ, Value: arg}}, nil
	}
	if localCommands[name] {
		if name == "exit" {
			name = "quit"
		}
		return command{local: name}, nil
	}
	return command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

const helpText = `search <text>    filtreaza dupa nume sau eticheta
sort <az|za|toxicity-asc|difficulty-asc|growth-asc|air-asc|...-desc>
tag <eticheta>   comuta o eticheta
clear            sterge filtrele
open <id>        deschide fisa unei plante
next | prev | close | copy | refresh
fav <id>         comuta favorita
only [true|false]
faq [close]
dismiss <id>     inchide o notificare
list | url | html | notes | quit
`

// repl drives a started controller from line input.
type repl struct {
	c   *app.Controller
	out io.Writer
}

func (r *repl) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(r.out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := r.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(r.out, err)
		}
		fmt.Fprint(r.out, "> ")
	}
	return scanner.Err()
}

func (r *repl) exec(line string) error {
	cmd, err := parseLine(line)
	if err != nil {
		return err
	}
	switch cmd.local {
	case "":
	case "quit":
		return errQuit
	case "help":
		fmt.Fprint(r.out, helpText)
		return nil
	default:
		r.show(cmd.local)
		return nil
	}
	if cmd.event.Type == "" {
		return nil
	}
	r.c.Emit(cmd.event)
	r.c.Settle()
	r.show("list")
	return nil
}

func (r *repl) show(what string) {
	switch what {
	case "list":
		visible := r.c.Visible()
		for _, rec := range visible {
			fmt.Fprintf(r.out, "%4d  %s\n", rec.ID, rec.Name)
		}
		fmt.Fprintf(r.out, "(%d plante)\n", len(visible))
	case "url":
		fmt.Fprintln(r.out, r.c.URL())
	case "html":
		fmt.Fprintln(r.out, r.c.Document().HTML())
	case "notes":
		for _, n := range r.c.Notifications() {
			fmt.Fprintf(r.out, "%s [%s] %s", n.ID, n.Class, n.Message)
			if n.Count > 1 {
				fmt.Fprintf(r.out, " (x%d)", n.Count)
			}
			fmt.Fprintln(r.out)
		}
	}
}
