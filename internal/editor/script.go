package editor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseScript reads one event per line:
//
//	down X Y
//	move X Y
//	up
//	click X Y
//	key NAME        (e.g. key ArrowLeft, key +, key ctrl+a)
//	select-all
//	clear-all
//	save
//
// Blank lines and lines starting with # are ignored.
func ParseScript(r io.Reader) ([]Event, error) {
	var events []Event
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return events, nil
}

func parseLine(line string) (Event, error) {
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	args := fields[1:]
	switch verb {
	case "down", "move", "click":
		x, y, err := parseXY(args)
		if err != nil {
			return Event{}, fmt.Errorf("%s: %w", verb, err)
		}
		switch verb {
		case "down":
			return Down(x, y), nil
		case "move":
			return Move(x, y), nil
		default:
			return ClickAt(x, y), nil
		}
	case "up":
		return Up(), expectNoArgs(verb, args)
	case "select-all":
		return Event{Kind: SelectAllAction}, expectNoArgs(verb, args)
	case "clear-all":
		return Event{Kind: ClearAllAction}, expectNoArgs(verb, args)
	case "save":
		return Event{Kind: SaveAction}, expectNoArgs(verb, args)
	case "key":
		if len(args) != 1 {
			return Event{}, fmt.Errorf("key: expected one key name, got %d", len(args))
		}
		return parseKey(args[0]), nil
	default:
		return Event{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseXY(args []string) (float64, float64, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected X Y, got %d values", len(args))
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse y: %w", err)
	}
	return x, y, nil
}

func expectNoArgs(verb string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: unexpected arguments %q", verb, strings.Join(args, " "))
	}
	return nil
}

var keyAliases = map[string]string{
	"up":        KeyArrowUp,
	"down":      KeyArrowDown,
	"left":      KeyArrowLeft,
	"right":     KeyArrowRight,
	"esc":       KeyEscape,
	"escape":    KeyEscape,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"backspace": KeyBackspace,
	"plus":      "+",
	"minus":     "-",
}

func parseKey(combo string) Event {
	ev := Event{Kind: KeyPress}
	parts := strings.Split(combo, "+")
	// "+" alone or a trailing "+" is the plus key, not a separator.
	if strings.HasSuffix(combo, "+") {
		parts = append(strings.Split(strings.TrimSuffix(combo, "+"), "+"), "+")
		if parts[0] == "" {
			parts = parts[1:]
		}
	}
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "ctrl", "control":
			ev.Ctrl = true
		case "meta", "cmd":
			ev.Meta = true
		}
	}
	name := parts[len(parts)-1]
	if alias, ok := keyAliases[strings.ToLower(name)]; ok {
		name = alias
	}
	ev.Key = name
	return ev
}
