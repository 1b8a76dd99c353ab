package bot

import "strings"

// Command is a parsed "/name[@bot] args" message.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits a command message. ok is false for plain text and for
// commands addressed to another bot.
func ParseCommand(text, botUsername string) (cmd Command, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		args = head[i+1:] + " " + args
		head = head[:i]
	}
	name, target, addressed := strings.Cut(head, "@")
	if addressed && botUsername != "" && !strings.EqualFold(target, botUsername) {
		return Command{}, false
	}
	if name == "" {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}

// IsCommand reports whether text looks like a bot command.
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}
