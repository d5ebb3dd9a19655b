package help

import (
	"fmt"
	"strings"

	"perchbot/irc/access"
	"perchbot/irc/commands"
)

// Format renders the long help for one command.
func Format(prefix string, info commands.Info) string {
	var result strings.Builder

	longRunning := ""
	if info.LongRunning() {
		longRunning = " [Long-running]"
	}
	result.WriteString(fmt.Sprintf("[b]%s%s[/b] - %s%s\n", prefix, info.Name, info.Help, longRunning))

	if len(info.Aliases) > 0 {
		result.WriteString(fmt.Sprintf(" Aliases: %s\n", strings.Join(info.Aliases, ", ")))
	}
	if info.Level > access.Normal {
		result.WriteString(fmt.Sprintf(" Requires: %s\n", info.Level))
	}

	for i, arg := range info.Arguments {
		// Determine the prefix based on whether the argument is the last in the slice
		branch := " ├  "
		if i == len(info.Arguments)-1 {
			branch = " └  "
		}

		argInfo := fmt.Sprintf("%s%s: %s", branch, arg.Name, arg.Help)
		if arg.Values != "" {
			argInfo += fmt.Sprintf(" (Values: %s)", arg.Values)
		}
		result.WriteString(argInfo + "\n")
	}

	if info.Example != "" {
		result.WriteString(fmt.Sprintf(" Example: %s%s\n", prefix, info.Example))
	}

	return result.String()
}

// List renders one line per access level naming the commands level can use.
func List(cmds []commands.Command, level access.Level) string {
	byLevel := map[access.Level][]string{}
	for _, cmd := range cmds {
		info := cmd.Info()
		if !access.Satisfies(info.Level, level) {
			continue
		}
		byLevel[info.Level] = append(byLevel[info.Level], "[b]"+info.Name+"[/b]")
	}

	var result strings.Builder
	for _, l := range access.Levels() {
		names := byLevel[l]
		if len(names) == 0 {
			continue
		}
		result.WriteString(fmt.Sprintf("%s: %s\n", l, strings.Join(names, ", ")))
	}
	return result.String()
}
