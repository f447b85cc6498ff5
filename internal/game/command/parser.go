package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing preserved,
	// used for multi-word target names.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	word, rest, found := strings.Cut(line, " ")
	result := ParseResult{Command: strings.ToLower(word)}
	if !found {
		return result
	}
	result.RawArgs = strings.TrimSpace(rest)
	if result.RawArgs != "" {
		result.Args = strings.Fields(result.RawArgs)
	}
	return result
}
