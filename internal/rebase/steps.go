package rebase

import "strings"

var actionAliases = map[string]string{
	"p": "pick",
	"r": "reword",
	"e": "edit",
	"s": "squash",
	"f": "fixup",
	"x": "exec",
	"b": "break",
	"d": "drop",
	"l": "label",
	"t": "reset",
	"m": "merge",
	"u": "update-ref",
}

// commitActions take a commit as their first argument.
var commitActions = map[string]bool{
	"pick":   true,
	"reword": true,
	"edit":   true,
	"squash": true,
	"fixup":  true,
	"drop":   true,
}

// ParseSteps parses a rebase todo or done list. Comments and blank lines
// are skipped. Short action names are expanded.
func ParseSteps(text string) []Step {
	var steps []Step
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		steps = append(steps, parseStep(line))
	}
	return steps
}

func parseStep(line string) Step {
	action, rest, _ := strings.Cut(line, " ")
	if full, ok := actionAliases[action]; ok {
		action = full
	}
	rest = strings.TrimSpace(rest)

	if action == "merge" {
		// merge [-C <commit> | -c <commit>] <label> [# <oneline>]
		var commit string
		if strings.HasPrefix(rest, "-C ") || strings.HasPrefix(rest, "-c ") {
			commit, rest, _ = strings.Cut(rest[3:], " ")
		}
		_, subject, _ := strings.Cut(rest, "# ")
		return Step{Action: action, Commit: commit, Subject: strings.TrimSpace(subject)}
	}

	if !commitActions[action] {
		return Step{Action: action, Subject: rest}
	}

	// fixup -C / -c replace the message with the fixup commit's.
	if action == "fixup" && (strings.HasPrefix(rest, "-C ") || strings.HasPrefix(rest, "-c ")) {
		rest = rest[3:]
	}
	commit, subject, _ := strings.Cut(rest, " ")
	return Step{Action: action, Commit: commit, Subject: strings.TrimPrefix(strings.TrimSpace(subject), "# ")}
}
