package cli

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// flags is a FlagSet that every action shares a --json switch through.
type flags struct {
	*flag.FlagSet
	json bool
}

func (c *CLI) newFlags(name string) *flags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	f := &flags{FlagSet: fs}
	fs.BoolVar(&f.json, "json", false, "print JSON instead of a table")
	return f
}

// parse accepts flags before, between and after positional arguments and
// returns the positional ones.
func (f *flags) parse(args []string) ([]string, error) {
	var positional []string
	for {
		if err := f.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, errHelp
			}
			return nil, usageErrorf("%s: %v", f.Name(), err)
		}

		args = f.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// isSet reports whether name was given on the command line.
func (f *flags) isSet(name string) bool {
	found := false
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// payloadFlags counts the flags given other than --json.
func (f *flags) payloadFlags() int {
	n := f.NFlag()
	if f.isSet("json") {
		n--
	}
	return n
}

// intPtr returns the flag value when it was given.
func (f *flags) intPtr(name string, v int64) *int64 {
	if !f.isSet(name) {
		return nil
	}
	return &v
}

func (f *flags) stringPtr(name, v string) *string {
	if !f.isSet(name) {
		return nil
	}
	return &v
}

func (f *flags) floatPtr(name string, v float64) *float64 {
	if !f.isSet(name) {
		return nil
	}
	return &v
}

func (f *flags) boolPtr(name string, v bool) *bool {
	if !f.isSet(name) {
		return nil
	}
	return &v
}

// parseID takes the single positional id of get, update, patch and delete.
func parseID(cmd string, positional []string) (int64, error) {
	if len(positional) != 1 {
		return 0, usageErrorf("%s takes exactly one id", cmd)
	}
	id, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("%s: %q is not a valid id", cmd, positional[0])
	}
	return id, nil
}

// noArgs rejects stray positional arguments.
func noArgs(cmd string, positional []string) error {
	if len(positional) > 0 {
		return usageErrorf("%s takes no arguments, got %q", cmd, strings.Join(positional, " "))
	}
	return nil
}

// subcommand splits an action off args.
func subcommand(resource string, args []string, actions ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, usageErrorf("%s needs an action: %s", resource, strings.Join(actions, "|"))
	}
	action := strings.ToLower(args[0])
	for _, a := range actions {
		if a == action {
			return action, args[1:], nil
		}
	}
	return "", nil, usageErrorf("%s: unknown action %q, want %s", resource, args[0], strings.Join(actions, "|"))
}

// splitLine splits a shell line into words. Single and double quotes group
// words and a backslash escapes the next character.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

// RedactArgs returns a copy of args with the value of any password flag
// replaced, for logs and shell history.
func RedactArgs(args []string) []string {
	out := slices.Clone(args)
	for i, arg := range out {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "password" {
			continue
		}
		if hasValue {
			out[i] = arg[:strings.IndexByte(arg, '=')+1] + "[redacted]"
		} else if i+1 < len(out) {
			out[i+1] = "[redacted]"
		}
	}
	return out
}

// joinLine is the inverse of splitLine.
func joinLine(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if w == "" {
			quoted[i] = `""`
			continue
		}
		var b strings.Builder
		for _, r := range w {
			switch r {
			case ' ', '\t', '\'', '"', '\\':
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		quoted[i] = b.String()
	}
	return strings.Join(quoted, " ")
}
