package schema

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Resolution is the operator's choice when a load targets an existing table.
type Resolution int

const (
	// ResolutionOverwrite drops the existing table and recreates it.
	ResolutionOverwrite Resolution = iota
	// ResolutionRename loads into "<table>_new", leaving the original untouched.
	ResolutionRename
	// ResolutionSkip aborts the load with no database mutation.
	ResolutionSkip
)

// RenameSuffix is appended to the table name for ResolutionRename.
const RenameSuffix = "_new"

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case ResolutionOverwrite:
		return "overwrite"
	case ResolutionRename:
		return "rename"
	case ResolutionSkip:
		return "skip"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// ParseResolution parses a resolution from a flag value or a single
// prompt character (o/r/s).
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "o", "overwrite":
		return ResolutionOverwrite, nil
	case "r", "rename":
		return ResolutionRename, nil
	case "s", "skip":
		return ResolutionSkip, nil
	default:
		return 0, fmt.Errorf("invalid resolution %q (want overwrite, rename, or skip)", s)
	}
}

// Resolver decides what to do when the target table already exists.
// It is only consulted when the existing schema is non-empty.
type Resolver interface {
	Resolve(table string, existing, proposed Schema) (Resolution, error)
}

// FixedResolver always returns the same resolution. Used for the
// --on-conflict flag and in tests.
type FixedResolver Resolution

// Resolve implements Resolver.
func (f FixedResolver) Resolve(string, Schema, Schema) (Resolution, error) {
	return Resolution(f), nil
}

// PromptResolver asks the operator to pick a resolution interactively.
// Invalid input is rejected and the prompt repeats; there is no silent
// fallthrough for unrecognized characters.
type PromptResolver struct {
	In  io.Reader
	Out io.Writer
}

// Resolve presents both schemas and blocks until the operator enters
// one of O, R, or S (case-insensitive, full words accepted).
func (p *PromptResolver) Resolve(table string, existing, proposed Schema) (Resolution, error) {
	fmt.Fprintf(p.Out, "Schema conflict: table %q already exists\n", table)
	fmt.Fprintf(p.Out, "  existing: %s\n", existing)
	fmt.Fprintf(p.Out, "  proposed: %s\n", proposed)

	scanner := bufio.NewScanner(p.In)
	for {
		fmt.Fprint(p.Out, "Overwrite (O), Rename (R), or Skip (S)? ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		res, err := ParseResolution(scanner.Text())
		if err != nil {
			fmt.Fprintf(p.Out, "Unrecognized choice %q, try again.\n", strings.TrimSpace(scanner.Text()))
			continue
		}
		return res, nil
	}
}
