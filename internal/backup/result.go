package backup

import "fmt"

// Mode selects how a snapshot is applied to the destination store.
type Mode string

const (
	// ModeMerge adds and updates records without clearing existing data.
	ModeMerge Mode = "merge"
	// ModeReplace clears all user data, keeping system-seeded categories
	// and rooms, before importing.
	ModeReplace Mode = "replace"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMerge, "":
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// Counts tallies what happened to one entity type during an import.
type Counts struct {
	Deleted int `json:"deleted"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Result summarizes an import. Warnings are per-record problems that were
// recovered from; they never abort the import.
type Result struct {
	Mode       Mode     `json:"mode"`
	Categories Counts   `json:"categories"`
	Rooms      Counts   `json:"rooms"`
	Items      Counts   `json:"items"`
	Receipts   Counts   `json:"receipts"`
	Warnings   []string `json:"warnings"`
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Summary is the one-line post-import message shown to the user.
func (r *Result) Summary() string {
	return fmt.Sprintf("Imported %s, %s",
		plural(r.Items.Created, "item", "items"),
		plural(len(r.Warnings), "warning", "warnings"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
