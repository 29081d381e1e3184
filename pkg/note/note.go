// Package note defines the item type mdvault indexes: one Line per
// non-blank line of a markdown file. It is the concrete T the rest of the
// module is generic over.
package note

import (
	"context"
	"strings"
)

// Line is one non-blank line extracted from a file, tagged with its
// position so ordering can be reconstructed by external collaborators.
type Line struct {
	Text string
	Num  int
}

// Extract splits file contents into its non-blank lines. It is the
// populate function mdvault's CLI hands to vault.Populate; its result
// flows through vault.InnerFlatten to produce one item per line.
func Extract(_ context.Context, _ string, contents []byte) ([]Line, error) {
	rawLines := strings.Split(string(contents), "\n")
	lines := make([]Line, 0, len(rawLines))
	for i, raw := range rawLines {
		trimmed := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		lines = append(lines, Line{Text: trimmed, Num: i + 1})
	}
	return lines, nil
}
