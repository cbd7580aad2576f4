// Package table recovers rows and columns from Markdown table text that was
// transcribed by a language model and is often malformed: collapsed onto a
// single line, missing separators or padded with filler cells.
package table

import "strings"

// Tokens is the tokenizer output. Lines[i] is the source of Rows[i].
type Tokens struct {
	Lines []string
	Rows  [][]string
}

// Lines returns the candidate table lines of content: every non-blank line
// containing a '|' delimiter. Once a table block has started, heading lines
// are skipped. With stopAtProse the block ends at the first line that is
// neither a table line nor a heading.
func Lines(content string, stopAtProse bool) []string {
	var lines []string
	inTable := false

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		heading := strings.HasPrefix(line, "#")
		if strings.Contains(line, "|") {
			if inTable && heading {
				continue
			}
			lines = append(lines, line)
			inTable = true
			continue
		}

		if inTable && stopAtProse && !heading {
			break
		}
	}

	return lines
}

// SplitCells splits a table line on '|' and trims every cell. The empty cell
// produced by a leading or trailing delimiter is dropped; interior empty
// cells are kept so columns stay aligned.
func SplitCells(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}

	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}

	return cells
}

// Tokenize extracts table lines from content and splits them into cells.
// Rows without a single non-empty cell are discarded along with their line.
// A document without '|' yields empty Tokens.
func Tokenize(content string, stopAtProse bool) Tokens {
	var tokens Tokens
	for _, line := range Lines(content, stopAtProse) {
		cells := SplitCells(line)
		if !hasContent(cells) {
			continue
		}
		tokens.Lines = append(tokens.Lines, line)
		tokens.Rows = append(tokens.Rows, cells)
	}
	return tokens
}

// IsFiller reports whether a cell is empty once dashes, colons, spaces and tabs
// are removed (separator and padding cells).
func IsFiller(cell string) bool {
	return strings.Trim(cell, "-: \t") == ""
}

// IsSeparator reports whether every cell of row is filler
func IsSeparator(row []string) bool {
	for _, c := range row {
		if !IsFiller(c) {
			return false
		}
	}
	return true
}

func hasContent(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

// flatten drops empty tokens from a single-line row
func flatten(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
