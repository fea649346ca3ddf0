package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typemaster/internal/diff"
)

// cell is one rendered reference rune.
type cell struct {
	text  string
	width int
	space bool
}

// styleCells renders each reference rune according to its class. A mistyped
// space is drawn as a dot so the error stays visible.
func styleCells(target []rune, classes []diff.Class, cursor int) []cell {
	wordStart, wordEnd := activeWord(target, cursor)
	cells := make([]cell, len(target))
	for i, r := range target {
		class := diff.Untyped
		if i < len(classes) {
			class = classes[i]
		}
		shown := r
		style := pendingStyle
		switch class {
		case diff.Correct:
			style = correctStyle
		case diff.Incorrect:
			style = incorrectStyle
			if r == ' ' {
				shown = '•'
			}
		default:
			if r != ' ' && i >= wordStart && i < wordEnd {
				style = currentWordStyle
			}
			if i == cursor {
				style = style.Underline(true)
			}
		}
		cells[i] = cell{
			text:  style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: r == ' ',
		}
	}
	return cells
}

// activeWord returns the [start, end) span of the word under the cursor. A
// cursor on a space selects the following word, a negative cursor the first
// word and a cursor past the last word the last one.
func activeWord(target []rune, cursor int) (int, int) {
	pos := cursor
	if pos < 0 {
		pos = 0
	}
	for pos < len(target) && target[pos] == ' ' {
		pos++
	}
	if pos >= len(target) {
		pos = len(target) - 1
		for pos >= 0 && target[pos] == ' ' {
			pos--
		}
		if pos < 0 {
			return 0, 0
		}
	}
	start, end := pos, pos
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	for end < len(target) && target[end] != ' ' {
		end++
	}
	return start, end
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.text)
	}
	return b.String()
}

// token is a word followed by the spaces after it.
type token struct {
	word []cell
	gap  []cell
}

func tokenize(cells []cell) []token {
	var tokens []token
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && !cells[j].space {
			j++
		}
		k := j
		for k < len(cells) && cells[k].space {
			k++
		}
		tokens = append(tokens, token{word: cells[i:j], gap: cells[j:k]})
		i = k
	}
	return tokens
}

// layoutCells wraps cells into lines no wider than width. Words move to the
// next line whole unless they are wider than a line, in which case they are
// split. Spaces that do not fit at the end of a line are dropped.
func layoutCells(cells []cell, width int) string {
	if width <= 0 {
		return joinCells(cells)
	}
	var lines []string
	var line strings.Builder
	used := 0
	breakLine := func() {
		lines = append(lines, line.String())
		line.Reset()
		used = 0
	}
	for _, tok := range tokenize(cells) {
		if used > 0 && used+cellsWidth(tok.word) > width {
			breakLine()
		}
		for _, c := range tok.word {
			if used > 0 && used+c.width > width {
				breakLine()
			}
			line.WriteString(c.text)
			used += c.width
		}
		for _, c := range tok.gap {
			if used+c.width > width {
				continue
			}
			line.WriteString(c.text)
			used += c.width
		}
	}
	lines = append(lines, line.String())
	return strings.Join(lines, "\n")
}

func cellsWidth(cells []cell) int {
	total := 0
	for _, c := range cells {
		total += c.width
	}
	return total
}
