// Package texts provides the built-in reference corpus and custom text loading.
package texts

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/typemaster/internal/model"
)

// Pangram is the default reference text.
const Pangram = "The quick brown fox jumps over the lazy dog. This is a classic pangram often used for typing tests because it contains every letter of the alphabet. Practice makes perfect, so keep typing to improve your speed and accuracy. Consistency is key to mastering touch typing. A journey of a thousand miles begins with a single step. The early bird catches the worm. All that glitters is not gold. When in Rome, do as the Romans do. Actions speak louder than words. Better late than never."

var builtin = []model.Text{
	{Title: "Pangram", Body: Pangram, Builtin: true},
	{Title: "Proverbs", Body: "Actions speak louder than words. Better late than never. The early bird catches the worm. All that glitters is not gold.", Builtin: true},
	{Title: "Home Keys", Body: "a sad lad asks dad; all fall as glad lads flash past; dads ask a lass as she falls.", Builtin: true},
}

// Builtin returns the texts seeded into an empty library.
func Builtin() []model.Text {
	return append([]model.Text(nil), builtin...)
}

// LoadFile reads a custom text from path and normalizes it for typing.
func LoadFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text file.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	body := Normalize(strings.Join(lines, "\n"))
	if err := Validate(body); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return body, nil
}

// Normalize collapses every whitespace run into a single space and trims
// the ends, so line breaks in a source file become typeable spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
