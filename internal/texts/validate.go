package texts

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ErrEmpty is returned for a text with nothing to type.
var ErrEmpty = errors.New("text is empty")

// Validate rejects texts that cannot be typed on a keyboard.
func Validate(body string) error {
	if body == "" {
		return ErrEmpty
	}
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid UTF-8 at byte %d", i)
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("control character %U at byte %d", r, i)
		}
		i += size
	}
	return nil
}
