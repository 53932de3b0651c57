// Package stakes converts blind pairs to and from the comma-joined form they
// are stored in, e.g. "1,2".
package stakes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/handtracker/internal/game"
)

var ErrInvalid = errors.New("invalid stakes")

// Parse reads "small,big". Whitespace is ignored; "/" is accepted as a
// separator too. The empty string is the zero pair.
func Parse(s string) (game.Stakes, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return game.Stakes{}, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' })
	if len(parts) != 2 {
		return game.Stakes{}, fmt.Errorf("%w: %q: want small,big", ErrInvalid, s)
	}

	var blinds [2]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return game.Stakes{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		if n < 0 {
			return game.Stakes{}, fmt.Errorf("%w: %q: negative blind", ErrInvalid, s)
		}
		blinds[i] = n
	}
	if blinds[0] > blinds[1] {
		return game.Stakes{}, fmt.Errorf("%w: %q: small blind above big blind", ErrInvalid, s)
	}
	return game.Stakes{Small: blinds[0], Big: blinds[1]}, nil
}

// Format writes the stored form. The zero pair formats as "".
func Format(st game.Stakes) string {
	if st == (game.Stakes{}) {
		return ""
	}
	return strconv.Itoa(st.Small) + "," + strconv.Itoa(st.Big)
}
