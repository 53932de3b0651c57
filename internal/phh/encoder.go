package phh

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lox/handtracker/internal/game"
)

// Encode writes a single hand history as a PHH document.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeSection encodes hand as the [hand_N] table of a .phhs session file.
// Sections can be rendered independently and concatenated in order.
func EncodeSection(n int, hand *HandHistory) ([]byte, error) {
	if hand == nil {
		return nil, fmt.Errorf("phh: hand history is nil")
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "\t"
	if err := enc.Encode(map[string]*HandHistory{SectionKey(n): hand}); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// SectionKey names the n-th hand of a session file.
func SectionKey(n int) string {
	return "hand_" + strconv.Itoa(n)
}

// DecodeSession reads a .phhs file back into its hands, in section order.
func DecodeSession(r io.Reader) ([]HandHistory, error) {
	sections := make(map[string]HandHistory)
	if _, err := toml.NewDecoder(r).Decode(&sections); err != nil {
		return nil, fmt.Errorf("phh: decode session: %w", err)
	}

	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, errA := strconv.Atoi(strings.TrimPrefix(keys[i], "hand_"))
		bi, errB := strconv.Atoi(strings.TrimPrefix(keys[j], "hand_"))
		if errA == nil && errB == nil {
			return ai < bi
		}
		return keys[i] < keys[j]
	})

	hands := make([]HandHistory, 0, len(keys))
	for _, k := range keys {
		hands = append(hands, sections[k])
	}
	return hands, nil
}

// FormatAction renders a recorded action for the player at zero-based
// index. It reports false for actions PHH has no line for.
func FormatAction(index int, action game.ActionType, amount int) (string, bool) {
	player := fmt.Sprintf("p%d", index+1)
	switch action {
	case game.Fold:
		return player + " f", true
	case game.Check, game.Call:
		return player + " cc", true
	case game.Raise:
		if amount <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", player, amount), true
	default:
		return fmt.Sprintf("# %s %s %d", player, action, amount), true
	}
}
