package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// MatchNumberToOption converts a number string ("1", "2", ...) to the
// corresponding menu button text, so users can type the number instead of
// tapping. Returns empty string if no match.
func MatchNumberToOption(text string, buttons [][]MenuButton) string {
	text = strings.TrimSpace(text)
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 {
		return ""
	}

	idx := 1
	for _, row := range buttons {
		for _, btn := range row {
			if idx == num {
				return btn.Text
			}
			idx++
		}
	}
	return ""
}

// FormatNumberedMenu creates a numbered text menu from button rows, for
// surfaces that cannot render keyboards.
func FormatNumberedMenu(text string, rows [][]MenuButton) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")

	idx := 1
	for _, row := range rows {
		for _, btn := range row {
			sb.WriteString(fmt.Sprintf("%d. %s\n", idx, btn.Text))
			idx++
		}
	}
	sb.WriteString("\nChoose an option:")
	return sb.String()
}
