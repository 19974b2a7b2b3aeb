package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderBoard prints the server's ASCII board with colored pieces
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isFileLine := i == 0 || i == len(lines)-1

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine:
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				fmt.Fprintf(w, "%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z':
				fmt.Fprintf(w, "%s%c%s", Red, char, Reset)
			case char >= '1' && char <= '8':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			default:
				fmt.Fprintf(w, "%c", char)
			}
		}
		fmt.Fprintln(w)
	}
}

// RenderGrid prints a board from wire cell codes ("WK", "BP", "  "),
// rank 8 on top. Squares named in marks are drawn as '*' when empty and
// highlighted when occupied.
func RenderGrid(w io.Writer, grid [][]string, marks []string) {
	marked := make(map[string]bool, len(marks))
	for _, m := range marks {
		marked[m] = true
	}

	fmt.Fprintf(w, "  %sa b c d e f g h%s\n", Cyan, Reset)
	for r, row := range grid {
		fmt.Fprintf(w, "%s%d%s ", Cyan, 8-r, Reset)
		for f, code := range row {
			square := string([]byte{byte('a' + f), byte('8' - r)})
			letter := pieceLetter(code)

			switch {
			case marked[square] && letter == '.':
				fmt.Fprintf(w, "%s*%s ", Green, Reset)
			case marked[square]:
				fmt.Fprintf(w, "%s%c%s ", Green, letter, Reset)
			case letter == '.':
				fmt.Fprint(w, ". ")
			case code[0] == 'W':
				fmt.Fprintf(w, "%s%c%s ", Blue, letter, Reset)
			default:
				fmt.Fprintf(w, "%s%c%s ", Red, letter, Reset)
			}
		}
		fmt.Fprintf(w, "%s%d%s\n", Cyan, 8-r, Reset)
	}
	fmt.Fprintf(w, "  %sa b c d e f g h%s\n", Cyan, Reset)
}

// pieceLetter maps a cell code to its FEN letter, '.' for empty
func pieceLetter(code string) rune {
	if len(code) != 2 || code[1] == ' ' {
		return '.'
	}
	if code[0] == 'B' {
		return rune(code[1]) | 0x20
	}
	return rune(code[1])
}

// ColorForTurn returns colored turn indicator for "W" or "B"
func ColorForTurn(turn string) string {
	if turn == "W" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
