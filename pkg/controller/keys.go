package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// AsKey names a key press the way bindings are declared: the rune itself for printable
// keys ("n", "X"), otherwise the tcell key name with any modifiers ("Shift+Left", "Esc").
func AsKey(evt *tcell.EventKey) string {
	if evt.Key() == tcell.KeyRune {
		return string(evt.Rune())
	}

	name, ok := tcell.KeyNames[evt.Key()]
	if !ok {
		name = fmt.Sprintf("Key[%d]", evt.Key())
	}

	mods := evt.Modifiers()

	var prefix strings.Builder

	if mods&tcell.ModCtrl != 0 && !strings.HasPrefix(name, "Ctrl-") {
		prefix.WriteString("Ctrl+")
	}

	if mods&tcell.ModAlt != 0 {
		prefix.WriteString("Alt+")
	}

	if mods&tcell.ModShift != 0 {
		prefix.WriteString("Shift+")
	}

	return prefix.String() + name
}

// fillShortcuts lists events in the table starting at row. Move shortcuts get their own column;
// the rest are split over the first two. Every column is sorted alphabetically.
func fillShortcuts(table *tview.Table, row int, events map[string]KeyEvent) {
	var misc, moves []string

	for key, event := range events {
		text := fmt.Sprintf("[orange]<%s>[white] %s", key, event.Description)

		if strings.HasPrefix(event.Description, "Move") {
			moves = append(moves, text)
		} else {
			misc = append(misc, text)
		}
	}

	sort.Strings(misc)
	sort.Strings(moves)

	half := (len(misc) + 1) / 2
	shortcuts := [][]string{misc[:half], misc[half:], moves}

	for i := 0; i < half || i < len(moves); i++ {
		for col := range shortcuts {
			if i < len(shortcuts[col]) {
				table.SetCell(row+i, col, tview.NewTableCell(shortcuts[col][i]).SetExpansion(1))
			}
		}
	}
}
