package phone

import "unicode/utf8"

// Key identifies a keystroke kind reported by the input widget.
type Key int

const (
	KeyRune Key = iota
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// KeyEvent is a single keystroke delivered by the hosting input widget.
// Rune is only meaningful when Key is KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// AcceptKey filters keystrokes for a phone field: digits plus editing and
// navigation keys.
func AcceptKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyRune:
		return ev.Rune >= '0' && ev.Rune <= '9'
	case KeyBackspace, KeyDelete, KeyTab, KeyEnter,
		KeyLeft, KeyRight, KeyUp, KeyDown, KeyHome, KeyEnd:
		return true
	default:
		return false
	}
}

// Mask drives a text field from widget events: FormatPartial while the field
// is being edited and Format when it loses focus. Cursor positions are counted
// in runes. A Mask belongs to one field and is not safe for concurrent use.
type Mask struct {
	text   string
	cursor int
}

// NewMask returns a mask holding initial in partial form, cursor at the end.
func NewMask(initial string) *Mask {
	m := &Mask{}
	m.Change(initial, utf8.RuneCountInString(initial))
	return m
}

// Text returns the current field content.
func (m *Mask) Text() string {
	return m.text
}

// Cursor returns the cursor position in runes.
func (m *Mask) Cursor() int {
	return m.cursor
}

// Change is called whenever the field content changes. It returns the
// replacement text and the cursor shifted by the length delta introduced by
// formatting, clamped to the new text.
func (m *Mask) Change(text string, cursor int) (string, int) {
	formatted := FormatPartial(text)
	cursor += utf8.RuneCountInString(formatted) - utf8.RuneCountInString(text)
	m.text = formatted
	m.cursor = clamp(cursor, 0, utf8.RuneCountInString(formatted))
	return m.text, m.cursor
}

// Blur commits the field with the strict formatter. Empty fields stay empty.
func (m *Mask) Blur(text string) string {
	if text == "" {
		m.text, m.cursor = "", 0
		return ""
	}
	m.text = Format(text)
	m.cursor = utf8.RuneCountInString(m.text)
	return m.text
}

// Press applies one keystroke to the current text and cursor. Rejected keys
// leave the state untouched and return false. Enter commits like Blur.
// Backspace and Delete over separators also take the nearest digit, since
// FormatPartial would put a lone separator straight back.
func (m *Mask) Press(ev KeyEvent) bool {
	if !AcceptKey(ev) {
		return false
	}

	runes := []rune(m.text)
	cursor := clamp(m.cursor, 0, len(runes))

	switch ev.Key {
	case KeyRune:
		edited := make([]rune, 0, len(runes)+1)
		edited = append(edited, runes[:cursor]...)
		edited = append(edited, ev.Rune)
		edited = append(edited, runes[cursor:]...)
		m.Change(string(edited), cursor+1)
	case KeyBackspace:
		if cursor == 0 {
			return true
		}
		start := cursor - 1
		for start >= 0 && !isDigit(runes[start]) {
			start--
		}
		if start < 0 {
			start = cursor - 1
		}
		edited := append(append([]rune{}, runes[:start]...), runes[cursor:]...)
		m.Change(string(edited), start)
	case KeyDelete:
		if cursor == len(runes) {
			return true
		}
		end := cursor
		for end < len(runes) && !isDigit(runes[end]) {
			end++
		}
		if end == len(runes) {
			end = cursor
		}
		edited := append(append([]rune{}, runes[:cursor]...), runes[end+1:]...)
		m.Change(string(edited), cursor)
	case KeyLeft:
		m.cursor = clamp(cursor-1, 0, len(runes))
	case KeyRight:
		m.cursor = clamp(cursor+1, 0, len(runes))
	case KeyHome, KeyUp:
		m.cursor = 0
	case KeyEnd, KeyDown:
		m.cursor = len(runes)
	case KeyEnter, KeyTab:
		m.Blur(m.text)
	}

	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
