package editor

import (
	"bufio"
	"fmt"
)

type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyByte         // a byte to insert, in Key.Ch
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeySave
	KeySaveAs
	KeyQuit
	KeyEscape
)

var keyNames = [...]string{
	KeyNone:      "none",
	KeyByte:      "byte",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeySave:      "save",
	KeySaveAs:    "save-as",
	KeyQuit:      "quit",
	KeyEscape:    "escape",
}

func (k KeyKind) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("KeyKind(%d)", int(k))
}

// Key is one decoded keypress.
type Key struct {
	Kind KeyKind
	Ch   byte
}

func ctrl(c byte) byte { return c & 0x1f }

// ReadKey decodes the next keypress from r. Escape sequences for the cursor
// keys come in CSI (ESC [) and SS3 (ESC O) forms. An ESC with nothing
// buffered behind it is a plain Escape.
func ReadKey(r *bufio.Reader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch b {
	case '\x1b':
		if r.Buffered() == 0 {
			return Key{Kind: KeyEscape}, nil
		}
		return readEscape(r)
	case '\r', '\n':
		return Key{Kind: KeyEnter}, nil
	case 0x7f, ctrl('h'):
		return Key{Kind: KeyBackspace}, nil
	case ctrl('s'):
		return Key{Kind: KeySave}, nil
	case ctrl('e'):
		return Key{Kind: KeySaveAs}, nil
	case ctrl('q'), ctrl('c'):
		return Key{Kind: KeyQuit}, nil
	case '\t':
		return Key{Kind: KeyByte, Ch: b}, nil
	}
	if b < 0x20 {
		return Key{Kind: KeyNone}, nil
	}
	return Key{Kind: KeyByte, Ch: b}, nil
}

func readEscape(r *bufio.Reader) (Key, error) {
	intro, err := r.ReadByte()
	if err != nil {
		return Key{Kind: KeyEscape}, nil
	}
	switch intro {
	case 'O':
		final, err := r.ReadByte()
		if err != nil {
			return Key{Kind: KeyNone}, nil
		}
		return Key{Kind: finalKey(final)}, nil
	case '[':
	default:
		// Alt+key: drop the modifier.
		r.UnreadByte()
		return Key{Kind: KeyNone}, nil
	}

	var params []byte
	for {
		c, err := r.ReadByte()
		if err != nil {
			return Key{Kind: KeyNone}, nil
		}
		if c >= '0' && c <= '9' || c == ';' {
			params = append(params, c)
			continue
		}
		if c == '~' {
			return Key{Kind: tildeKey(string(params))}, nil
		}
		return Key{Kind: finalKey(c)}, nil
	}
}

func finalKey(c byte) KeyKind {
	switch c {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	case 'H':
		return KeyHome
	case 'F':
		return KeyEnd
	}
	return KeyNone
}

func tildeKey(params string) KeyKind {
	switch params {
	case "1", "7":
		return KeyHome
	case "4", "8":
		return KeyEnd
	case "3":
		return KeyDelete
	}
	return KeyNone
}
