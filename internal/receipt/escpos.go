package receipt

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// CodePage1256 is the ESC t table number most Epson-compatible printers use
// for Windows-1256 Arabic.
const CodePage1256 byte = 50

// ESCPOS returns the receipt as an ESC/POS byte stream. Text is encoded as
// Windows-1256; characters outside it print as '?'.
func ESCPOS(tx *transaction.Transaction, opts Options) []byte {
	opts = opts.withDefaults()

	var buf bytes.Buffer

	enc := encoding.ReplaceUnsupported(charmap.Windows1256.NewEncoder())

	buf.Write([]byte{esc, '@'})
	buf.Write([]byte{esc, 't', CodePage1256})

	for _, l := range layout(tx, opts) {
		a := byte(0)
		if l.align == alignCenter {
			a = 1
		}

		buf.Write([]byte{esc, 'a', a})

		if l.bold {
			buf.Write([]byte{esc, 'E', 1})
		}

		text := format(l, opts.Width)
		if l.align == alignCenter && l.right == "" && l.rule == 0 {
			text = l.left
		}

		encoded, err := enc.String(text)
		if err != nil {
			encoded = text
		}

		buf.WriteString(encoded)
		buf.WriteByte(lf)

		if l.bold {
			buf.Write([]byte{esc, 'E', 0})
		}
	}

	buf.Write([]byte{lf, lf, lf})
	buf.Write([]byte{gs, 'V', 0x01})

	return buf.Bytes()
}
