package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/attar/internal/encoding"
)

func readAll(t *testing.T, input []byte, hint string) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input), hint)
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "id,name,name_ar,price\noud-1,Cambodi Oud,عود كمبودي,2500\n"
	assert.Equal(t, input, readAll(t, []byte(input), ""))
}

func TestNewUTF8Reader_Latin1(t *testing.T) {
	// Windows-1252 encoded "Eau de Cèdre;12,50\n". è = 0xE8.
	latin1 := []byte{'E', 'a', 'u', ' ', 'd', 'e', ' ', 'C', 0xE8, 'd', 'r', 'e', ';', '1', '2', ',', '5', '0', '\n'}
	assert.Equal(t, "Eau de Cèdre;12,50\n", readAll(t, latin1, ""))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id;name\n")...)
	assert.Equal(t, "id;name\n", readAll(t, input, ""))
}

func TestNewUTF8Reader_ArabicHint(t *testing.T) {
	want := "الرمز,الاسم,السعر\nA1,دهن العود,950\n"

	encoded, err := charmap.Windows1256.NewEncoder().String(want)
	require.NoError(t, err)

	assert.Equal(t, want, readAll(t, []byte(encoded), "Windows-1256"))
}

func TestNewUTF8Reader_HintIgnoredForUTF8(t *testing.T) {
	input := "الرمز,الاسم\n"
	assert.Equal(t, input, readAll(t, []byte(input), "windows-1256"))
}

func TestLookup(t *testing.T) {
	_, ok := encoding.Lookup("ISO-8859-6")
	assert.True(t, ok)

	_, ok = encoding.Lookup("koi8-r")
	assert.False(t, ok)
}
