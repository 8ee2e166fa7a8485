package csvsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_SemicolonWithHeader(t *testing.T) {
	in := "Name;Vorname;KundenNr;Instrument;SerienNr\n" +
		"Muster;Max;1001;Geige;SN-1\n" +
		"\n" +
		"Beispiel;Erika;1002;Cello;SN-2\n"

	src, err := Read(strings.NewReader(in), Options{Delimiter: ';', HeaderRows: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Vorname", "KundenNr", "Instrument", "SerienNr"}, src.Header())
	require.Len(t, src.Rows, 2)
	assert.Equal(t, 2, src.Rows[0].Line)
	assert.Equal(t, 4, src.Rows[1].Line)
	assert.Equal(t, "Cello", src.Rows[1].Field(3))
	assert.Equal(t, "", src.Rows[1].Field(9))
}

func TestRead_CommaQuotedTwoHeaders(t *testing.T) {
	in := "Export 2024\n" +
		"Datum,Kunde,Bestellung,Beleg,Name,Betrag\n" +
		"01.02.2024,1001,B-77,R100,\"Muster, Max\",\"45,00 €\"\n"

	src, err := Read(strings.NewReader(in), Options{Delimiter: ',', HeaderRows: 2})
	require.NoError(t, err)

	assert.Len(t, src.Headers, 2)
	require.Len(t, src.Rows, 1)
	assert.Equal(t, 3, src.Rows[0].Line)
	assert.Equal(t, "Muster, Max", src.Rows[0].Field(4))
	assert.Equal(t, "45,00 €", src.Rows[0].Field(5))
}

func TestRead_StripsUTF8BOM(t *testing.T) {
	in := "\xEF\xBB\xBFKundenNr;Betrag\n1;2\n"
	src, err := Read(strings.NewReader(in), Options{Delimiter: ';', HeaderRows: 1})
	require.NoError(t, err)
	assert.Equal(t, "KundenNr", src.Header()[0])
}

func TestRead_Windows1252(t *testing.T) {
	// "Müller;Geige" with ü encoded as 0xFC
	in := []byte("h1;h2\nM\xFCller;Geige\n")
	src, err := Read(strings.NewReader(string(in)), Options{Delimiter: ';', HeaderRows: 1, Encoding: EncodingWindows1252})
	require.NoError(t, err)
	require.Len(t, src.Rows, 1)
	assert.Equal(t, "Müller", src.Rows[0].Field(0))
}

func TestRead_UnknownEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("a;b\n"), Options{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("h\nv\n"), 0o644))

	src, err := ReadFile(path, Options{HeaderRows: 1})
	require.NoError(t, err)
	require.Len(t, src.Rows, 1)
	assert.Equal(t, "v", src.Rows[0].Field(0))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}
