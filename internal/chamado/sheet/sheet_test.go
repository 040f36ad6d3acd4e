package sheet

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, cells map[string]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		idx, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "ignored"))
		f.SetActiveSheet(idx)
	}

	for cell, v := range cells {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSXSkipsEmptyRows(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", map[string]any{
		"A1": "Titulo",
		"B1": "Descricao",
		"A2": "Impressora",
		"B2": "Sala 3",
		"A4": "Rede",
		"C4": 42,
	})

	store, err := Parse(context.Background(), buf, "chamados.xlsx")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 4}, store.Numbers())

	row, ok := store.Get(4)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"A": "Rede", "C": "42"}, row.Cells)
}

func TestParseXLSXReadsActiveSheet(t *testing.T) {
	buf := buildWorkbook(t, "Dados", map[string]any{"B2": "ativo"})

	store, err := Parse(context.Background(), buf, "CHAMADOS.XLSX")
	require.NoError(t, err)

	assert.Equal(t, []int{2}, store.Numbers())
	row, _ := store.Get(2)
	v, _ := row.Value("b")
	assert.Equal(t, "ativo", v)
}

func TestParseXLSXEmptyWorkbook(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", nil)

	_, err := Parse(context.Background(), buf, "vazio.xlsx")
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestParseXLSXCorrupted(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader("not a zip"), "x.xlsx")
	assert.Error(t, err)
}

func TestParseCSVKeepsLineNumbers(t *testing.T) {
	data := "titulo;descricao\n\nImpressora;Sala 3\n;;\nRede;\"andar; 2\"\n"

	store, err := Parse(context.Background(), strings.NewReader(data), "chamados.csv")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 5}, store.Numbers())
	row, _ := store.Get(5)
	assert.Equal(t, "andar; 2", row.Cells["B"])
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	data := "\ufeffEquipamento;Local\nImpressora;Sala 1\n"

	store, err := Parse(context.Background(), strings.NewReader(data), "lote.csv")
	require.NoError(t, err)

	header, _ := store.Get(1)
	assert.Equal(t, "Equipamento", header.Cells["A"])
	assert.Equal(t, "Local", header.Cells["B"])
	row, _ := store.Get(2)
	assert.Equal(t, "Impressora", row.Cells["A"])

	store, err = Parse(context.Background(), strings.NewReader("\ufeff\"Título\",Local\n"), "lote.csv")
	require.NoError(t, err)
	header, _ = store.Get(1)
	assert.Equal(t, "Título", header.Cells["A"])
}

func TestParseCSVLatin1(t *testing.T) {
	data := []byte("caf\xe9,a\xe7\xfacar\n")

	store, err := Parse(context.Background(), bytes.NewReader(data), "x.csv")
	require.NoError(t, err)

	row, _ := store.Get(1)
	assert.Equal(t, "café", row.Cells["A"])
	assert.Equal(t, "açúcar", row.Cells["B"])
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = DetectFormat(" a.CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = DetectFormat("a.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse(context.Background(), strings.NewReader(""), "a.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSniffComma(t *testing.T) {
	assert.Equal(t, ';', sniffComma([]byte("a;b;c\n1,2")))
	assert.Equal(t, ',', sniffComma([]byte("a,b\n")))
}
