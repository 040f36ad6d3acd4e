package sheet

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const sniffBytes = 4096

var utf8BOM = []byte("\ufeff")

func parseCSV(ctx context.Context, r io.Reader) ([]entity.Row, error) {
	br := bufio.NewReaderSize(r, sniffBytes)
	head, err := br.Peek(sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	sample := head
	if len(head) == sniffBytes {
		sample = trimPartialRune(head)
	}

	var src io.Reader = br
	switch {
	case !utf8.Valid(sample):
		// Excel on Windows exports CSV as Latin-1.
		src = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	case bytes.HasPrefix(head, utf8BOM):
		// Excel "CSV UTF-8" exports start with a byte order mark.
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(src)
	reader.Comma = sniffComma(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []entity.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.WarnContext(ctx, "failed to read csv line", "error", err)
			return nil, err
		}

		// blank lines are skipped by the reader, so number rows by their line
		number, _ := reader.FieldPos(0)
		row, ok, err := buildRow(number, record)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// sniffComma prefers ';' when the first line has more of them than ','.
func sniffComma(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// trimPartialRune drops a multi-byte rune cut by the peek window.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		r, _ := utf8.DecodeLastRune(b)
		if r != utf8.RuneError {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
