package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
	"gopkg.in/ini.v1"
)

const maxFileKeyLen = 50

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]`)

// FileRowStore keeps one INI file per requester with the rows of the last
// upload. Sections are row numbers and keys are column letters. Values are
// written Go-quoted so quotes, comment characters and line breaks in a cell
// read back unchanged.
type FileRowStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileRowStore(dir string) (*FileRowStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create row store dir: %w", err)
	}

	return &FileRowStore{dir: dir}, nil
}

// FileKey turns a requester e-mail into a safe file name fragment.
func FileKey(requester string) string {
	key := unsafeFileChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(requester)), "_")
	if len(key) > maxFileKeyLen {
		key = key[:maxFileKeyLen]
	}
	return key
}

// Path returns the file that holds the requester rows.
func (s *FileRowStore) Path(requester string) string {
	key := FileKey(requester)
	if key == "" {
		return filepath.Join(s.dir, "temp.ini")
	}
	return filepath.Join(s.dir, "temp_"+key+".ini")
}

func (s *FileRowStore) Save(ctx context.Context, requester string, rows *entity.RowStore) error {
	cfg := ini.Empty()
	for _, row := range rows.Rows() {
		sec, err := cfg.NewSection(strconv.Itoa(row.Number))
		if err != nil {
			return err
		}

		cols := make([]string, 0, len(row.Cells))
		for col := range row.Cells {
			cols = append(cols, col)
		}
		slices.SortFunc(cols, compareColumns)

		for _, col := range cols {
			if _, err := sec.NewKey(col, strconv.Quote(row.Cells[col])); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(requester)
	tmp := path + ".tmp"
	if err := cfg.SaveTo(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	slog.DebugContext(ctx, "row store saved", "path", path, "rows", rows.Len())

	return nil
}

func (s *FileRowStore) Load(ctx context.Context, requester string) (*entity.RowStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(requester)
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
	}, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerror.ErrNotFound
		}
		return nil, err
	}

	var rows []entity.Row
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		number, err := strconv.Atoi(sec.Name())
		if err != nil {
			slog.WarnContext(ctx, "skip non numeric section in row store", "path", path, "section", sec.Name())
			continue
		}

		cells := make(map[string]string, len(sec.Keys()))
		for _, key := range sec.Keys() {
			cells[strings.ToUpper(key.Name())] = cellValue(key.Value())
		}
		rows = append(rows, entity.Row{Number: number, Cells: cells})
	}

	return entity.NewRowStore(rows), nil
}

// Delete removes the requester file. Missing files are not an error.
func (s *FileRowStore) Delete(ctx context.Context, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(requester)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	slog.DebugContext(ctx, "row store deleted", "path", path)

	return nil
}

// cellValue undoes the quoting applied by Save. Hand-written files with
// plain values are taken as they are.
func cellValue(raw string) string {
	if v, err := strconv.Unquote(raw); err == nil {
		return v
	}
	return raw
}

// compareColumns orders "B" before "AA".
func compareColumns(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
