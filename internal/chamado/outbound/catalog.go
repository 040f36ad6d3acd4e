package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

// FileCatalog reads the exported service catalog and caches service details
// as JSON files, one per service and environment.
type FileCatalog struct {
	dir string
	env string
	mu  sync.RWMutex
}

func NewFileCatalog(dir string, env entity.Environment) (*FileCatalog, error) {
	if err := os.MkdirAll(filepath.Join(dir, "services"), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	return &FileCatalog{dir: dir, env: strings.ToLower(string(env))}, nil
}

func (c *FileCatalog) listPath() string {
	return filepath.Join(c.dir, "servicos_"+c.env+".json")
}

func (c *FileCatalog) detailsPath(documentID string) (string, error) {
	if _, err := strconv.ParseUint(documentID, 10, 64); err != nil {
		return "", errors.New("service id must be numeric")
	}

	return filepath.Join(c.dir, "services", "servico_detalhes_"+documentID+"_"+c.env+".json"), nil
}

func (c *FileCatalog) read(path string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, pkgerror.ErrNotFound
	}
	return data, err
}

// List returns the catalog entries that carry a document id.
func (c *FileCatalog) List(ctx context.Context) ([]entity.Service, error) {
	data, err := c.read(c.listPath())
	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("catalog file %s is not valid json", filepath.Base(c.listPath()))
	}

	values := allValues(data)
	services := make([]entity.Service, 0, len(values))
	for _, v := range values {
		s := serviceFrom(v)
		if s.DocumentID == "" {
			continue
		}
		services = append(services, s)
	}

	return services, nil
}

func (c *FileCatalog) CachedDetails(ctx context.Context, documentID string) (entity.Service, error) {
	path, err := c.detailsPath(documentID)
	if err != nil {
		return entity.Service{}, err
	}

	data, err := c.read(path)
	if err != nil {
		return entity.Service{}, err
	}

	record := firstValue(data)
	if !record.IsObject() {
		return entity.Service{}, pkgerror.ErrNotFound
	}

	return serviceFrom(record), nil
}

// SaveDetails writes service in the dataset answer layout so cached files and
// Fluig answers are read the same way.
func (c *FileCatalog) SaveDetails(ctx context.Context, service entity.Service) error {
	path, err := c.detailsPath(service.DocumentID)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"content": map[string]any{"values": []entity.Service{service}},
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
