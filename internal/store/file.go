package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	yaml "go.yaml.in/yaml/v3"

	"github.com/amir-mohammad-HP/cronwatch/internal/job"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

const fileVersion = 1

type fileDocument struct {
	Version int      `yaml:"version"`
	Jobs    []Record `yaml:"jobs"`
}

// FileStore keeps the jobs in one YAML document, replaced atomically on
// every save.
type FileStore struct {
	path string
	log  logger.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, log logger.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FileStore{path: path, log: log}, nil
}

func (s *FileStore) Save(ctx context.Context, jobs []job.Job) error {
	doc := fileDocument{Version: fileVersion, Jobs: make([]Record, 0, len(jobs))}
	for _, j := range jobs {
		doc.Jobs = append(doc.Jobs, ToRecord(j))
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write jobs: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync jobs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Load returns no jobs when the file does not exist yet.
func (s *FileStore) Load(ctx context.Context) ([]job.Job, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if doc.Version > fileVersion {
		return nil, fmt.Errorf("unsupported store version %d", doc.Version)
	}

	jobs, err := fromRecords(doc.Jobs)
	s.log.Debug("loaded %d jobs from %s", len(jobs), s.path)
	return jobs, err
}

func (s *FileStore) Close() error {
	return nil
}
