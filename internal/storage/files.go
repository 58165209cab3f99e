package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/google/uuid"
)

const fileExt = ".json"

// FileStore keeps one JSON file per campaign under a root directory.
// Each id is written exactly once, so no locking is needed.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the storage root.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save assigns a fresh id to c, writes it and returns the id.
func (s *FileStore) Save(ctx context.Context, c *types.Campaign) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.ID = uuid.New().String()
	if err := s.write(c); err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *FileStore) write(c *types.Campaign) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create storage dir: %v", types.ErrStorage, err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal campaign: %v", types.ErrStorage, err)
	}

	// Write to a temp file and rename so readers never observe a partial record.
	tmp, err := os.CreateTemp(s.dir, c.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", types.ErrStorage, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write campaign: %v", types.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close campaign file: %v", types.ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path(c.ID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: failed to commit campaign file: %v", types.ErrStorage, err)
	}
	return nil
}

// Load reads the campaign stored under id.
func (s *FileStore) Load(ctx context.Context, id string) (*types.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", types.ErrNotFound, id)
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to read campaign %s: %v", types.ErrStorage, id, err)
	}

	var c types.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: corrupt campaign %s: %v", types.ErrStorage, id, err)
	}
	return &c, nil
}

// List summarizes every stored campaign, newest first. A missing root yields none.
func (s *FileStore) List(ctx context.Context) ([]types.CampaignSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to list campaigns: %v", types.ErrStorage, err)
	}

	var summaries []types.CampaignSummary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		c, err := s.Load(ctx, strings.TrimSuffix(name, fileExt))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		summaries = append(summaries, types.CampaignSummary{
			ID:        c.ID,
			Goal:      c.Goal,
			Designer:  c.Designer,
			CreatedAt: c.CreatedAt,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt > summaries[j].CreatedAt
	})
	return summaries, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// ValidID reports whether id is a canonical uuid string. Anything else can never
// name a stored campaign, which also keeps ids from escaping the storage root.
func ValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}
