package trace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingJSONLStore is a JSONLStore whose file is rolled over by lumberjack
// once it reaches MaxSize. Queries read the backups as well.
type RotatingJSONLStore struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

// NewRotatingJSONLStore rotates path at maxSizeMB, keeping maxBackups files
// for at most maxAgeDays (0 keeps everything).
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &RotatingJSONLStore{out: &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}}, nil
}

func (s *RotatingJSONLStore) Append(ctx context.Context, rec RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := encodeLine(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(line)
	return err
}

// Query scans the backups and the active file. Results are ordered by run
// timestamp since backups are named by rotation time, not content.
func (s *RotatingJSONLStore) Query(ctx context.Context, q Query) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var res []RunRecord
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			// Pruned by lumberjack between glob and open.
			continue
		}
		res, err = scanRecords(ctx, f, q, res)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(res, func(a, b RunRecord) int { return a.Timestamp.Compare(b.Timestamp) })
	return res, nil
}

// files lists lumberjack backups (<name>-<timestamp><ext>) followed by the
// active file.
func (s *RotatingJSONLStore) files() ([]string, error) {
	path := s.out.Filename
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	backups, err := filepath.Glob(stem + "-*" + ext)
	if err != nil {
		return nil, err
	}
	slices.Sort(backups)
	return append(backups, path), nil
}

func (s *RotatingJSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}
