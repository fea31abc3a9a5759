package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type segment struct {
	file   *os.File
	offset int64
}

func segmentPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("segment-%06d.wal", index))
}

func openSegment(dir string, index int) (*segment, error) {
	f, err := os.OpenFile(segmentPath(dir, index), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &segment{file: f, offset: st.Size()}, nil
}

func (s *segment) append(b []byte) error {
	n, err := s.file.Write(b)
	if err != nil {
		return err
	}
	s.offset += int64(n)
	return nil
}

func (s *segment) sync() error {
	return s.file.Sync()
}

func (s *segment) close() error {
	return s.file.Close()
}

// segmentFiles lists a journal directory's segments in index order.
// The fixed-width naming makes lexical order equal numeric order.
func segmentFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "segment-*.wal"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// lastSegmentIndex returns the highest existing segment index, or -1.
func lastSegmentIndex(dir string) (int, error) {
	files, err := segmentFiles(dir)
	if err != nil {
		return -1, err
	}
	if len(files) == 0 {
		return -1, nil
	}
	var idx int
	if _, err := fmt.Sscanf(filepath.Base(files[len(files)-1]), "segment-%06d.wal", &idx); err != nil {
		return -1, err
	}
	return idx, nil
}
