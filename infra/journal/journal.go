package journal

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

const headerSize = 1 + 8 + 8 + 4

// maxPayloadLen caps a record's declared payload size during reads.
// Command payloads are a few dozen bytes; anything near this limit is
// a corrupt length field.
const maxPayloadLen = 1 << 20

type Config struct {
	Dir         string
	SegmentSize int64
	// Sync forces an fsync after every append. Slower, but a crash
	// cannot lose an acknowledged command.
	Sync bool
}

const DefaultSegmentSize = 2 * 1024 * 1024

type Journal struct {
	dir      string
	segSize  int64
	sync     bool
	current  *segment
	segIndex int
}

// Open creates the journal directory if needed and resumes appending
// to the newest existing segment.
func Open(cfg Config) (*Journal, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create journal dir")
	}
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = DefaultSegmentSize
	}

	idx, err := lastSegmentIndex(cfg.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "list journal segments")
	}
	if idx < 0 {
		idx = 0
	}

	seg, err := openSegment(cfg.Dir, idx)
	if err != nil {
		return nil, errors.Wrap(err, "open journal segment")
	}

	return &Journal{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		sync:     cfg.Sync,
		current:  seg,
		segIndex: idx,
	}, nil
}

func (j *Journal) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))

	buf := make([]byte, headerSize+int(payloadLen)+4)
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[21:], r.Data)

	crc := CRC32(buf[:headerSize+int(payloadLen)])
	binary.BigEndian.PutUint32(buf[headerSize+int(payloadLen):], crc)

	if err := j.current.append(buf); err != nil {
		return errors.Wrap(err, "append journal record")
	}
	if j.sync {
		if err := j.current.sync(); err != nil {
			return errors.Wrap(err, "sync journal segment")
		}
	}

	if j.current.offset >= j.segSize {
		return j.rotate()
	}
	return nil
}

func (j *Journal) rotate() error {
	_ = j.current.close()
	j.segIndex++

	seg, err := openSegment(j.dir, j.segIndex)
	if err != nil {
		return errors.Wrap(err, "rotate journal segment")
	}
	j.current = seg
	return nil
}

// TruncateBefore removes whole segments whose records are all covered
// by a snapshot at seq. The active segment is never removed.
func (j *Journal) TruncateBefore(seq uint64) error {
	files, err := segmentFiles(j.dir)
	if err != nil {
		return err
	}

	active := segmentPath(j.dir, j.segIndex)
	for _, path := range files {
		if path == active {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

func (j *Journal) Close() error {
	return j.current.close()
}
