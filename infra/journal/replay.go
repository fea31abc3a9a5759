package journal

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

type ReplayHandler func(*Record) error

// Replay streams every record in seq order through fn and returns the
// last sequence seen. Segments are visited in index order; a
// non-monotonic sequence means the directory is corrupt.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := segmentFiles(dir)
	if err != nil {
		return 0, err
	}

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return lastSeq, errors.Wrap(err, "open segment")
		}

		for {
			rec, err := readRecord(f)
			if err != nil {
				if err == io.EOF {
					break
				}
				_ = f.Close()
				return lastSeq, errors.Wrapf(err, "read %s", path)
			}

			if rec.Seq <= lastSeq {
				_ = f.Close()
				return lastSeq, errors.Errorf("non-monotonic seq %d in %s", rec.Seq, path)
			}
			lastSeq = rec.Seq

			if err := fn(rec); err != nil {
				_ = f.Close()
				return lastSeq, err
			}
		}
		_ = f.Close()
	}

	return lastSeq, nil
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			// Torn tail write; treat as end of journal.
			return nil, io.EOF
		}
		return nil, err
	}

	t := RecordType(header[0])
	seq := binary.BigEndian.Uint64(header[1:9])
	ts := binary.BigEndian.Uint64(header[9:17])
	l := binary.BigEndian.Uint32(header[17:21])

	// The length field is untrusted until the CRC passes; cap it so a
	// corrupt header cannot force a huge allocation.
	if l > maxPayloadLen {
		return nil, errors.Errorf("record length %d exceeds limit", l)
	}

	data := make([]byte, l+4)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	payload := data[:l]
	crc := binary.BigEndian.Uint32(data[l:])

	if !CRC32Valid(append(header, payload...), crc) {
		return nil, errors.New("crc mismatch")
	}

	return &Record{
		Type: t,
		Seq:  seq,
		Time: int64(ts),
		Data: payload,
	}, nil
}
