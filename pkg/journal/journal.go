// Package journal persists every tested candidate to an append-only,
// snappy-compressed log. The search engine writes one record per
// validation, so an interrupted or crashed run still leaves a complete,
// replayable account of what was tried.
package journal

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/snappy"
)

// Record kinds.
type RecordKind uint8

const (
	// KindRunHeader opens a journal: run ID and baseline size.
	KindRunHeader RecordKind = iota
	// KindCandidate is one tested candidate.
	KindCandidate
)

// ErrChecksum reports a corrupted record.
var ErrChecksum = errors.New("journal checksum mismatch")

// Record is one journal entry, JSON-encoded before compression.
type Record struct {
	Kind RecordKind `json:"kind"`

	// Header fields (KindRunHeader)
	RunID        string `json:"run_id,omitempty"`
	BaselineSize int    `json:"baseline_size,omitempty"`

	// Candidate fields (KindCandidate)
	Group        string  `json:"group,omitempty"`
	Members      int     `json:"members,omitempty"`
	Outcome      string  `json:"outcome,omitempty"`
	Disabled     int     `json:"disabled,omitempty"`
	BuildSeconds float64 `json:"build_seconds,omitempty"`
	Accepted     bool    `json:"accepted,omitempty"`
}

// Journal is the append-only candidate log.
type Journal struct {
	file   *os.File
	writer *bufio.Writer
	seq    uint64
	mu     sync.Mutex

	// Statistics
	totalWrites       uint64
	bytesUncompressed uint64
	bytesCompressed   uint64
}

// Stats summarizes journal write activity.
type Stats struct {
	Records           uint64
	BytesUncompressed uint64
	BytesCompressed   uint64
}

// Open creates or truncates the journal file and writes the run header.
func Open(path, runID string, baselineSize int) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{
		file:   file,
		writer: bufio.NewWriter(file),
	}

	if err := j.Append(Record{Kind: KindRunHeader, RunID: runID, BaselineSize: baselineSize}); err != nil {
		file.Close()
		return nil, err
	}
	return j, nil
}

// Append writes one record and syncs it to disk. Durability over
// throughput: a validation takes minutes, one fsync is noise.
func (j *Journal) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}

	j.seq++
	compressed := snappy.Encode(nil, data)

	j.totalWrites++
	j.bytesUncompressed += uint64(len(data))
	j.bytesCompressed += uint64(len(compressed))

	if err := j.writeFrame(rec.Kind, compressed); err != nil {
		j.seq--
		return fmt.Errorf("write journal record: %w", err)
	}
	if err := j.writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}

// writeFrame writes one framed record:
// [Seq:8][Kind:1][DataLen:4][Data:N][Checksum:4][Timestamp:8]
func (j *Journal) writeFrame(kind RecordKind, data []byte) error {
	if err := binary.Write(j.writer, binary.BigEndian, j.seq); err != nil {
		return err
	}
	if err := j.writer.WriteByte(byte(kind)); err != nil {
		return err
	}
	if err := binary.Write(j.writer, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	if _, err := j.writer.Write(data); err != nil {
		return err
	}
	if err := binary.Write(j.writer, binary.BigEndian, crc32.ChecksumIEEE(data)); err != nil {
		return err
	}
	return binary.Write(j.writer, binary.BigEndian, time.Now().Unix())
}

// Stats returns write statistics.
func (j *Journal) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Stats{
		Records:           j.totalWrites,
		BytesUncompressed: j.bytesUncompressed,
		BytesCompressed:   j.bytesCompressed,
	}
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

// Replay reads all records from a journal file. A truncated final frame is
// tolerated (the run was interrupted mid-write); a checksum mismatch on a
// complete frame is not.
func Replay(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var records []Record
	for {
		rec, err := readFrame(reader)
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Torn tail from an interrupted write; everything before it
			// is intact.
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func readFrame(reader *bufio.Reader) (Record, error) {
	var rec Record

	var seq uint64
	if err := binary.Read(reader, binary.BigEndian, &seq); err != nil {
		return rec, err
	}
	kind, err := reader.ReadByte()
	if err != nil {
		return rec, eofAsTorn(err)
	}
	var dataLen uint32
	if err := binary.Read(reader, binary.BigEndian, &dataLen); err != nil {
		return rec, eofAsTorn(err)
	}
	compressed := make([]byte, dataLen)
	if _, err := io.ReadFull(reader, compressed); err != nil {
		return rec, eofAsTorn(err)
	}
	var checksum uint32
	if err := binary.Read(reader, binary.BigEndian, &checksum); err != nil {
		return rec, eofAsTorn(err)
	}
	var timestamp int64
	if err := binary.Read(reader, binary.BigEndian, &timestamp); err != nil {
		return rec, eofAsTorn(err)
	}

	if crc32.ChecksumIEEE(compressed) != checksum {
		return rec, fmt.Errorf("%w: record %d", ErrChecksum, seq)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return rec, fmt.Errorf("decompress record %d: %w", seq, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode record %d: %w", seq, err)
	}
	if rec.Kind != RecordKind(kind) {
		return rec, fmt.Errorf("record %d: frame kind %d disagrees with body %d", seq, kind, rec.Kind)
	}
	return rec, nil
}

// eofAsTorn maps a mid-frame EOF to ErrUnexpectedEOF so Replay can tell a
// torn tail from a clean end of file.
func eofAsTorn(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
