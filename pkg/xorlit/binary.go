package xorlit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	bin "github.com/saylorsolutions/binmap"
)

const (
	tableMagic     uint16 = 0x7a17
	maxScreenedLen uint32 = 1 << 24
	// A key, a size, and at least the terminator.
	minEntryLen = 1 + 4 + 1
)

var (
	ErrInvalidData = errors.New("unable to use input data")
)

var _ bin.Mapper = (*screenedData)(nil)

// screenedData maps the buffer of a String, with its length read by an earlier mapper in the sequence.
type screenedData struct {
	data *[]byte
	size *uint32
}

func (m *screenedData) Read(r io.Reader, _ binary.ByteOrder) error {
	if *m.size == 0 || *m.size > maxScreenedLen {
		return fmt.Errorf("%w: screened buffer length %d out of range", ErrInvalidData, *m.size)
	}
	buf := make([]byte, *m.size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	*m.data = buf
	return nil
}

func (m *screenedData) Write(w io.Writer, _ binary.ByteOrder) error {
	_, err := w.Write(*m.data)
	return err
}

func (s *String) mapper(key *byte, size *uint32) bin.Mapper {
	return bin.MapSequence(
		bin.Byte(key),
		bin.Int(size),
		&screenedData{data: &s.data, size: size},
	)
}

func (s *String) write(w io.Writer, endian binary.ByteOrder) error {
	out := &String{data: s.buffer(), key: s.key}
	key, size := byte(out.key), uint32(len(out.data))
	return out.mapper(&key, &size).Write(w, endian)
}

func (s *String) read(r io.Reader, endian binary.ByteOrder) error {
	var (
		key  byte
		size uint32
	)
	if err := s.mapper(&key, &size).Read(r, endian); err != nil {
		if errors.Is(err, ErrInvalidData) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	s.key = Key(key)
	return nil
}

// MarshalBinary encodes the String as its key, its buffer length, and the screened buffer.
// The plain text is never written.
func (s *String) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.write(&buf, binary.BigEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *String) UnmarshalBinary(data []byte) error {
	return s.read(bytes.NewReader(data), binary.BigEndian)
}

// Table is an ordered set of screened literals that can be embedded as a single binary payload.
type Table struct {
	entries []*String
}

func NewTable(entries ...*String) *Table {
	return &Table{entries: entries}
}

func (t *Table) Len() int {
	return len(t.entries)
}

// At returns a copy of the String at index i, so unscreening it in place doesn't affect the Table.
func (t *Table) At(i int) *String {
	return t.entries[i].clone()
}

var _ bin.Mapper = (*tableEntries)(nil)

type tableEntries struct {
	t     *Table
	count *uint32
}

func (m *tableEntries) Read(r io.Reader, endian binary.ByteOrder) error {
	if *m.count > maxScreenedLen {
		return fmt.Errorf("%w: table count %d out of range", ErrInvalidData, *m.count)
	}
	var entries []*String
	for i := uint32(0); i < *m.count; i++ {
		entry := new(String)
		if err := entry.read(r, endian); err != nil {
			return fmt.Errorf("table entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	m.t.entries = entries
	return nil
}

func (m *tableEntries) Write(w io.Writer, endian binary.ByteOrder) error {
	for _, s := range m.t.entries {
		if err := s.write(w, endian); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) mapper(magic *uint16, count *uint32) bin.Mapper {
	return bin.MapSequence(
		bin.Int(magic),
		bin.Int(count),
		&tableEntries{t: t, count: count},
	)
}

func (t *Table) MarshalBinary() ([]byte, error) {
	var (
		buf   bytes.Buffer
		magic = tableMagic
		count = uint32(len(t.entries))
	)
	if err := t.mapper(&magic, &count).Write(&buf, binary.BigEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Table) UnmarshalBinary(data []byte) error {
	var (
		magic uint16
		count uint32
		r     = bytes.NewReader(data)
	)
	if err := bin.Int(&magic).Read(r, binary.BigEndian); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if magic != tableMagic {
		return fmt.Errorf("%w: bad table magic %#04x", ErrInvalidData, magic)
	}
	if err := bin.Int(&count).Read(r, binary.BigEndian); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if uint64(count)*minEntryLen > uint64(r.Len()) {
		return fmt.Errorf("%w: table count %d exceeds the %d remaining bytes", ErrInvalidData, count, r.Len())
	}
	if err := (&tableEntries{t: t, count: &count}).Read(r, binary.BigEndian); err != nil {
		if errors.Is(err, ErrInvalidData) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// LoadTable decodes a Table previously encoded with MarshalBinary.
func LoadTable(data []byte) (*Table, error) {
	t := new(Table)
	if err := t.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return t, nil
}

// MustLoadTable is like LoadTable, but panics on error.
// It's intended for package level variables in generated code, where the payload is embedded at build time.
func MustLoadTable(data []byte) *Table {
	t, err := LoadTable(data)
	if err != nil {
		panic(err)
	}
	return t
}
