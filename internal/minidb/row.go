package minidb

import (
	"bytes"
	"fmt"
)

// Row is the single fixed schema record the engine stores. The id
// doubles as the B-tree key, text fields are null padded on disk.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func (r Row) Size() uint64 {
	return RowSize
}

func (r Row) Marshal() ([]byte, error) {
	if len(r.Username) > UsernameSize {
		return nil, fmt.Errorf("username exceeds %d bytes", UsernameSize)
	}
	if len(r.Email) > EmailSize {
		return nil, fmt.Errorf("email exceeds %d bytes", EmailSize)
	}

	buf := make([]byte, RowSize)

	i := uint64(0)
	marshalUint32(buf, r.ID, i)
	i += 4

	copy(buf[i:i+UsernameSize], r.Username)
	i += UsernameSize

	copy(buf[i:i+EmailSize], r.Email)

	return buf, nil
}

func UnmarshalRow(buf []byte, aRow *Row) error {
	if len(buf) < RowSize {
		return fmt.Errorf("buffer too small for row: %d", len(buf))
	}

	i := uint64(0)
	aRow.ID = unmarshalUint32(buf, i)
	i += 4

	aRow.Username = string(bytes.TrimRight(buf[i:i+UsernameSize], "\x00"))
	i += UsernameSize

	aRow.Email = string(bytes.TrimRight(buf[i:i+EmailSize], "\x00"))

	return nil
}
