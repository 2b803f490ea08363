package nacho

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	UsernameMaxLength = 255
	EmailMaxLength    = 255

	IDSize       = 4
	UsernameSize = UsernameMaxLength + 1
	EmailSize    = EmailMaxLength + 1

	IDOffset       = 0
	UsernameOffset = IDOffset + IDSize
	EmailOffset    = UsernameOffset + UsernameSize

	RowSize = IDSize + UsernameSize + EmailSize
)

// Row is a single record of the users table. Text fields are stored
// zero padded to their field size, so they must not contain zero bytes.
type Row struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r Row) String() string {
	return fmt.Sprintf("%d, %s, %s", r.ID, r.Username, r.Email)
}

// MarshalRow serializes aRow into the first RowSize bytes of dst.
// Text longer than the field's maximum length is cut at the maximum,
// callers are expected to reject such rows before getting here.
func MarshalRow(aRow *Row, dst []byte) {
	_ = dst[RowSize-1]

	binary.LittleEndian.PutUint32(dst[IDOffset:IDOffset+IDSize], aRow.ID)
	marshalText(aRow.Username, dst[UsernameOffset:UsernameOffset+UsernameSize])
	marshalText(aRow.Email, dst[EmailOffset:EmailOffset+EmailSize])
}

// UnmarshalRow is the inverse of MarshalRow.
func UnmarshalRow(src []byte, aRow *Row) {
	_ = src[RowSize-1]

	aRow.ID = binary.LittleEndian.Uint32(src[IDOffset : IDOffset+IDSize])
	aRow.Username = unmarshalText(src[UsernameOffset : UsernameOffset+UsernameSize])
	aRow.Email = unmarshalText(src[EmailOffset : EmailOffset+EmailSize])
}

// Last byte of every text field is reserved for the terminator.
func marshalText(value string, field []byte) {
	n := copy(field[:len(field)-1], value)
	clear(field[n:])
}

func unmarshalText(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}
