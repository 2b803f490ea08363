package nacho

import (
	"context"
	"fmt"
)

type Cursor struct {
	Table      *Table
	RowNum     uint32
	EndOfTable bool
}

// RowSlot addresses the bytes of a single row inside a cached page.
type RowSlot struct {
	Page   *Page
	Offset int
	Length int
}

func (s RowSlot) Bytes() []byte {
	return s.Page.Data[s.Offset : s.Offset+s.Length]
}

// Value returns the slot of the row the cursor points at, loading its page
// when needed. The end of table flag is not checked, an append cursor points
// at a row that does not exist yet.
func (c *Cursor) Value(ctx context.Context) (RowSlot, error) {
	pageIdx, offset := RowLocation(c.RowNum)

	aPage, err := c.Table.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return RowSlot{}, fmt.Errorf("cursor value: %w", err)
	}

	return RowSlot{
		Page:   aPage,
		Offset: offset,
		Length: RowSize,
	}, nil
}

func (c *Cursor) Advance() {
	c.RowNum += 1
	if c.RowNum >= c.Table.NumRows {
		c.EndOfTable = true
	}
}
