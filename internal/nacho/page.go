package nacho

import (
	"math"
)

const (
	PageSize = 4096 // 4 kilobytes

	// RowsPerPage is the number of whole rows that fit into a page,
	// rows never span two pages.
	RowsPerPage = PageSize / RowSize

	// PageDiskSize is how many bytes of a page are persisted, page N starts
	// at N * PageDiskSize in the file. The file is a flat sequence of rows so
	// the unused tail of a page never hits disk. Files holding more than
	// RowsPerPage rows are therefore not byte compatible with a layout that
	// places pages at N * PageSize.
	PageDiskSize = RowsPerPage * RowSize

	DefaultMaxPages = 100
	TableMaxRows    = RowsPerPage * DefaultMaxPages

	// MaxPagesLimit keeps the row count of a full table within uint32.
	MaxPagesLimit = math.MaxUint32 / RowsPerPage
)

type PageIndex uint32

type Page struct {
	Index PageIndex
	Data  []byte
}

func newPage(pageIdx PageIndex) *Page {
	return &Page{
		Index: pageIdx,
		Data:  make([]byte, PageSize),
	}
}

// pageOffset returns where the page starts in the database file.
func pageOffset(pageIdx PageIndex) int64 {
	return int64(pageIdx) * PageDiskSize
}
