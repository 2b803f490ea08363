package nacho

import (
	"context"
	"io"
)

type DBFile interface {
	io.ReaderAt
	io.WriterAt
	io.Seeker
	io.Closer
}

type Pager interface {
	GetPage(context.Context, PageIndex) (*Page, error)
	Flush(context.Context, PageIndex, int) error
	IsLoaded(PageIndex) bool
	Release(PageIndex)
	ResidentPages() int
	MaxPages() int
	FileSize() int64
	Close() error
}
