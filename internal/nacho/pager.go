package nacho

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

var (
	ErrPageOutOfBounds = errors.New("page index out of bounds")
	ErrFlushEmptyPage  = errors.New("flushing page that is not loaded")
)

type pagerImpl struct {
	maxPages int

	// pages has a fixed length of maxPages, index = PageIndex,
	// nil entries are pages that have not been loaded yet
	pages []*Page

	file     DBFile
	fileSize int64

	logger  *zap.Logger
	metrics *Metrics
}

// NewPager wraps the database file with a page cache of a fixed capacity.
// The file size is captured once here, it determines which pages exist on disk.
func NewPager(logger *zap.Logger, file DBFile, maxPages int, metrics *Metrics) (*pagerImpl, error) {
	if maxPages <= 0 {
		return nil, fmt.Errorf("max pages must be positive, got %d", maxPages)
	}
	if maxPages > MaxPagesLimit {
		return nil, fmt.Errorf("max pages must not exceed %d, got %d", MaxPagesLimit, maxPages)
	}

	fileSize, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end of database file: %w", err)
	}

	return &pagerImpl{
		maxPages: maxPages,
		pages:    make([]*Page, maxPages),
		file:     file,
		fileSize: fileSize,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

func (p *pagerImpl) MaxPages() int {
	return p.maxPages
}

func (p *pagerImpl) FileSize() int64 {
	return p.fileSize
}

// pagesOnDisk counts pages the file holds at least one byte of.
func (p *pagerImpl) pagesOnDisk() int64 {
	return (p.fileSize + PageDiskSize - 1) / PageDiskSize
}

func (p *pagerImpl) GetPage(ctx context.Context, pageIdx PageIndex) (*Page, error) {
	if int(pageIdx) >= p.maxPages {
		return nil, fmt.Errorf("%w: index %d, max pages %d", ErrPageOutOfBounds, pageIdx, p.maxPages)
	}

	if aPage := p.pages[pageIdx]; aPage != nil {
		return aPage, nil
	}

	// Cache miss, the page starts zeroed and is filled from file if it exists there
	aPage := newPage(pageIdx)
	if int64(pageIdx) < p.pagesOnDisk() {
		n, err := p.file.ReadAt(aPage.Data[:PageDiskSize], pageOffset(pageIdx))
		// Short read of the last page is expected
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read page %d: %w", pageIdx, err)
		}
		p.logger.Debug("page loaded from file", zap.Uint32("page", uint32(pageIdx)), zap.Int("bytes", n))
	}

	p.pages[pageIdx] = aPage
	p.metrics.pageLoaded()

	return aPage, nil
}

func (p *pagerImpl) IsLoaded(pageIdx PageIndex) bool {
	return int(pageIdx) < p.maxPages && p.pages[pageIdx] != nil
}

// Flush writes the first size bytes of a loaded page to its place in the file.
func (p *pagerImpl) Flush(ctx context.Context, pageIdx PageIndex, size int) error {
	if int(pageIdx) >= p.maxPages {
		return fmt.Errorf("%w: index %d, max pages %d", ErrPageOutOfBounds, pageIdx, p.maxPages)
	}

	aPage := p.pages[pageIdx]
	if aPage == nil {
		return fmt.Errorf("%w: page %d", ErrFlushEmptyPage, pageIdx)
	}

	if size < 0 || size > PageDiskSize {
		return fmt.Errorf("invalid flush size %d for page %d", size, pageIdx)
	}

	if _, err := p.file.WriteAt(aPage.Data[:size], pageOffset(pageIdx)); err != nil {
		return fmt.Errorf("write page %d: %w", pageIdx, err)
	}

	p.logger.Debug("page flushed", zap.Uint32("page", uint32(pageIdx)), zap.Int("bytes", size))
	p.metrics.pageFlushed(size)

	return nil
}

// Release drops the cached copy of a page, flush it first if it holds rows.
func (p *pagerImpl) Release(pageIdx PageIndex) {
	if int(pageIdx) >= p.maxPages {
		return
	}
	p.pages[pageIdx] = nil
}

func (p *pagerImpl) ResidentPages() int {
	resident := 0
	for _, aPage := range p.pages {
		if aPage != nil {
			resident += 1
		}
	}
	return resident
}

func (p *pagerImpl) Close() error {
	return p.file.Close()
}
