package util

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/RichardKnop/nacho/internal/nacho"
)

func FormatStats(stats nacho.Stats) string {
	return fmt.Sprintf(
		"rows: %s / %s, resident pages: %d / %d, file size: %s",
		humanize.Comma(int64(stats.Rows)),
		humanize.Comma(int64(stats.MaxRows)),
		stats.ResidentPages,
		stats.MaxPages,
		humanize.IBytes(uint64(stats.FileSize)),
	)
}

// PrintConstants prints the layout constants of the row store.
func PrintConstants(w io.Writer) {
	fmt.Fprintln(w, "Constants:")
	fmt.Fprintf(w, "ROW_SIZE: %d\n", nacho.RowSize)
	fmt.Fprintf(w, "ID_OFFSET: %d\n", nacho.IDOffset)
	fmt.Fprintf(w, "USERNAME_OFFSET: %d\n", nacho.UsernameOffset)
	fmt.Fprintf(w, "EMAIL_OFFSET: %d\n", nacho.EmailOffset)
	fmt.Fprintf(w, "PAGE_SIZE: %d\n", nacho.PageSize)
	fmt.Fprintf(w, "ROWS_PER_PAGE: %d\n", nacho.RowsPerPage)
	fmt.Fprintf(w, "TABLE_MAX_ROWS: %d\n", nacho.TableMaxRows)
}
