package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/RichardKnop/nacho/internal/nacho"
)

const (
	truncatedStringEnd = " ..."
	maxLength          = 40
)

type Column struct {
	Name  string
	Width int
}

// UsersColumns describes the only table there is.
var UsersColumns = []Column{
	{Name: "id", Width: 10},
	{Name: "username", Width: maxLength},
	{Name: "email", Width: maxLength},
}

func PrintTableHeader(w io.Writer, columns []Column) {
	tableWidth := computeTableWidth(columns)

	// add top horizontal header
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))

	for i, aColumn := range columns {
		// pad on the right rather than the left (left-justify the field)
		fmt.Fprintf(w, "| %-*s ", aColumn.Width, aColumn.Name)
		// new line after last cell in a row
		if i == len(columns)-1 {
			fmt.Fprintf(w, "|\n")
		}
	}

	// add horizontal border bellow the header row
	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))
}

func PrintTableRow(w io.Writer, columns []Column, values []any) {
	for i, aValue := range values {
		var (
			aStringValue = fmt.Sprint(aValue)
			r            = []rune(aStringValue)
			width        = columns[i].Width
		)
		if len(r) > width {
			aStringValue = string(r[0:width-len(truncatedStringEnd)]) + truncatedStringEnd
		}
		fmt.Fprintf(w, "| %-*s ", width, aStringValue)
	}
	fmt.Fprintf(w, "|\n")
}

func PrintTableEnd(w io.Writer, columns []Column) {
	tableWidth := computeTableWidth(columns)

	fmt.Fprintf(w, "+%s+\n", strings.Repeat("-", tableWidth-2))
}

// PrintRows renders rows of the users table with a header and a footer.
func PrintRows(w io.Writer, rows []nacho.Row) {
	PrintTableHeader(w, UsersColumns)
	for _, aRow := range rows {
		PrintTableRow(w, UsersColumns, []any{aRow.ID, aRow.Username, aRow.Email})
	}
	PrintTableEnd(w, UsersColumns)
}

func computeTableWidth(columns []Column) int {
	// left border is | followed by a space, right border is space followed by | (2+2=4)
	// then between each column we have space, |, space (3)
	tableWidth := 4 + (len(columns)-1)*3
	for _, aColumn := range columns {
		tableWidth += aColumn.Width
	}
	return tableWidth
}
