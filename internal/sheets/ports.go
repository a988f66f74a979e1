package sheets

import (
	"context"

	"buddyx/internal/core"
)

// Row is one transaction rendered for the backup spreadsheet.
type Row struct {
	Date        string
	Description string
	Category    string
	Amount      core.Money
	Username    string
}

// BackupWriter is the outbound port for the spreadsheet journal.
type BackupWriter interface {
	Append(ctx context.Context, row Row) (rowRef string, err error)
}
