package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordFields(t *testing.T) {
	rec := Record{
		ID:          "433567",
		Title:       "Example Book",
		AuthorNames: "Jane Roe, John Doe",
		ReleaseYear: "2014",
		Rating:      "4.25",
		AddedDate:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	fields := rec.Fields()
	assert.Len(t, fields, len(LedgerHeader))
	assert.Equal(t, "433567", fields[0])
	assert.Equal(t, "Example Book", fields[1])
	assert.Equal(t, "Jane Roe, John Doe", fields[2])
	assert.Equal(t, "2026-08-30 12:00:00", fields[len(fields)-1])
}

func TestRecordFieldsZeroDate(t *testing.T) {
	fields := Record{ID: "1", Title: "T"}.Fields()
	assert.Empty(t, fields[len(fields)-1])
}
