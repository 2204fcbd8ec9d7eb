package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"ClipRate/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCSV(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	videos := []entity.Video{
		{
			ID:           1,
			Link:         "http://a.com",
			TotalScore:   11,
			RatingsCount: 2,
			AvgScore:     5.5,
			Comments:     []string{"quite good overall honestly", "had trouble staying awake"},
			CreatedAt:    created,
		},
		{
			ID:        2,
			Link:      "http://b.com",
			Comments:  []string{},
			CreatedAt: created,
		},
	}

	data, err := BuildCSV(videos)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, utf8bom), "document starts with a UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(data[len(utf8bom):]))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"ID", "Link", "Total score", "Ratings", "Average", "Comments", "Created"}, records[0])
	assert.Equal(t, []string{
		"1", "http://a.com", "11", "2", "5.50",
		"quite good overall honestly | had trouble staying awake",
		"2025-06-01 12:30:00",
	}, records[1])
	assert.Equal(t, []string{"2", "http://b.com", "0", "0", "0.00", "", "2025-06-01 12:30:00"}, records[2])
}

func TestBuildCSVEmpty(t *testing.T) {
	data, err := BuildCSV(nil)
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(data[len(utf8bom):]))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "only the header for an empty table")
}
