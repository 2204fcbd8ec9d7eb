package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"ClipRate/entity"
)

// Filename is the exported document name.
const Filename = "videos_ratings.csv"

// utf8bom keeps Excel from mangling non-ASCII comments.
var utf8bom = []byte{0xEF, 0xBB, 0xBF}

// BuildCSV serializes a video snapshot into a semicolon-delimited CSV
// document, one row per video.
func BuildCSV(videos []entity.Video) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8bom)

	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	header := []string{"ID", "Link", "Total score", "Ratings", "Average", "Comments", "Created"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, video := range videos {
		row := []string{
			strconv.FormatInt(video.ID, 10),
			video.Link,
			strconv.FormatInt(video.TotalScore, 10),
			strconv.FormatInt(video.RatingsCount, 10),
			strconv.FormatFloat(video.AvgScore, 'f', 2, 64),
			strings.Join(video.Comments, " | "),
			video.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}
