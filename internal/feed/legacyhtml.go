package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// ParseLegacyExport reads an HTML table export from the retired dashboard
// and converts each row into a raw record. The first header row names the
// fields; spellings are whatever the old product used at the time, which is
// exactly what the alias table exists for.
//
// Remarks and photo columns are recognized by header name and routed to the
// passthrough fields; everything else lands in Fields untouched.
func ParseLegacyExport(r io.Reader) ([]contracts.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse legacy export: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse legacy export: no table found")
	}

	var headers []string
	table.Find("tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})
	if len(headers) == 0 {
		return nil, fmt.Errorf("parse legacy export: no header row")
	}

	var records []contracts.RawRecord

	table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
		if rowIdx == 0 {
			return // header
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		rec := contracts.RawRecord{Fields: make(map[string]interface{})}

		cells.Each(func(colIdx int, cell *goquery.Selection) {
			if colIdx >= len(headers) {
				return
			}
			value := strings.TrimSpace(cell.Text())

			switch {
			case isRemarksHeader(headers[colIdx]):
				rec.Remarks = value
			case isPhotoHeader(headers[colIdx]):
				if value != "" {
					rec.PhotoRefs = append(rec.PhotoRefs, strings.Fields(value)...)
				}
			default:
				rec.Fields[headers[colIdx]] = value
			}
		})

		records = append(records, rec)
	})

	return records, nil
}

func isRemarksHeader(h string) bool {
	switch strings.ToLower(h) {
	case "remarks", "remark", "comments", "notes":
		return true
	}
	return false
}

func isPhotoHeader(h string) bool {
	switch strings.ToLower(h) {
	case "photos", "photo", "photo_refs", "attachments":
		return true
	}
	return false
}
