// Package csvfile reads candidate listings from CSV files exported by
// outreach tools. Columns are matched by header name, so column order in the
// export does not matter.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/source"
)

// Header aliases accepted for each listing field.
var (
	urlHeaders   = []string{"site_url", "url", "website", "domain", "site"}
	nameHeaders  = []string{"publisher_name", "name", "contact_name", "publisher"}
	emailHeaders = []string{"publisher_email", "email", "contact_email"}
	notesHeaders = []string{"notes", "comment", "remarks"}
)

// Adapter reads listings from a CSV file on disk.
type Adapter struct {
	path string
}

// NewAdapter creates a CSV file adapter.
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "csvfile"
}

// FetchBatch fetches a batch of listings. The cursor is the numeric offset
// into the file's rows.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.Listing, string, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open listing file: %w", err)
	}
	defer f.Close()

	all, err := Parse(f)
	if err != nil {
		return nil, "", err
	}

	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
	}
	if offset >= len(all) {
		return nil, "", nil
	}

	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	nextCursor := ""
	if end < len(all) {
		nextCursor = strconv.Itoa(end)
	}
	return all[offset:end], nextCursor, nil
}

// Parse decodes a CSV listing export. The first record is the header; a
// site-URL column is required, publisher columns are optional. Rows with an
// empty site reference are skipped.
func Parse(r io.Reader) ([]source.Listing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("listing file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	urlCol := findColumn(header, urlHeaders)
	if urlCol == -1 {
		return nil, fmt.Errorf("no site URL column found (expected one of %s)", strings.Join(urlHeaders, ", "))
	}
	nameCol := findColumn(header, nameHeaders)
	emailCol := findColumn(header, emailHeaders)
	notesCol := findColumn(header, notesHeaders)

	var listings []source.Listing
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		listing := source.Listing{
			SiteURL:        field(record, urlCol),
			PublisherName:  field(record, nameCol),
			PublisherEmail: field(record, emailCol),
			Notes:          field(record, notesCol),
		}
		if listing.SiteURL == "" {
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(h))
		for _, alias := range aliases {
			if normalized == alias {
				return i
			}
		}
	}
	return -1
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}
