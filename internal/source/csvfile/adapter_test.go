package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Site_URL,Publisher_Name,Publisher_Email,DA,Notes
https://techcrunch.com,Jane Smith,jane@techcrunch.com,93,tech
example.com,,editor@example.com,40,
,missing,skip@me.com,0,no url
blog.example.org,Bob,,35,accepts guest posts
`

func TestParse(t *testing.T) {
	listings, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(listings) != 3 {
		t.Fatalf("expected 3 listings (empty-URL row skipped), got %d", len(listings))
	}
	first := listings[0]
	if first.SiteURL != "https://techcrunch.com" {
		t.Errorf("unexpected site URL: %q", first.SiteURL)
	}
	if first.PublisherName != "Jane Smith" || first.PublisherEmail != "jane@techcrunch.com" {
		t.Errorf("unexpected publisher fields: %q %q", first.PublisherName, first.PublisherEmail)
	}
	if first.Notes != "tech" {
		t.Errorf("unexpected notes: %q", first.Notes)
	}
	if listings[2].PublisherEmail != "" {
		t.Errorf("expected empty email for third listing, got %q", listings[2].PublisherEmail)
	}
}

func TestParseMissingURLColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("name,email\nBob,bob@example.com\n"))
	if err == nil {
		t.Fatal("expected error for missing site URL column")
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestFetchBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewAdapter(path)
	ctx := context.Background()

	batch, cursor, err := a.FetchBatch(ctx, "", 2)
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch) != 2 || cursor != "2" {
		t.Fatalf("expected 2 listings with cursor 2, got %d with %q", len(batch), cursor)
	}

	batch, cursor, err = a.FetchBatch(ctx, cursor, 2)
	if err != nil {
		t.Fatalf("FetchBatch failed: %v", err)
	}
	if len(batch) != 1 || cursor != "" {
		t.Fatalf("expected final batch of 1 with empty cursor, got %d with %q", len(batch), cursor)
	}
}
