// Package export turns a snapshot into the semicolon-delimited table that
// spreadsheet tools open directly. It never touches the snapshot itself.
package export

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/use-agent/tiercards/models"
	"github.com/use-agent/tiercards/snapshot"
)

const (
	// BOM marks the file as UTF-8 for spreadsheet tools.
	BOM = "\uFEFF"

	// Separator is the field delimiter.
	Separator = ";"

	// TagSeparator joins tags inside the tags field.
	TagSeparator = "|"
)

// Header is the first line of every export, unquoted.
var Header = []string{"name", "tier", "score", "expansion", "tags", "category"}

// Write renders records to w: BOM, header, then one row per record.
// Lines are joined by "\n" with no trailing newline. Name, expansion, tags
// and category are always quoted with embedded quotes doubled; tier and
// score are bare.
func Write(w io.Writer, records []models.CardRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(BOM)
	bw.WriteString(strings.Join(Header, Separator))
	for _, r := range records {
		bw.WriteByte('\n')
		writeRow(bw, r)
	}
	return bw.Flush()
}

// Bytes is Write into memory.
func Bytes(records []models.CardRecord) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, records)
	return buf.Bytes()
}

func writeRow(bw *bufio.Writer, r models.CardRecord) {
	bw.WriteString(quote(r.Name))
	bw.WriteString(Separator)
	bw.WriteString(string(r.Tier))
	bw.WriteString(Separator)
	bw.WriteString(strconv.Itoa(r.Score))
	bw.WriteString(Separator)
	bw.WriteString(quote(r.Expansion))
	bw.WriteString(Separator)
	bw.WriteString(quote(strings.Join(r.Tags, TagSeparator)))
	bw.WriteString(Separator)
	bw.WriteString(quote(r.Category))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// File loads and validates the snapshot at snapshotPath and writes the
// export to exportPath, replacing any previous file. It returns the number
// of rows written.
func File(snapshotPath, exportPath string) (int, error) {
	records, err := snapshot.Load(snapshotPath)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(exportPath, Bytes(records), 0o644); err != nil {
		return 0, models.NewScrapeError(models.ErrCodeWrite, "failed to write export "+exportPath, err)
	}
	return len(records), nil
}
