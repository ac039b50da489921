// Package snapshot persists the ordered card list as a JSON array and reads
// it back with full validation. The file is the only thing connecting the
// scrape stage to the export stage.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/use-agent/tiercards/models"
)

// requiredKeys must be present on every snapshot element.
var requiredKeys = []string{"name", "tier", "score", "category"}

// Encode renders records exactly as Write stores them: a two-space indented
// JSON array with a trailing newline and no HTML escaping.
func Encode(records []models.CardRecord) ([]byte, error) {
	out := make([]models.CardRecord, len(records))
	for i, r := range records {
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out[i] = r
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Write replaces the file at path with the encoded records. The data goes to
// a temporary file in the same directory which is then renamed over path,
// so readers see either the old snapshot or the new one.
func Write(path string, records []models.CardRecord) error {
	data, err := Encode(records)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeWrite, "failed to encode snapshot", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return models.NewScrapeError(models.ErrCodeWrite, "failed to create temp file in "+dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return models.NewScrapeError(models.ErrCodeWrite, "failed to write snapshot", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return models.NewScrapeError(models.ErrCodeWrite, "failed to sync snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return models.NewScrapeError(models.ErrCodeWrite, "failed to close snapshot", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return models.NewScrapeError(models.ErrCodeWrite, "failed to set snapshot permissions", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return models.NewScrapeError(models.ErrCodeWrite, "failed to replace "+path, err)
	}
	return nil
}

// Load reads and validates the snapshot at path.
func Load(path string) ([]models.CardRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSnapshotRead, "cannot read snapshot "+path, err)
	}
	return Decode(data)
}

// Decode parses and validates snapshot bytes. Every element must be an
// object with the required keys, no unknown keys, and satisfy the record
// invariants; the first offending element is reported by index.
func Decode(data []byte) ([]models.CardRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, invalid("top-level value must be a JSON array", err)
	}
	if elems == nil {
		return nil, invalid("top-level value must be a JSON array", nil)
	}

	records := make([]models.CardRecord, 0, len(elems))
	for i, raw := range elems {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, invalid(fmt.Sprintf("element %d", i), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(raw json.RawMessage) (models.CardRecord, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || keys == nil {
		return models.CardRecord{}, errors.New("not a JSON object")
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return models.CardRecord{}, fmt.Errorf("missing key %q", k)
		}
	}

	var rec models.CardRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return models.CardRecord{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return models.CardRecord{}, errors.New("trailing data after object")
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if err := rec.Validate(); err != nil {
		return models.CardRecord{}, err
	}
	return rec, nil
}

func invalid(msg string, err error) error {
	return models.NewScrapeError(models.ErrCodeSnapshotInvalid, "invalid snapshot: "+msg, err)
}
