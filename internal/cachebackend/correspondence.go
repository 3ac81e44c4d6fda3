package cachebackend

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// correspondenceTable is the in-memory form of correspondence.csv: an
// ordered column list (always led by path_checksum) and the row data,
// each row a field->value map. Missing cells are treated as "".
type correspondenceTable struct {
	fields []string
	rows   []map[string]string
}

func ensurePathField(fields []string) []string {
	for _, f := range fields {
		if f == pathChecksumColumn {
			return fields
		}
	}
	return append([]string{pathChecksumColumn}, fields...)
}

func (b *Backend) correspondencePath() string {
	return filepath.Join(b.RootPath, correspondenceFilename)
}

// readCorrespondenceCache returns (table, ok); ok is false if the file
// does not yet exist.
func (b *Backend) readCorrespondenceCache() (*correspondenceTable, bool, error) {
	f, err := os.Open(b.correspondencePath())
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &correspondenceTable{fields: []string{pathChecksumColumn}}, true, nil
	}
	if err != nil {
		return nil, false, &doctranerr.CacheCorrupt{Reason: "malformed correspondence.csv header", Cause: err}
	}
	fields := ensurePathField(header)

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, &doctranerr.CacheCorrupt{Reason: "malformed correspondence.csv row", Cause: err}
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		if _, ok := row[pathChecksumColumn]; !ok {
			row[pathChecksumColumn] = ""
		}
		rows = append(rows, row)
	}
	return &correspondenceTable{fields: fields, rows: rows}, true, nil
}

// writeCorrespondenceCache rewrites the entire correspondence.csv file in
// full, per spec §4.B/§5: a set_pair reads, mutates, and rewrites.
func (b *Backend) writeCorrespondenceCache(t *correspondenceTable) error {
	if err := os.MkdirAll(b.RootPath, 0o755); err != nil {
		return err
	}
	fields := ensurePathField(t.fields)

	f, err := os.Create(b.correspondencePath())
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return err
	}
	for _, row := range t.rows {
		rec := make([]string, len(fields))
		for i, col := range fields {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// addLangColumn adds lang's column to the table schema if absent, giving
// every pre-existing row an empty cell.
func addLangColumn(t *correspondenceTable, lang doctypes.Language) {
	t.fields = ensurePathField(t.fields)
	col := string(lang)
	for _, f := range t.fields {
		if f == col {
			return
		}
	}
	t.fields = append(t.fields, col)
	for _, row := range t.rows {
		row[col] = ""
	}
}

// removeLangColumn drops lang's column from the schema and every row.
func removeLangColumn(t *correspondenceTable, lang doctypes.Language) {
	t.fields = ensurePathField(t.fields)
	col := string(lang)
	kept := t.fields[:0:0]
	for _, f := range t.fields {
		if f != col {
			kept = append(kept, f)
		}
	}
	t.fields = kept
	for _, row := range t.rows {
		delete(row, col)
	}
}

// AddLanguage adds lang's column to the correspondence schema, creating
// the table if it does not yet exist.
func (b *Backend) AddLanguage(lang doctypes.Language) error {
	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return err
	}
	if !ok {
		t = &correspondenceTable{fields: []string{pathChecksumColumn, string(lang)}}
		return b.writeCorrespondenceCache(t)
	}
	addLangColumn(t, lang)
	return b.writeCorrespondenceCache(t)
}

// RemoveLanguage drops lang's column from the correspondence schema.
func (b *Backend) RemoveLanguage(lang doctypes.Language) error {
	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return err
	}
	if !ok {
		_, err := os.Stat(b.correspondencePath())
		if os.IsNotExist(err) {
			return b.writeCorrespondenceCache(&correspondenceTable{fields: []string{pathChecksumColumn}})
		}
		return err
	}
	removeLangColumn(t, lang)
	return b.writeCorrespondenceCache(t)
}

// FindCorrespondent looks up the persisted tgtLang checksum for a given
// srcChecksum within pathHash's rows. ok is false on a cache miss (no row,
// missing columns, or an empty cell).
func (b *Backend) FindCorrespondent(srcChecksum string, srcLang, tgtLang doctypes.Language, pathHash string) (string, bool, error) {
	if srcLang == tgtLang {
		return "", false, nil
	}
	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	if !hasColumn(t.fields, string(srcLang)) || !hasColumn(t.fields, string(tgtLang)) {
		return "", false, nil
	}
	for _, row := range t.rows {
		if rowHash := row[pathChecksumColumn]; rowHash != "" && rowHash != pathHash {
			continue
		}
		if row[string(srcLang)] == srcChecksum {
			tgt := row[string(tgtLang)]
			if tgt == "" {
				return "", false, nil
			}
			return tgt, true, nil
		}
	}
	return "", false, nil
}

func hasColumn(fields []string, col string) bool {
	for _, f := range fields {
		if f == col {
			return true
		}
	}
	return false
}

// SetPair locates the row matching (pathHash, src column == srcChecksum)
// and sets its tgt column; if no such row exists, a new one is appended.
// Missing language columns are added to the schema first.
func (b *Backend) SetPair(srcChecksum string, srcLang doctypes.Language, tgtChecksum string, tgtLang doctypes.Language, pathHash string) error {
	if srcLang == tgtLang {
		return nil
	}
	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return err
	}
	if !ok {
		t = &correspondenceTable{fields: []string{pathChecksumColumn}}
	}
	if !hasColumn(t.fields, string(srcLang)) {
		addLangColumn(t, srcLang)
	}
	if !hasColumn(t.fields, string(tgtLang)) {
		addLangColumn(t, tgtLang)
	}

	for _, row := range t.rows {
		if rowHash := row[pathChecksumColumn]; rowHash != "" && rowHash != pathHash {
			continue
		}
		if row[string(srcLang)] == srcChecksum {
			row[pathChecksumColumn] = pathHash
			row[string(tgtLang)] = tgtChecksum
			log.Debug().Str("path_hash", pathHash).Str("src_lang", string(srcLang)).Str("tgt_lang", string(tgtLang)).Msg("correspondence row updated")
			return b.writeCorrespondenceCache(t)
		}
	}

	newRow := make(map[string]string, len(t.fields))
	for _, f := range t.fields {
		newRow[f] = ""
	}
	newRow[pathChecksumColumn] = pathHash
	newRow[string(srcLang)] = srcChecksum
	newRow[string(tgtLang)] = tgtChecksum
	t.rows = append(t.rows, newRow)
	log.Debug().Str("path_hash", pathHash).Str("src_lang", string(srcLang)).Str("tgt_lang", string(tgtLang)).Msg("correspondence row created")
	return b.writeCorrespondenceCache(t)
}

// TranslationCorresponds reports whether the persisted correspondent of
// srcChecksum (in tgtLang, scoped to pathHash) equals checksum(tgtText).
func (b *Backend) TranslationCorresponds(srcChecksum string, srcLang doctypes.Language, tgtText string, tgtLang doctypes.Language, pathHash string) (bool, error) {
	if srcLang == tgtLang {
		return false, nil
	}
	want, ok, err := b.FindCorrespondent(srcChecksum, srcLang, tgtLang, pathHash)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return want == checksum.Of(tgtText), nil
}
