package notebook

import (
	"testing"

	"github.com/seanblong/doctran/pkg/doctypes"
)

func TestChunk_OneChunkPerCellInOrder(t *testing.T) {
	source := `{
		"cells": [
			{"cell_type": "markdown", "source": "# Title\n\nSome prose."},
			{"cell_type": "code", "source": ["print(1)\n", "print(2)"]},
			{"cell_type": "markdown", "source": "More prose after code."}
		]
	}`

	results, err := Chunk(source, doctypes.English, doctypes.French, "analysis.ipynb")
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(results))
	}

	if results[1].Chunk.ChunkType != doctypes.ChunkCode {
		t.Errorf("expected cell 1 to be a code chunk, got %v", results[1].Chunk.ChunkType)
	}
	if !results[1].Chunk.PlaceholderOnly() {
		t.Error("code cells must be placeholder-only")
	}
	if results[1].Chunk.Text != "print(1)\nprint(2)" {
		t.Errorf("expected joined source lines, got %q", results[1].Chunk.Text)
	}

	if results[0].Chunk.PlaceholderOnly() {
		t.Error("markdown cell with prose must carry translatable text")
	}
	for i, r := range results {
		if r.CellIndex != i {
			t.Errorf("expected CellIndex %d, got %d", i, r.CellIndex)
		}
		if r.SrcChecksum == "" {
			t.Errorf("cell %d missing src checksum", i)
		}
	}
}

func TestChunk_InvalidJSONIsDocumentParseError(t *testing.T) {
	_, err := Chunk("not json", doctypes.English, doctypes.French, "bad.ipynb")
	if err == nil {
		t.Fatal("expected an error for invalid notebook JSON")
	}
}
