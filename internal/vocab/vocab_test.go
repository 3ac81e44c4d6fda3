package vocab

import "testing"

func TestLoad_ParsesPerLanguageTerms(t *testing.T) {
	data := []byte("terms:\n  French:\n    checksum: somme de contrôle\n  German:\n    checksum: Prüfsumme\n")
	g, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	fr := g.ForLanguage("French")
	if fr["checksum"] != "somme de contrôle" {
		t.Errorf("unexpected French term: %q", fr["checksum"])
	}
	if g.ForLanguage("Spanish") != nil {
		t.Error("expected nil map for a language with no terms")
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	g, err := Load([]byte(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.ForLanguage("French") != nil {
		t.Error("expected nil map from an empty glossary")
	}
}
