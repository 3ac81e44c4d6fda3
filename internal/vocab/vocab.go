// Package vocab loads a per-project custom vocabulary (glossary) used
// to fill the translator's [CUSTOM_VOCABULARY] prompt macro, so domain
// terms translate consistently across a whole corpus instead of
// drifting chunk to chunk.
package vocab

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Glossary maps a source-language term to its preferred target-language
// rendering, one map per target language.
type Glossary struct {
	// Terms[targetLanguage][sourceTerm] = preferredTargetTerm
	Terms map[string]map[string]string `yaml:"terms"`
}

// Load parses a glossary document of the form:
//
//	terms:
//	  French:
//	    checksum: somme de contrôle
//	  German:
//	    checksum: Prüfsumme
func Load(data []byte) (*Glossary, error) {
	var g Glossary
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("vocab: parsing glossary: %w", err)
	}
	if g.Terms == nil {
		g.Terms = map[string]map[string]string{}
	}
	return &g, nil
}

// ForLanguage returns the term map for targetLanguage, or nil if the
// glossary defines none for that language.
func (g *Glossary) ForLanguage(targetLanguage string) map[string]string {
	if g == nil {
		return nil
	}
	if m, ok := g.Terms[targetLanguage]; ok {
		return m
	}
	return nil
}
