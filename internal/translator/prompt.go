package translator

import "strings"

// buildPrompt performs the prompt macro substitution described in
// spec §6: [SOURCE_LANGUAGE], [TARGET_LANGUAGE], [CONTENT_TYPE],
// [CUSTOM_VOCABULARY], [OLD_SRC]/[OLD_TGT], [SRC].
func buildPrompt(tmpl string, meta WithExampleMeta, srcPayload string) string {
	vocab := ""
	if len(meta.Vocabulary) > 0 {
		var b strings.Builder
		b.WriteString("Use this vocabulary consistently:\n")
		for src, tgt := range meta.Vocabulary {
			b.WriteString("- ")
			b.WriteString(src)
			b.WriteString(" -> ")
			b.WriteString(tgt)
			b.WriteString("\n")
		}
		vocab = b.String()
	}

	oldSrc, oldTgt := "", ""
	if meta.Example != nil {
		oldSrc = "A previously translated similar passage, source:\n" + meta.Example.OldSrc
		oldTgt = "Its accepted translation:\n" + meta.Example.OldTgt
	}

	r := strings.NewReplacer(
		"[SOURCE_LANGUAGE]", string(meta.SrcLang),
		"[TARGET_LANGUAGE]", string(meta.TgtLang),
		"[CONTENT_TYPE]", string(meta.DocType),
		"[CUSTOM_VOCABULARY]", vocab,
		"[OLD_SRC]", oldSrc,
		"[OLD_TGT]", oldTgt,
		"[SRC]", srcPayload,
	)
	return r.Replace(tmpl)
}

// extractOutput pulls the <output>...</output> payload out of a model
// response. A model that forgets the wrapper is treated as having
// returned its entire response verbatim, rather than failing the chunk
// outright — models are unreliable about exact formatting.
func extractOutput(response string) string {
	start := strings.Index(response, "<output>")
	if start < 0 {
		return strings.TrimSpace(response)
	}
	start += len("<output>")
	end := strings.Index(response[start:], "</output>")
	if end < 0 {
		return strings.TrimSpace(response[start:])
	}
	return strings.TrimSpace(response[start : start+end])
}
