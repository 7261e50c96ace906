package ocr

import (
	"fmt"
	"strings"
)

// Options toggle optional extraction behaviors per request.
type Options struct {
	ExtractImages      bool `json:"extract_images"`
	PreserveFormatting bool `json:"preserve_formatting"`
	ExtractTables      bool `json:"extract_tables"`
	AutoTranslate      bool `json:"auto_translate"`
}

// systemPrompt builds the vision instruction set. The model handles both
// Arabic and English documents; optional lines are appended only when the
// matching option is enabled.
func systemPrompt(opts Options) string {
	var b strings.Builder
	b.WriteString("You are an expert OCR system specialized in extracting text from documents in both Arabic and English.\n\n")
	b.WriteString("Instructions:\n")

	lines := []string{
		"Extract ALL text from the document exactly as it appears.",
		"Preserve the original language of the text (Arabic or English).",
		"Maintain the reading order of the document.",
		"For Arabic text, preserve right-to-left reading order.",
		"Do not add commentary, explanations, or translations unless asked.",
	}
	if opts.PreserveFormatting {
		lines = append(lines, "Preserve the original formatting: headings, paragraphs, lists and line breaks.")
	}
	if opts.ExtractTables {
		lines = append(lines, "Render tables as markdown tables with their original rows and columns.")
	}
	if opts.ExtractImages {
		lines = append(lines, "Describe embedded images, figures and diagrams briefly in square brackets.")
	}
	if opts.AutoTranslate {
		lines = append(lines, "After the extracted text, add an English translation of any Arabic content under a 'Translation:' heading.")
	}

	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}

	b.WriteString("\nReturn only the extracted content.")
	return b.String()
}

const userPrompt = "Extract the text from this document."
