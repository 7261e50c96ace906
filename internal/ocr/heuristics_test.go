package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	require.Equal(t, "en", detectLanguage("Invoice #42 for March"))
	require.Equal(t, "ar", detectLanguage("فاتورة رقم ٤٢"))
	// Mixed content counts as Arabic.
	require.Equal(t, "ar", detectLanguage("Invoice فاتورة 42"))
	require.Equal(t, "en", detectLanguage(""))
}

func TestSystemPromptBaseInstructions(t *testing.T) {
	p := systemPrompt(Options{})
	require.Contains(t, p, "Arabic and English")
	require.Contains(t, p, "1. Extract ALL text")
	require.NotContains(t, p, "markdown tables")
	require.NotContains(t, p, "Translation:")
}

func TestSystemPromptOptionalLines(t *testing.T) {
	p := systemPrompt(Options{
		PreserveFormatting: true,
		ExtractTables:      true,
		ExtractImages:      true,
		AutoTranslate:      true,
	})
	require.Contains(t, p, "markdown tables")
	require.Contains(t, p, "original formatting")
	require.Contains(t, p, "square brackets")
	require.Contains(t, p, "Translation:")

	// Optional lines continue the numbering after the base set.
	require.Contains(t, p, "6. ")
	require.Equal(t, 1, strings.Count(p, "markdown tables"))
}
