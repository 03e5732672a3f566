package intl

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	require.Equal(t, language.German, Resolve("de_DE.UTF-8"))
	require.Equal(t, language.French, Resolve("fr-CA"))
	require.Equal(t, language.English, Resolve("en_US"))
	require.Equal(t, language.English, Resolve("C"))
	require.Equal(t, language.English, Resolve(""))
}

func TestMessage_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	en := New(language.English)
	require.Equal(t, "Story content can't be empty.", en.Message("story_error_empty"))
	require.Equal(t, "100% Steem Power", en.Message("reward_option_100"))
	require.Equal(t, "Title can't be longer than 255 characters.", en.Message("title_error_too_long", 255))
	require.Equal(t, "Topic Bad_Topic is invalid.", en.Message("topics_error_invalid_topic", "Bad_Topic"))

	de := New(language.German)
	require.Equal(t, "Vorschau", de.Message("preview"))
	// No German entry: english default is used.
	require.Equal(t, "50% SBD and 50% SP", de.Message("reward_option_50"))

	require.Equal(t, "no_such_id", de.Message("no_such_id"))
}

func TestMessage_NilFormatterUsesEnglish(t *testing.T) {
	t.Parallel()

	var f *Formatter
	require.Equal(t, "Preview", f.Message("preview"))
	require.Equal(t, language.English, f.Locale())
}
