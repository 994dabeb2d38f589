package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://moodle.example.edu/course/view.php?id=7")
	require.NoError(t, err)

	got, err := ToAbsoluteURL(base, "/mod/resource/view.php?id=12")
	require.NoError(t, err)
	assert.Equal(t, "https://moodle.example.edu/mod/resource/view.php?id=12", got)

	got, err = ToAbsoluteURL(base, "https://cdn.example.edu/f/pdf-24")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.edu/f/pdf-24", got)

	got, err = ToAbsoluteURL(nil, "view.php")
	require.NoError(t, err)
	assert.Equal(t, "view.php", got)
}

func TestParseEntryURL(t *testing.T) {
	_, err := ParseEntryURL("https://moodle.example.edu/")
	require.NoError(t, err)

	for _, raw := range []string{"", "moodle.example.edu", "ftp://moodle.example.edu/", "https://"} {
		_, err := ParseEntryURL(raw)
		assert.Error(t, err, raw)
	}
}
