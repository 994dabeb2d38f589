package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadSnapshotEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b DownloadSnapshot
		want bool
	}{
		{"both empty", DownloadSnapshot{}, DownloadSnapshot{}, true},
		{"nil and empty", nil, DownloadSnapshot{}, true},
		{"same", DownloadSnapshot{"a": 1, "b": 2}, DownloadSnapshot{"b": 2, "a": 1}, true},
		{"size differs", DownloadSnapshot{"a": 1}, DownloadSnapshot{"a": 2}, false},
		{"path differs", DownloadSnapshot{"a": 1}, DownloadSnapshot{"b": 1}, false},
		{"extra path", DownloadSnapshot{"a": 1}, DownloadSnapshot{"a": 1, "b": 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestDownloadSnapshotTotalBytes(t *testing.T) {
	assert.Equal(t, int64(0), DownloadSnapshot{}.TotalBytes())
	assert.Equal(t, int64(7), DownloadSnapshot{"a": 3, "b": 4}.TotalBytes())
}

func TestClassificationTableIsCopied(t *testing.T) {
	src := map[IconSignature]bool{"icon-pdf": true}
	table := NewClassificationTable(src)
	src["icon-pdf"] = false
	src["icon-new"] = true

	assert.True(t, table.Verdict("icon-pdf"))
	assert.False(t, table.Verdict("icon-new"))
	assert.Equal(t, 1, table.Len())
}
