package entity

// DownloadSnapshot maps every entry of the download directory to its size in bytes
// at one polling instant.
type DownloadSnapshot map[string]int64

// Equal reports whether both snapshots hold the same paths with the same sizes.
func (s DownloadSnapshot) Equal(other DownloadSnapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for path, size := range s {
		otherSize, ok := other[path]
		if !ok || otherSize != size {
			return false
		}
	}
	return true
}

// TotalBytes sums the sizes of all entries.
func (s DownloadSnapshot) TotalBytes() int64 {
	var total int64
	for _, size := range s {
		total += size
	}
	return total
}
