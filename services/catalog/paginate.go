package catalog

// Paginate returns items[skip : skip+pageSize] clamped to the slice bounds.
// Out of range input yields an empty, non-nil page.
func Paginate[T any](items []T, skip, pageSize int) []T {
	if skip < 0 {
		skip = 0
	}
	if pageSize <= 0 || skip >= len(items) {
		return []T{}
	}
	end := skip + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end:end]
}
