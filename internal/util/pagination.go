package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxResultWindow matches Elasticsearch's default index.max_result_window;
	// from+size beyond it is rejected by the cluster.
	MaxResultWindow = 10000
)

// Calculate turns a 1-based page and a page size into an offset and limit.
// Out of range sizes fall back to DefaultPageSize; pages are clamped to
// [1, MaxResultWindow/size] so from+limit never exceeds MaxResultWindow.
func Calculate(page, size int) (from, limit int) {
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := MaxResultWindow / size; page > maxPage {
		page = maxPage
	}
	from = (page - 1) * size
	return from, size
}
