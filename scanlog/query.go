package scanlog

import (
	"sort"
	"strings"
)

const DefaultPageSize = 10

type PageQuery struct {
	// QRCode keeps records whose qrcode contains it (case-sensitive).
	QRCode string
	// PageIndex is 1-based.
	PageIndex int
	PageSize  int
}

type PageResult struct {
	Records   []ScanRecord `json:"records"`
	Total     int          `json:"total"`
	PageIndex int          `json:"current"`
	PageSize  int          `json:"size"`
}

// Page filters, orders newest first (stable for equal dates) and slices.
// Total is the filtered count before slicing.
func Page(records []ScanRecord, q PageQuery) PageResult {
	if q.PageIndex < 1 {
		q.PageIndex = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	filtered := make([]ScanRecord, 0, len(records))
	for _, r := range records {
		if q.QRCode != "" && !strings.Contains(r.QRCode, q.QRCode) {
			continue
		}
		filtered = append(filtered, r)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date > filtered[j].Date
	})

	out := PageResult{
		Records:   []ScanRecord{},
		Total:     len(filtered),
		PageIndex: q.PageIndex,
		PageSize:  q.PageSize,
	}
	start := (q.PageIndex - 1) * q.PageSize
	if start >= len(filtered) {
		return out
	}
	end := min(start+q.PageSize, len(filtered))
	out.Records = filtered[start:end]
	return out
}
