package scanlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func recordsN(n int) []ScanRecord {
	out := make([]ScanRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, ScanRecord{ID: i, QRCode: fmt.Sprintf("QR%03d", i), Date: int64(i) * 1000})
	}
	return out
}

func TestPage_BeyondLastPage(t *testing.T) {
	recs := recordsN(25)

	res := Page(recs, PageQuery{PageIndex: 3, PageSize: 10})
	require.Len(t, res.Records, 5)
	require.Equal(t, 25, res.Total)

	res = Page(recs, PageQuery{PageIndex: 4, PageSize: 10})
	require.Empty(t, res.Records)
	require.NotNil(t, res.Records)
	require.Equal(t, 25, res.Total)
}

func TestPage_LengthFormula(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 37} {
		recs := recordsN(n)
		for _, size := range []int{1, 3, 10} {
			for k := 1; k <= n/size+2; k++ {
				res := Page(recs, PageQuery{PageIndex: k, PageSize: size})
				want := max(0, min(size, n-(k-1)*size))
				require.Len(t, res.Records, want, "n=%d size=%d k=%d", n, size, k)
				require.Equal(t, n, res.Total)
			}
		}
	}
}

func TestPage_NewestFirst(t *testing.T) {
	res := Page(recordsN(5), PageQuery{PageIndex: 1, PageSize: 3})
	require.Equal(t, []int{5, 4, 3}, ids(res.Records))
}

func TestPage_StableForEqualDates(t *testing.T) {
	recs := []ScanRecord{
		{ID: 1, QRCode: "a", Date: 100},
		{ID: 2, QRCode: "b", Date: 200},
		{ID: 3, QRCode: "c", Date: 100},
		{ID: 4, QRCode: "d", Date: 200},
		{ID: 5, QRCode: "e", Date: 100},
	}
	res := Page(recs, PageQuery{PageIndex: 1, PageSize: 10})
	require.Equal(t, []int{2, 4, 1, 3, 5}, ids(res.Records))
	// input is not reordered
	require.Equal(t, []int{1, 2, 3, 4, 5}, ids(recs))
}

func TestPage_FilterIsCaseSensitiveSubstring(t *testing.T) {
	recs := []ScanRecord{
		{ID: 1, QRCode: "ABC-1", Date: 1},
		{ID: 2, QRCode: "abc-2", Date: 2},
		{ID: 3, QRCode: "xABCx", Date: 3},
	}
	res := Page(recs, PageQuery{QRCode: "ABC", PageIndex: 1, PageSize: 1})
	require.Equal(t, 2, res.Total)
	require.Equal(t, []int{3}, ids(res.Records))
}

func TestPage_Defaults(t *testing.T) {
	res := Page(recordsN(12), PageQuery{})
	require.Equal(t, 1, res.PageIndex)
	require.Equal(t, DefaultPageSize, res.PageSize)
	require.Len(t, res.Records, DefaultPageSize)

	res = Page(nil, PageQuery{PageIndex: -2, PageSize: -1})
	require.Equal(t, 0, res.Total)
	require.Empty(t, res.Records)
}

func ids(recs []ScanRecord) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
