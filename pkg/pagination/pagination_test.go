package pagination

import (
	"testing"

	"github.com/kavro/tidepool/pkg/faults"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(0, 0)
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
}

func TestNormalizeClampsLimit(t *testing.T) {
	p := Normalize(2, 500)
	require.Equal(t, 2, p.Page)
	require.Equal(t, MaxLimit, p.Limit)
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero limit", 1, 0},
		{"negative limit", 1, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Params{Page: tt.page, Limit: tt.limit}.Validate()
			require.Error(t, err)
			require.True(t, faults.IsKind(err, faults.InvalidPagination))
		})
	}
}

func TestValidateAcceptsBounds(t *testing.T) {
	require.NoError(t, Params{Page: 1, Limit: 1}.Validate())
	require.NoError(t, Params{Page: 100, Limit: 50}.Validate())
}

func TestSkip(t *testing.T) {
	require.Equal(t, 0, Params{Page: 1, Limit: 10}.Skip())
	require.Equal(t, 40, Params{Page: 5, Limit: 10}.Skip())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 25)
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, int64(25), meta.Total)
	require.Equal(t, 3, meta.TotalPages)
	require.True(t, meta.HasNext)
	require.True(t, meta.HasPrev)
}

func TestNewMetaLastPage(t *testing.T) {
	meta := NewMeta(Params{Page: 3, Limit: 10}, 25)
	require.False(t, meta.HasNext)
	require.True(t, meta.HasPrev)
}

func TestNewMetaEmpty(t *testing.T) {
	meta := NewMeta(Params{Page: 1, Limit: 10}, 0)
	require.Equal(t, 0, meta.TotalPages)
	require.False(t, meta.HasNext)
	require.False(t, meta.HasPrev)
}
