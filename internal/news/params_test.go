package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppliesDefaultLimit(t *testing.T) {
	p := RequestParams{Source: SourceAll}
	require.NoError(t, p.Validate())
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	p := RequestParams{Source: "detik", Limit: 5}
	err := p.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "source", verr.Field)
}

func TestValidateRejectsOutOfRangeLimit(t *testing.T) {
	for _, limit := range []int{-1, 51, 100} {
		p := RequestParams{Source: SourceCNBC, Limit: limit}
		err := p.Validate()
		require.Error(t, err, "limit %d should be rejected", limit)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "limit", verr.Field)
	}
}

func TestValidateAcceptsEverySourceKey(t *testing.T) {
	for _, src := range []string{SourceCNBC, SourceKontan, SourceBisnis, SourceEmitenNews, SourceAll} {
		p := RequestParams{Source: src, Limit: 1}
		assert.NoError(t, p.Validate())
	}
}
