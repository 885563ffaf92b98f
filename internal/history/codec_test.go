package history

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/afkstats/internal/model"
)

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			in := make([]model.Session, 0, n)
			for i := 0; i < n; i++ {
				in = append(in, model.Session{
					ID:               fmt.Sprintf("id-%d", i),
					Name:             fmt.Sprintf("Séance %d 🎣 釣り", i),
					StartTime:        1708523400000 + int64(i)*60000,
					EndTime:          1708527000000 + int64(i)*60000,
					ClickCount:       i * 3,
					ConsistencyScore: i * 5 % 101,
					AvgInterval:      1000.0/3.0 + float64(i),
				})
			}

			blob, err := Encode(in)
			require.NoError(t, err)
			out, err := Decode(blob)
			require.NoError(t, err)

			require.Len(t, out, n)
			for i := range in {
				assert.Equal(t, in[i].ID, out[i].ID)
				assert.Equal(t, in[i].Name, out[i].Name)
				assert.Equal(t, in[i].StartTime, out[i].StartTime)
				assert.Equal(t, in[i].EndTime, out[i].EndTime)
				assert.Equal(t, in[i].ClickCount, out[i].ClickCount)
				assert.Equal(t, in[i].ConsistencyScore, out[i].ConsistencyScore)
				assert.Equal(t, math.Float64bits(in[i].AvgInterval), math.Float64bits(out[i].AvgInterval))
			}
		})
	}
}

func TestEncodeWritesVersion(t *testing.T) {
	blob, err := Encode([]model.Session{{ID: "a", Name: "x"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob, `{"`))
	assert.Contains(t, blob, `"version":1`)
	assert.Contains(t, blob, `"consistencyScore":0`)
}

func TestDecodeLegacyArray(t *testing.T) {
	legacy := `[{"id":"id1","name":"Fishing","startTime":1000,"endTime":61000,"clickCount":42,"consistencyScore":85,"avgInterval":45000.0}]`

	out, err := Decode(legacy)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.Session{
		ID:               "id1",
		Name:             "Fishing",
		StartTime:        1000,
		EndTime:          61000,
		ClickCount:       42,
		ConsistencyScore: 85,
		AvgInterval:      45000,
	}, out[0])
}

func TestDecodeEmpty(t *testing.T) {
	for _, blob := range []string{"", "   ", "\n"} {
		out, err := Decode(blob)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"garbage":         "not valid json [[[",
		"null":            "null",
		"truncated":       `{"version":1,"sessions":[{"id":"a"`,
		"future version":  `{"version":99,"sessions":[]}`,
		"missing version": `{"sessions":[]}`,
		"missing id":      `{"version":1,"sessions":[{"name":"x"}]}`,
		"bad legacy":      `[1,2,3]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(blob)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
