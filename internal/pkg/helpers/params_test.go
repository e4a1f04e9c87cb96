package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("1,3,12")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 12}, ids)

	ids, err = ParseIDList(" 4 , ,7 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 7}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseIDList("1,abc")
	assert.Error(t, err)
}

func TestParseBoolParam(t *testing.T) {
	v, err := ParseBoolParam("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseBoolParam("true")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = ParseBoolParam("false")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	_, err = ParseBoolParam("yes please")
	assert.Error(t, err)
}

func TestParseDateParam(t *testing.T) {
	d, err := ParseDateParam("2026-05-10")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDateParam("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDateParam("10/05/2026")
	assert.Error(t, err)
}

func TestParseDateTimeParam(t *testing.T) {
	d, err := ParseDateTimeParam("2026-05-10T14:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 14, d.Hour())

	d, err = ParseDateTimeParam("2026-05-10")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.May, d.Month())
}
