package numfmt

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigits(t *testing.T) {
	cases := map[string]int64{
		"Rp 1.250.000":  1250000,
		"1,250,000.00":  125000000,
		"":              0,
		"abc":           0,
		"  42 ":         42,
		"-300":          300,
		"0812-3456-789": 8123456789,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseDigits(in), "input %q", in)
	}
}

func TestParseDigits_Overflow(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), ParseDigits("99999999999999999999999"))
}

func TestNormalizeDecimal(t *testing.T) {
	cases := map[string]string{
		"-6,2088":    "-6.2088",
		"106.8456":   "106.8456",
		"1.234,56":   "1234.56",
		"1,234.56":   "1234.56",
		"1.250.000":  "1250000",
		"1,250,000":  "1250000",
		" 12,5 ":     "12.5",
		"":           "",
		"1 234,5":    "1234.5",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDecimal(in), "input %q", in)
	}
}

func TestParseDecimal(t *testing.T) {
	v, err := ParseDecimal("-6,2088")
	require.NoError(t, err)
	assert.InDelta(t, -6.2088, v, 1e-9)

	_, err = ParseDecimal("")
	assert.Error(t, err)

	_, err = ParseDecimal("12a")
	assert.Error(t, err)
}

func TestParseLatitudeLongitude(t *testing.T) {
	lat, err := ParseLatitude("-6,175392")
	require.NoError(t, err)
	assert.InDelta(t, -6.175392, lat, 1e-9)

	lng, err := ParseLongitude("106,827153")
	require.NoError(t, err)
	assert.InDelta(t, 106.827153, lng, 1e-9)

	_, err = ParseLatitude("91")
	assert.Error(t, err)

	_, err = ParseLongitude("-180,5")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber(nil)
	assert.True(t, ok)
	assert.Zero(t, v)

	v, ok = ParseNumber("120,5")
	assert.True(t, ok)
	assert.InDelta(t, 120.5, v, 1e-9)

	v, ok = ParseNumber(json.Number("75"))
	assert.True(t, ok)
	assert.Equal(t, 75.0, v)

	_, ok = ParseNumber("luas")
	assert.False(t, ok)

	_, ok = ParseNumber([]int{1})
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, int64(1250000), ParseAmount("Rp 1.250.000"))
	assert.Equal(t, int64(500), ParseAmount(500.9))
	assert.Equal(t, int64(7), ParseAmount(7))
	assert.Equal(t, int64(0), ParseAmount(""))
	assert.Equal(t, int64(0), ParseAmount(nil))
	assert.Equal(t, int64(99), ParseAmount(json.Number("99")))

	numbers := map[string]int64{
		"1250000.5": 1250000,
		"1e6":       1000000,
		"2.5E3":     2500,
		"-500":      -500,
		"-12.9":     -12,
		"1e400":     0,
	}
	for in, want := range numbers {
		assert.Equal(t, want, ParseAmount(json.Number(in)), in)
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "-6.2088", FormatDecimal(-6.2088))
	assert.Equal(t, "120", FormatDecimal(120))
}
