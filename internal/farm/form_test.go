package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFieldChangesExactlyOneField(t *testing.T) {
	base := DefaultInput()
	cases := []struct {
		field string
		raw   string
		want  func(InputRecord) InputRecord
	}{
		{"N", "90", func(r InputRecord) InputRecord { r.N = 90; return r }},
		{"P", "42.5", func(r InputRecord) InputRecord { r.P = 42.5; return r }},
		{"K", "0", func(r InputRecord) InputRecord { r.K = 0; return r }},
		{"pH", "7.1", func(r InputRecord) InputRecord { r.PH = 7.1; return r }},
		{"temperature", "31", func(r InputRecord) InputRecord { r.Temperature = 31; return r }},
		{"humidity", " 70 ", func(r InputRecord) InputRecord { r.Humidity = 70; return r }},
		{"rainfall", "250", func(r InputRecord) InputRecord { r.Rainfall = 250; return r }},
		{"season", "rabi", func(r InputRecord) InputRecord { r.Season = Rabi; return r }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			got, err := ApplyField(base, tc.field, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want(base), got)
		})
	}
	assert.Equal(t, DefaultInput(), base, "input must not be mutated")
}

func TestApplyFieldNonNumericIsZero(t *testing.T) {
	for _, raw := range []string{"", "abc", "NaN", "Inf", "-Infinity", "1e400", "12abc"} {
		got, err := ApplyField(DefaultInput(), "N", raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 0.0, got.N, raw)
		assert.Equal(t, 50.0, got.P, raw)
	}
}

func TestApplyFieldNoRangeValidation(t *testing.T) {
	got, err := ApplyField(DefaultInput(), "pH", "99")
	require.NoError(t, err)
	assert.Equal(t, 99.0, got.PH)

	got, err = ApplyField(DefaultInput(), "rainfall", "-5")
	require.NoError(t, err)
	assert.Equal(t, -5.0, got.Rainfall)
}

func TestApplyFieldRejectsUnknown(t *testing.T) {
	base := DefaultInput()

	got, err := ApplyField(base, "season", "monsoon")
	require.Error(t, err)
	assert.Equal(t, base, got)

	_, err = ApplyField(base, "nitrogen", "10")
	require.Error(t, err)
}

func TestMergeWeatherTouchesOnlyEnvironment(t *testing.T) {
	in := InputRecord{N: 1, P: 2, K: 3, PH: 4, Temperature: 5, Humidity: 6, Rainfall: 7, Season: Zaid}
	out := MergeWeather(in, WeatherReading{Temperature: 30, Humidity: 55, Rainfall: 12, Location: "Pune, IN", Source: SourceLive})

	assert.Equal(t, InputRecord{N: 1, P: 2, K: 3, PH: 4, Temperature: 30, Humidity: 55, Rainfall: 12, Season: Zaid}, out)
}

func TestRecommendationValidate(t *testing.T) {
	assert.NoError(t, Recommendation{Crops: []string{"Rice", "Wheat"}, Probabilities: []float64{0.8, 0.6}}.Validate())
	assert.NoError(t, Recommendation{}.Validate())
	assert.Error(t, Recommendation{Crops: []string{"Rice"}, Probabilities: []float64{0.8, 0.6}}.Validate())
	assert.Error(t, Recommendation{Crops: []string{"Rice"}, Probabilities: []float64{1.2}}.Validate())
}

func TestFieldSpecsIsACopy(t *testing.T) {
	specs := FieldSpecs()
	require.Len(t, specs, 8)
	specs[0].Name = "mutated"
	assert.Equal(t, "N", FieldSpecs()[0].Name)
}

func TestResultsCloneIsDeep(t *testing.T) {
	r := &ResultsRecord{Crops: []string{"Rice"}, Probabilities: []float64{0.8}}
	c := r.Clone()
	c.Crops[0] = "Maize"
	assert.Equal(t, "Rice", r.Crops[0])
	assert.Nil(t, (*ResultsRecord)(nil).Clone())
}
