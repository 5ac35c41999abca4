package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchParamsPriceClamping(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  string
	}{
		{"below range", -3, "0"},
		{"lower bound", 0, "0"},
		{"in range", 2, "2"},
		{"upper bound", 4, "4"},
		{"above range", 9, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSearchParams().SetMinPrice(tt.level)
			got, ok := p.Get("minprice")
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)

			p.SetMaxPrice(tt.level)
			got, _ = p.Get("maxprice")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchParamsRadiusClamping(t *testing.T) {
	p := NewSearchParams().SetRadius(99999)
	got, _ := p.Get("radius")
	assert.Equal(t, "50000", got)

	p.SetRadius(-5)
	got, _ = p.Get("radius")
	assert.Equal(t, "0", got)

	p.SetRadius(1500)
	got, _ = p.Get("radius")
	assert.Equal(t, "1500", got)
}

func TestSearchParamsChaining(t *testing.T) {
	p := NewSearchParams()
	returned := p.SetLanguage("en").SetRegion("us").SetType("restaurant")
	assert.Same(t, p, returned)

	values := p.Values()
	assert.Equal(t, "en", values["language"])
	assert.Equal(t, "us", values["region"])
	assert.Equal(t, "restaurant", values["type"])
}

func TestParamsValuesDropEmptyEntries(t *testing.T) {
	p := NewSearchParams().SetOpenNow(true)
	assert.Equal(t, "true", p.Values()["opennow"])

	p.SetOpenNow(false)
	_, present := p.Values()["opennow"]
	assert.False(t, present, "cleared entries should be dropped from Values")

	// The key is still stored, just empty
	stored, ok := p.Get("opennow")
	assert.True(t, ok)
	assert.Equal(t, "", stored)
}

func TestSearchParamsReset(t *testing.T) {
	p := NewSearchParams().SetLanguage("fr").SetKeyword("cafe")
	p.Reset()
	assert.Empty(t, p.Values())
}

func TestPhotoParamsDefaultsAndClamping(t *testing.T) {
	p := NewPhotoParams()
	assert.Equal(t, "400", p.Values()["maxwidth"])

	p.SetMaxWidth(5000)
	assert.Equal(t, "1600", p.Values()["maxwidth"])

	p.SetMaxHeight(0)
	assert.Equal(t, "1", p.Values()["maxheight"])

	p.SetMaxWidth(800).SetMaxHeight(600)
	p.Reset()
	values := p.Values()
	assert.Equal(t, "400", values["maxwidth"])
	_, present := values["maxheight"]
	assert.False(t, present)
}

func TestAutocompleteParams(t *testing.T) {
	p := NewAutocompleteParams().
		SetSessionToken("token-1").
		SetTypes("geocode").
		SetComponents("country:us").
		SetRadius(80000).
		SetOffset(3)

	values := p.Values()
	assert.Equal(t, "token-1", values["sessiontoken"])
	assert.Equal(t, "geocode", values["types"])
	assert.Equal(t, "country:us", values["components"])
	assert.Equal(t, "50000", values["radius"])
	assert.Equal(t, "3", values["offset"])

	p.Reset()
	assert.Empty(t, p.Values())
}
