package places

import (
	"fmt"
	"strconv"
)

const (
	// MaxRadiusMeters is the largest radius the API accepts for nearby
	// searches. Larger values are clamped at set-time.
	MaxRadiusMeters = 50000

	// MaxPriceLevel is the highest price level the API defines.
	MaxPriceLevel = 4

	// MaxPhotoDimension is the largest maxwidth/maxheight the photo
	// endpoint accepts.
	MaxPhotoDimension = 1600
)

// paramSet is a mutable key->scalar bag shared by the concrete parameter
// stores. It is not safe for concurrent mutation.
type paramSet struct {
	values map[string]string
}

func newParamSet(defaults map[string]string) paramSet {
	p := paramSet{values: make(map[string]string, len(defaults))}
	for k, v := range defaults {
		p.values[k] = v
	}
	return p
}

func (p *paramSet) set(key, value string) {
	p.values[key] = value
}

// Get returns the stored value for key and whether it is present.
func (p *paramSet) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Values returns a copy of the stored parameters with empty entries dropped.
func (p *paramSet) Values() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (p *paramSet) reset(defaults map[string]string) {
	p.values = make(map[string]string, len(defaults))
	for k, v := range defaults {
		p.values[k] = v
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var searchDefaults = map[string]string{}

// SearchParams holds stored parameters merged into search, nearby, text
// search, find-place and details requests.
type SearchParams struct {
	paramSet
}

// NewSearchParams creates a search parameter store with default values
func NewSearchParams() *SearchParams {
	return &SearchParams{paramSet: newParamSet(searchDefaults)}
}

// SetLanguage sets the language code for result localization
func (p *SearchParams) SetLanguage(language string) *SearchParams {
	p.set("language", language)
	return p
}

// SetRegion sets the region bias (ccTLD two-character value)
func (p *SearchParams) SetRegion(region string) *SearchParams {
	p.set("region", region)
	return p
}

// SetMinPrice sets the minimum price level, clamped to [0,4]
func (p *SearchParams) SetMinPrice(level int) *SearchParams {
	p.set("minprice", strconv.Itoa(clampInt(level, 0, MaxPriceLevel)))
	return p
}

// SetMaxPrice sets the maximum price level, clamped to [0,4]
func (p *SearchParams) SetMaxPrice(level int) *SearchParams {
	p.set("maxprice", strconv.Itoa(clampInt(level, 0, MaxPriceLevel)))
	return p
}

// SetOpenNow restricts results to places open at request time
func (p *SearchParams) SetOpenNow(openNow bool) *SearchParams {
	if openNow {
		p.set("opennow", "true")
	} else {
		p.set("opennow", "")
	}
	return p
}

// SetRadius sets the search radius in meters, clamped to [0,50000]
func (p *SearchParams) SetRadius(meters int) *SearchParams {
	p.set("radius", strconv.Itoa(clampInt(meters, 0, MaxRadiusMeters)))
	return p
}

// SetType restricts results to a single place type (e.g. "restaurant")
func (p *SearchParams) SetType(placeType string) *SearchParams {
	p.set("type", placeType)
	return p
}

// SetKeyword sets the keyword term matched against all place content
func (p *SearchParams) SetKeyword(keyword string) *SearchParams {
	p.set("keyword", keyword)
	return p
}

// SetRankBy sets the result ordering ("prominence" or "distance")
func (p *SearchParams) SetRankBy(rankBy string) *SearchParams {
	p.set("rankby", rankBy)
	return p
}

// SetPageToken sets the pagination token from a previous response.
// The token is an opaque pass-through value.
func (p *SearchParams) SetPageToken(token string) *SearchParams {
	p.set("pagetoken", token)
	return p
}

// Reset restores the default search parameters
func (p *SearchParams) Reset() *SearchParams {
	p.reset(searchDefaults)
	return p
}

var autocompleteDefaults = map[string]string{}

// AutocompleteParams holds stored parameters merged into autocomplete
// requests.
type AutocompleteParams struct {
	paramSet
}

// NewAutocompleteParams creates an autocomplete parameter store with
// default values
func NewAutocompleteParams() *AutocompleteParams {
	return &AutocompleteParams{paramSet: newParamSet(autocompleteDefaults)}
}

// SetSessionToken sets the billing session token grouping a sequence of
// autocomplete requests. Pass-through value, no logic.
func (p *AutocompleteParams) SetSessionToken(token string) *AutocompleteParams {
	p.set("sessiontoken", token)
	return p
}

// SetOffset sets the caret position within the input term
func (p *AutocompleteParams) SetOffset(offset int) *AutocompleteParams {
	p.set("offset", strconv.Itoa(offset))
	return p
}

// SetOrigin sets the point distances are calculated from
func (p *AutocompleteParams) SetOrigin(lat, lng float64) *AutocompleteParams {
	p.set("origin", formatLatLng(lat, lng))
	return p
}

// SetLocation sets the center point for location biasing
func (p *AutocompleteParams) SetLocation(lat, lng float64) *AutocompleteParams {
	p.set("location", formatLatLng(lat, lng))
	return p
}

// SetRadius sets the biasing radius in meters, clamped to [0,50000]
func (p *AutocompleteParams) SetRadius(meters int) *AutocompleteParams {
	p.set("radius", strconv.Itoa(clampInt(meters, 0, MaxRadiusMeters)))
	return p
}

// SetTypes restricts predictions to a type collection (e.g. "geocode")
func (p *AutocompleteParams) SetTypes(types string) *AutocompleteParams {
	p.set("types", types)
	return p
}

// SetComponents sets the component filter (e.g. "country:us")
func (p *AutocompleteParams) SetComponents(components string) *AutocompleteParams {
	p.set("components", components)
	return p
}

// SetLanguage sets the language code for prediction localization
func (p *AutocompleteParams) SetLanguage(language string) *AutocompleteParams {
	p.set("language", language)
	return p
}

// SetStrictBounds returns only predictions inside the biasing region
func (p *AutocompleteParams) SetStrictBounds(strict bool) *AutocompleteParams {
	if strict {
		p.set("strictbounds", "true")
	} else {
		p.set("strictbounds", "")
	}
	return p
}

// Reset restores the default autocomplete parameters
func (p *AutocompleteParams) Reset() *AutocompleteParams {
	p.reset(autocompleteDefaults)
	return p
}

var photoDefaults = map[string]string{
	"maxwidth": "400",
}

// PhotoParams holds stored parameters used when building photo URLs.
type PhotoParams struct {
	paramSet
}

// NewPhotoParams creates a photo parameter store with default values
func NewPhotoParams() *PhotoParams {
	return &PhotoParams{paramSet: newParamSet(photoDefaults)}
}

// SetMaxWidth sets the maximum image width in pixels, clamped to [1,1600]
func (p *PhotoParams) SetMaxWidth(pixels int) *PhotoParams {
	p.set("maxwidth", strconv.Itoa(clampInt(pixels, 1, MaxPhotoDimension)))
	return p
}

// SetMaxHeight sets the maximum image height in pixels, clamped to [1,1600]
func (p *PhotoParams) SetMaxHeight(pixels int) *PhotoParams {
	p.set("maxheight", strconv.Itoa(clampInt(pixels, 1, MaxPhotoDimension)))
	return p
}

// Reset restores the default photo parameters
func (p *PhotoParams) Reset() *PhotoParams {
	p.reset(photoDefaults)
	return p
}

func formatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%f,%f", lat, lng)
}
