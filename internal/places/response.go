package places

import (
	"strconv"
	"strings"
	"time"
)

// weekdayNames maps API day indices to weekday names. Day 0 is Sunday.
var weekdayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

var priceLevelLabels = map[int]string{
	0: "Free",
	1: "Inexpensive",
	2: "Moderate",
	3: "Expensive",
	4: "Very Expensive",
}

var businessStatusLabels = map[string]string{
	"OPERATIONAL":        "Operational",
	"CLOSED_TEMPORARILY": "Closed Temporarily",
	"CLOSED_PERMANENTLY": "Closed Permanently",
}

// amenityLabels is the fixed set of boolean place fields surfaced as
// amenities, mapped to human labels.
var amenityLabels = map[string]string{
	"curbside_pickup":                "Curbside Pickup",
	"delivery":                       "Delivery",
	"dine_in":                        "Dine-in",
	"reservable":                     "Reservations",
	"serves_beer":                    "Beer",
	"serves_breakfast":               "Breakfast",
	"serves_brunch":                  "Brunch",
	"serves_dinner":                  "Dinner",
	"serves_lunch":                   "Lunch",
	"serves_vegetarian_food":         "Vegetarian Food",
	"serves_wine":                    "Wine",
	"takeout":                        "Takeout",
	"wheelchair_accessible_entrance": "Wheelchair Accessible Entrance",
}

// PriceLevelLabel maps a numeric price level to its label. Unmapped levels
// return "Unknown".
func PriceLevelLabel(level int) string {
	if label, ok := priceLevelLabels[level]; ok {
		return label
	}
	return "Unknown"
}

// BusinessStatusLabel maps an API business status to its label. Unmapped
// statuses return "Unknown".
func BusinessStatusLabel(status string) string {
	if label, ok := businessStatusLabels[status]; ok {
		return label
	}
	return "Unknown"
}

// Response is a stateless wrapper around one decoded API payload. Every
// accessor re-derives its value from the raw structure on each call.
type Response struct {
	raw     map[string]interface{}
	cacheID string
}

// NewResponse wraps a decoded payload
func NewResponse(raw map[string]interface{}) *Response {
	return &Response{raw: raw}
}

// Raw returns the wrapped payload unchanged
func (r *Response) Raw() map[string]interface{} {
	return r.raw
}

// CacheIdentifier returns the cache key this response was stored under,
// or empty when the response did not pass through the cache pipeline.
func (r *Response) CacheIdentifier() string {
	return r.cacheID
}

// Status returns the API status field
func (r *Response) Status() string {
	s, _ := r.raw["status"].(string)
	return s
}

// IsZeroResults reports whether the API found no matches. This is a
// successful outcome, not an error.
func (r *Response) IsZeroResults() bool {
	return r.Status() == "ZERO_RESULTS"
}

// Results returns the result list. Endpoints that return a single "result"
// object (place details) are normalized to a one-element list.
func (r *Response) Results() []map[string]interface{} {
	if list, ok := asSlice(r.raw["results"]); ok {
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if m, ok := asMap(item); ok {
				out = append(out, m)
			}
		}
		return out
	}
	if m, ok := asMap(r.raw["result"]); ok {
		return []map[string]interface{}{m}
	}
	return nil
}

// FirstResult returns the first result, or nil when there is none
func (r *Response) FirstResult() map[string]interface{} {
	results := r.Results()
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// Predictions returns autocomplete predictions
func (r *Response) Predictions() []map[string]interface{} {
	list, ok := asSlice(r.raw["predictions"])
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// NextPageToken returns the pagination token, when present
func (r *Response) NextPageToken() string {
	s, _ := r.raw["next_page_token"].(string)
	return s
}

// HTMLAttributions returns the attribution strings the API requires to be
// shown alongside results
func (r *Response) HTMLAttributions() []string {
	list, ok := asSlice(r.raw["html_attributions"])
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// PlaceID returns the first result's place ID
func (r *Response) PlaceID() string {
	return fieldString(r.FirstResult(), "place_id")
}

// Name returns the first result's name
func (r *Response) Name() string {
	return fieldString(r.FirstResult(), "name")
}

// FormattedAddress returns the first result's formatted address
func (r *Response) FormattedAddress() string {
	return fieldString(r.FirstResult(), "formatted_address")
}

// Website returns the first result's website URL
func (r *Response) Website() string {
	return fieldString(r.FirstResult(), "website")
}

// Rating returns the first result's rating
func (r *Response) Rating() (float64, bool) {
	return fieldFloat(r.FirstResult(), "rating")
}

// UserRatingsTotal returns the first result's ratings count
func (r *Response) UserRatingsTotal() (int, bool) {
	f, ok := fieldFloat(r.FirstResult(), "user_ratings_total")
	return int(f), ok
}

// Types returns the first result's type tags
func (r *Response) Types() []string {
	list, ok := asSlice(fieldValue(r.FirstResult(), "types"))
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Location returns the first result's coordinates
func (r *Response) Location() (lat, lng float64, ok bool) {
	geometry, ok := asMap(fieldValue(r.FirstResult(), "geometry"))
	if !ok {
		return 0, 0, false
	}
	location, ok := asMap(geometry["location"])
	if !ok {
		return 0, 0, false
	}
	lat, latOK := fieldFloat(location, "lat")
	lng, lngOK := fieldFloat(location, "lng")
	return lat, lng, latOK && lngOK
}

// Reviews returns the first result's reviews
func (r *Response) Reviews() []map[string]interface{} {
	list, ok := asSlice(fieldValue(r.FirstResult(), "reviews"))
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// Photos returns the first result's photo descriptors
func (r *Response) Photos() []map[string]interface{} {
	list, ok := asSlice(fieldValue(r.FirstResult(), "photos"))
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if m, ok := asMap(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// AddressComponent returns the long name of the first address component
// whose type set contains componentType. First match wins, not best match.
func (r *Response) AddressComponent(componentType string) (string, bool) {
	components, ok := asSlice(fieldValue(r.FirstResult(), "address_components"))
	if !ok {
		return "", false
	}

	for _, item := range components {
		component, ok := asMap(item)
		if !ok {
			continue
		}
		types, ok := asSlice(component["types"])
		if !ok {
			continue
		}
		for _, t := range types {
			if s, ok := t.(string); ok && s == componentType {
				return fieldString(component, "long_name"), true
			}
		}
	}
	return "", false
}

// OpeningPeriods returns the first result's opening-hours periods
func (r *Response) OpeningPeriods() []Period {
	hours, ok := asMap(fieldValue(r.FirstResult(), "opening_hours"))
	if !ok {
		return nil
	}
	list, ok := asSlice(hours["periods"])
	if !ok {
		return nil
	}

	periods := make([]Period, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		open, ok := asMap(m["open"])
		if !ok {
			continue
		}
		period := Period{Open: parseDayTime(open)}
		if closeMap, ok := asMap(m["close"]); ok {
			dt := parseDayTime(closeMap)
			period.Close = &dt
		}
		periods = append(periods, period)
	}
	return periods
}

// FormattedOpeningHours builds a weekday-name map of formatted hours.
// Periods are not sorted or deduplicated: the last period for a given day
// overwrites earlier ones, since the output keys by day name.
func (r *Response) FormattedOpeningHours() map[string]DayHours {
	periods := r.OpeningPeriods()
	if len(periods) == 0 {
		return nil
	}

	hours := make(map[string]DayHours, len(periods))
	for _, period := range periods {
		day := period.Open.Day
		if day < 0 || day > 6 {
			continue
		}

		entry := DayHours{Open: formatHHMM(period.Open.Time)}
		if period.Close != nil {
			entry.Close = formatHHMM(period.Close.Time)
		} else {
			entry.Close = "24:00"
			entry.Is24Hours = true
		}
		hours[weekdayNames[day]] = entry
	}
	return hours
}

// CurrentOpeningPeriod returns the first period covering the given local
// time. Periods that cross midnight are evaluated against their opening
// day only, so a Friday 22:00-02:00 period does not match early Saturday.
func (r *Response) CurrentOpeningPeriod(now time.Time) (Period, bool) {
	day := int(now.Weekday())
	hhmm := now.Hour()*100 + now.Minute()

	for _, period := range r.OpeningPeriods() {
		if period.Open.Day != day {
			continue
		}
		open, err := strconv.Atoi(period.Open.Time)
		if err != nil || hhmm < open {
			continue
		}
		if period.Close == nil {
			return period, true
		}
		closeAt, err := strconv.Atoi(period.Close.Time)
		if err != nil {
			continue
		}
		if hhmm <= closeAt {
			return period, true
		}
	}
	return Period{}, false
}

// FormattedPhoneNumber strips all non-digit characters from the first
// result's phone number. Exactly 10 digits render as "(XXX) XXX-XXXX";
// anything else is returned as the plain digit string.
func (r *Response) FormattedPhoneNumber() string {
	phone := fieldString(r.FirstResult(), "formatted_phone_number")

	var digits strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	d := digits.String()
	if len(d) != 10 {
		return d
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// FormattedPriceLevel returns the label for the first result's price level
func (r *Response) FormattedPriceLevel() string {
	level, ok := fieldFloat(r.FirstResult(), "price_level")
	if !ok {
		return "Unknown"
	}
	return PriceLevelLabel(int(level))
}

// FormattedBusinessStatus returns the label for the first result's
// business status
func (r *Response) FormattedBusinessStatus() string {
	return BusinessStatusLabel(fieldString(r.FirstResult(), "business_status"))
}

// Amenities collects the known boolean amenity fields that are present and
// true on the first result, mapped field name to human label.
func (r *Response) Amenities() map[string]string {
	result := r.FirstResult()
	if result == nil {
		return nil
	}

	amenities := make(map[string]string)
	for field, label := range amenityLabels {
		if enabled, ok := result[field].(bool); ok && enabled {
			amenities[field] = label
		}
	}
	return amenities
}

func parseDayTime(m map[string]interface{}) DayTime {
	day := -1
	if f, ok := fieldFloat(m, "day"); ok {
		day = int(f)
	}
	return DayTime{Day: day, Time: fieldString(m, "time")}
}

// formatHHMM renders a 4-digit "HHMM" time as "HH:MM". Other shapes are
// returned unchanged.
func formatHHMM(t string) string {
	if len(t) != 4 {
		return t
	}
	return t[:2] + ":" + t[2:]
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok && m != nil
}

func asSlice(v interface{}) ([]interface{}, bool) {
	list, ok := v.([]interface{})
	return list, ok
}

func fieldValue(m map[string]interface{}, key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}

func fieldString(m map[string]interface{}, key string) string {
	s, _ := fieldValue(m, key).(string)
	return s
}

func fieldFloat(m map[string]interface{}, key string) (float64, bool) {
	switch v := fieldValue(m, key).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
