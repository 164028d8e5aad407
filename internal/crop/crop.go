// Package crop describes the crop information form: its option lists,
// numeric ranges, parsing of a posted form and the read-back summary.
package crop

import (
	"fmt"
	"html"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const DateLayout = "2006-01-02"

var (
	Countries       = []string{"USA", "India", "Brazil", "China", "Australia"}
	CropTypes       = []string{"Wheat", "Rice", "Corn", "Soybean", "Barley"}
	IrrigationTypes = []string{"Drip", "Sprinkler", "Flood", "Pivot", "Surface"}
)

// Range bounds a numeric field. Step is only a widget hint.
type Range struct {
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	SoilPH       = Range{Min: 0, Max: 14, Default: 7, Step: 0.1}
	SoilMoisture = Range{Min: 0, Max: 100, Default: 50, Step: 0.1}
	Temperature  = Range{Min: -10, Max: 50, Default: 25, Step: 0.5}
	Humidity     = Range{Min: 0, Max: 100, Default: 60, Step: 1}
)

const DefaultFertilizer = "Organic"

const maxFertilizerLen = 120

type Submission struct {
	Reference    string
	Country      string
	CropType     string
	SoilPH       float64
	SoilMoisture float64
	Temperature  float64
	Humidity     float64
	Irrigation   string
	Fertilizer   string
	SowingDate   time.Time
	HarvestDate  time.Time
}

// Defaults is the form as first shown.
func Defaults(today time.Time) Submission {
	day := truncateDay(today)
	return Submission{
		Country:      Countries[0],
		CropType:     CropTypes[0],
		SoilPH:       SoilPH.Default,
		SoilMoisture: SoilMoisture.Default,
		Temperature:  Temperature.Default,
		Humidity:     Humidity.Default,
		Irrigation:   IrrigationTypes[0],
		Fertilizer:   DefaultFertilizer,
		SowingDate:   day,
		HarvestDate:  day,
	}
}

// FieldErrors maps a form field name to what is wrong with it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid crop form: " + strings.Join(parts, "; ")
}

var fieldLabels = []Line{
	{Label: "Country", Value: "country"},
	{Label: "Crop Type", Value: "crop_type"},
	{Label: "Soil pH", Value: "soil_ph"},
	{Label: "Soil Moisture (%)", Value: "soil_moisture"},
	{Label: "Temperature (°C)", Value: "temperature"},
	{Label: "Humidity (%)", Value: "humidity"},
	{Label: "Irrigation Type", Value: "irrigation"},
	{Label: "Fertilizer Type", Value: "fertilizer"},
	{Label: "Sowing Date", Value: "sowing_date"},
	{Label: "Harvest Date", Value: "harvest_date"},
}

// Lines lists the errors in form order, labelled the way the form labels its
// inputs. Keys that are not form fields come last, sorted.
func (e FieldErrors) Lines() []Line {
	lines := make([]Line, 0, len(e))
	known := make(map[string]bool, len(fieldLabels))
	for _, f := range fieldLabels {
		known[f.Value] = true
		if msg, ok := e[f.Value]; ok {
			lines = append(lines, Line{Label: f.Label, Value: msg})
		}
	}
	var rest []string
	for k := range e {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		lines = append(lines, Line{Label: "Form", Value: e[k]})
	}
	return lines
}

var textPolicy = bluemonday.StrictPolicy()

// Parse reads a posted form. Missing fields fall back to their defaults; any
// value outside its domain is reported, all at once. The returned Submission
// always holds the best-effort values so the form can be redrawn.
func Parse(values url.Values, today time.Time) (Submission, error) {
	sub := Defaults(today)
	errs := FieldErrors{}

	sub.Country = choice(values, "country", Countries, sub.Country, errs)
	sub.CropType = choice(values, "crop_type", CropTypes, sub.CropType, errs)
	sub.Irrigation = choice(values, "irrigation", IrrigationTypes, sub.Irrigation, errs)

	sub.SoilPH = number(values, "soil_ph", SoilPH, errs)
	sub.SoilMoisture = number(values, "soil_moisture", SoilMoisture, errs)
	sub.Temperature = number(values, "temperature", Temperature, errs)
	sub.Humidity = number(values, "humidity", Humidity, errs)

	if _, ok := values["fertilizer"]; ok {
		sub.Fertilizer = sanitizeText(values.Get("fertilizer"))
	}
	if utf8.RuneCountInString(sub.Fertilizer) > maxFertilizerLen {
		errs["fertilizer"] = fmt.Sprintf("Fertilizer type must be at most %d characters.", maxFertilizerLen)
	}

	sub.SowingDate = date(values, "sowing_date", sub.SowingDate, errs)
	sub.HarvestDate = date(values, "harvest_date", sub.HarvestDate, errs)
	if _, bad := errs["harvest_date"]; !bad && sub.HarvestDate.Before(sub.SowingDate) {
		errs["harvest_date"] = "Harvest date cannot be before the sowing date."
	}

	if len(errs) > 0 {
		return sub, errs
	}
	sub.Reference = uuid.NewString()
	return sub, nil
}

func choice(values url.Values, key string, options []string, def string, errs FieldErrors) string {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return def
	}
	v := strings.TrimSpace(raw[0])
	if !slices.Contains(options, v) {
		errs[key] = fmt.Sprintf("Choose one of %s.", strings.Join(options, ", "))
		return def
	}
	return v
}

func number(values url.Values, key string, r Range, errs FieldErrors) float64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return r.Default
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[key] = "Enter a number."
		return r.Default
	}
	if !r.Contains(v) {
		errs[key] = fmt.Sprintf("Must be between %s and %s.", FormatFloat(r.Min), FormatFloat(r.Max))
		return r.Default
	}
	return v
}

func date(values url.Values, key string, def time.Time, errs FieldErrors) time.Time {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		errs[key] = "Use the YYYY-MM-DD format."
		return def
	}
	return d
}

// sanitizeText strips markup and decodes entities; the page template does
// its own escaping.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatFloat always keeps at least one decimal, so 7 reads "7.0".
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type Line struct {
	Label string
	Value string
}

func (s Submission) Summary() []Line {
	return []Line{
		{Label: "Country", Value: s.Country},
		{Label: "Crop Type", Value: s.CropType},
		{Label: "Soil pH", Value: FormatFloat(s.SoilPH)},
		{Label: "Soil Moisture (%)", Value: FormatFloat(s.SoilMoisture)},
		{Label: "Temperature (°C)", Value: FormatFloat(s.Temperature)},
		{Label: "Humidity (%)", Value: FormatFloat(s.Humidity)},
		{Label: "Irrigation Type", Value: s.Irrigation},
		{Label: "Fertilizer Type", Value: s.Fertilizer},
		{Label: "Sowing Date", Value: s.SowingDate.Format(DateLayout)},
		{Label: "Harvest Date", Value: s.HarvestDate.Format(DateLayout)},
	}
}
