// Package profile loads and validates the synthetic data generation profile.
package profile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/electwix/shoplab/internal/store"
)

const weightTolerance = 1e-6

// WeightedValue pairs a categorical value with its sampling weight.
type WeightedValue struct {
	Value  string
	Weight float64
}

// Window bounds a date draw: offsets are taken from [0, Days) days after Start.
type Window struct {
	Start time.Time
	Days  int
}

// AmountModel parameterizes the log-normal order amount distribution.
type AmountModel struct {
	Mu    float64
	Sigma float64
}

// Profile is the fully-resolved generation profile used by the seeder.
type Profile struct {
	FirstNames  []string
	LastNames   []string
	EmailDomain string
	Cities      []WeightedValue
	Categories  []WeightedValue
	Statuses    []WeightedValue
	Signup      Window
	Orders      Window
	Amount      AmountModel
}

// Default returns the built-in profile.
func Default() Profile {
	return Profile{
		FirstNames:  []string{"Ana", "Luis", "Camila", "Diego", "Matías", "Carla", "Javiera", "Pedro"},
		LastNames:   []string{"Pérez", "González", "Soto", "Muñoz", "Rojas", "Silva", "López"},
		EmailDomain: "example.com",
		Cities: []WeightedValue{
			{Value: "Santiago", Weight: 0.45},
			{Value: "Valparaíso", Weight: 0.12},
			{Value: "Viña del Mar", Weight: 0.12},
			{Value: "Concepción", Weight: 0.15},
			{Value: "La Serena", Weight: 0.08},
			{Value: "Antofagasta", Weight: 0.08},
		},
		Categories: []WeightedValue{
			{Value: "Electronics", Weight: 0.25},
			{Value: "Groceries", Weight: 0.20},
			{Value: "Books", Weight: 0.13},
			{Value: "Home", Weight: 0.18},
			{Value: "Sports", Weight: 0.14},
			{Value: "Beauty", Weight: 0.10},
		},
		Statuses: []WeightedValue{
			{Value: string(store.StatusPaid), Weight: 0.85},
			{Value: string(store.StatusCancelled), Weight: 0.10},
			{Value: string(store.StatusRefunded), Weight: 0.05},
		},
		Signup: Window{Start: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), Days: 600},
		Orders: Window{Start: time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), Days: 480},
		Amount: AmountModel{Mu: 3.2, Sigma: 0.65},
	}
}

// TopCity returns the city with the largest weight. Ties keep the earliest
// entry.
func (p Profile) TopCity() string {
	var city string
	var best float64
	for _, wv := range p.Cities {
		if wv.Weight > best {
			city = wv.Value
			best = wv.Weight
		}
	}
	return city
}

// Split returns the values and weights of items as parallel slices.
func Split(items []WeightedValue) ([]string, []float64) {
	values := make([]string, len(items))
	weights := make([]float64, len(items))
	for i, item := range items {
		values[i] = item.Value
		weights[i] = item.Weight
	}
	return values, weights
}

// fileProfile mirrors the on-disk profile schema. Pointer and nil-able fields
// distinguish absent keys from explicit values so partial profiles override
// only what they mention.
type fileProfile struct {
	FirstNames  []string       `toml:"first_names" yaml:"first_names"`
	LastNames   []string       `toml:"last_names" yaml:"last_names"`
	EmailDomain string         `toml:"email_domain" yaml:"email_domain"`
	Cities      []fileWeighted `toml:"cities" yaml:"cities"`
	Categories  []fileWeighted `toml:"categories" yaml:"categories"`
	Statuses    []fileWeighted `toml:"statuses" yaml:"statuses"`
	Signup      fileWindow     `toml:"signup_window" yaml:"signup_window"`
	Orders      fileWindow     `toml:"order_window" yaml:"order_window"`
	Amount      fileAmount     `toml:"amount" yaml:"amount"`
}

type fileWeighted struct {
	Value  string  `toml:"value" yaml:"value"`
	Weight float64 `toml:"weight" yaml:"weight"`
}

type fileWindow struct {
	Start string `toml:"start" yaml:"start"`
	Days  *int   `toml:"days" yaml:"days"`
}

type fileAmount struct {
	Mu    *float64 `toml:"mu" yaml:"mu"`
	Sigma *float64 `toml:"sigma" yaml:"sigma"`
}

// LoadOptions tunes profile loading behavior.
type LoadOptions struct {
	Strict bool
}

// Result wraps a loaded profile alongside any non-fatal warnings.
type Result struct {
	Profile  Profile
	Warnings []string
}

// Load reads a profile file (TOML or YAML by extension), overlays it on the
// built-in defaults, and validates the merged result.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	var in fileProfile
	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &in); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &in); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return res, fmt.Errorf("%s: unsupported profile format %q (expected .toml, .yaml, or .yml)", path, ext)
	}

	unknownKeys := collectUnknownKeys(raw)
	if len(unknownKeys) > 0 {
		slices.Sort(unknownKeys)
		message := fmt.Sprintf("%s: unknown profile keys: %s", path, strings.Join(unknownKeys, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	merged := Default()
	if err := apply(&merged, in, path); err != nil {
		return res, err
	}
	if err := merged.validate(path); err != nil {
		return res, err
	}

	res.Profile = merged
	return res, nil
}

func apply(p *Profile, in fileProfile, path string) error {
	if in.FirstNames != nil {
		p.FirstNames = in.FirstNames
	}
	if in.LastNames != nil {
		p.LastNames = in.LastNames
	}
	if in.EmailDomain != "" {
		p.EmailDomain = in.EmailDomain
	}
	if in.Cities != nil {
		p.Cities = weightedValues(in.Cities)
	}
	if in.Categories != nil {
		p.Categories = weightedValues(in.Categories)
	}
	if in.Statuses != nil {
		p.Statuses = weightedValues(in.Statuses)
	}
	if err := applyWindow(&p.Signup, in.Signup, path, "signup_window"); err != nil {
		return err
	}
	if err := applyWindow(&p.Orders, in.Orders, path, "order_window"); err != nil {
		return err
	}
	if in.Amount.Mu != nil {
		p.Amount.Mu = *in.Amount.Mu
	}
	if in.Amount.Sigma != nil {
		p.Amount.Sigma = *in.Amount.Sigma
	}
	return nil
}

func applyWindow(w *Window, in fileWindow, path, field string) error {
	if in.Start != "" {
		start, err := time.Parse(store.DateLayout, in.Start)
		if err != nil {
			return fmt.Errorf("%s: %s start %q is not a %s date", path, field, in.Start, store.DateLayout)
		}
		w.Start = start
	}
	if in.Days != nil {
		w.Days = *in.Days
	}
	return nil
}

func weightedValues(items []fileWeighted) []WeightedValue {
	out := make([]WeightedValue, len(items))
	for i, item := range items {
		out[i] = WeightedValue{Value: item.Value, Weight: item.Weight}
	}
	return out
}

func (p Profile) validate(path string) error {
	if len(p.FirstNames) == 0 {
		return fmt.Errorf("%s: first_names must list at least one name", path)
	}
	if len(p.LastNames) == 0 {
		return fmt.Errorf("%s: last_names must list at least one name", path)
	}
	if p.EmailDomain == "" {
		return fmt.Errorf("%s: email_domain is required", path)
	}
	for _, pool := range []struct {
		field string
		items []WeightedValue
	}{
		{"cities", p.Cities},
		{"categories", p.Categories},
		{"statuses", p.Statuses},
	} {
		if err := validateWeighted(path, pool.field, pool.items); err != nil {
			return err
		}
	}
	for _, wv := range p.Statuses {
		if !store.ValidStatus(wv.Value) {
			return fmt.Errorf("%s: statuses value %q is not an order status", path, wv.Value)
		}
	}
	for _, win := range []struct {
		field  string
		window Window
	}{
		{"signup_window", p.Signup},
		{"order_window", p.Orders},
	} {
		if win.window.Start.IsZero() {
			return fmt.Errorf("%s: %s start is required", path, win.field)
		}
		if win.window.Days <= 0 {
			return fmt.Errorf("%s: %s days must be positive", path, win.field)
		}
	}
	if p.Amount.Sigma <= 0 {
		return fmt.Errorf("%s: amount sigma must be positive", path)
	}
	return nil
}

func validateWeighted(path, field string, items []WeightedValue) error {
	if len(items) == 0 {
		return fmt.Errorf("%s: %s must list at least one entry", path, field)
	}
	var sum float64
	for _, item := range items {
		if item.Value == "" {
			return fmt.Errorf("%s: %s entries must set a value", path, field)
		}
		if item.Weight <= 0 {
			return fmt.Errorf("%s: %s weight for %q must be positive", path, field, item.Value)
		}
		sum += item.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%s: %s weights sum to %.6f, want 1", path, field, sum)
	}
	return nil
}

func collectUnknownKeys(raw map[string]any) []string {
	known := map[string]struct{}{
		"first_names":   {},
		"last_names":    {},
		"email_domain":  {},
		"cities":        {},
		"categories":    {},
		"statuses":      {},
		"signup_window": {},
		"order_window":  {},
		"amount":        {},
	}

	unknown := make([]string, 0)
	for key := range raw {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}

	windowKeys := map[string]struct{}{"start": {}, "days": {}}
	unknown = append(unknown, nestedUnknown(raw, "signup_window", windowKeys)...)
	unknown = append(unknown, nestedUnknown(raw, "order_window", windowKeys)...)
	unknown = append(unknown, nestedUnknown(raw, "amount", map[string]struct{}{"mu": {}, "sigma": {}})...)

	for _, list := range []string{"cities", "categories", "statuses"} {
		unknown = append(unknown, listUnknown(raw, list)...)
	}
	return unknown
}

func nestedUnknown(raw map[string]any, name string, known map[string]struct{}) []string {
	value, ok := raw[name]
	if !ok {
		return nil
	}
	record, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	var unknown []string
	for key := range record {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, name+"."+key)
		}
	}
	return unknown
}

func listUnknown(raw map[string]any, name string) []string {
	value, ok := raw[name]
	if !ok {
		return nil
	}
	var records []map[string]any
	switch entries := value.(type) {
	case []any:
		for _, entry := range entries {
			if record, ok := entry.(map[string]any); ok {
				records = append(records, record)
			}
		}
	case []map[string]any:
		records = entries
	}
	known := map[string]struct{}{"value": {}, "weight": {}}
	seen := make(map[string]struct{})
	var unknown []string
	for _, record := range records {
		for key := range record {
			if _, ok := known[key]; ok {
				continue
			}
			qualified := name + "." + key
			if _, dup := seen[qualified]; dup {
				continue
			}
			seen[qualified] = struct{}{}
			unknown = append(unknown, qualified)
		}
	}
	return unknown
}
