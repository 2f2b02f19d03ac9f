package planner

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/shared/geo"

	"gopkg.in/yaml.v3"
)

// roadFactor stretches a straight-line distance into a road estimate.
const roadFactor = 1.3

var ErrUnknownCity = errors.New("unknown city")

//go:embed distances.yaml
var distancesYAML []byte

type City struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lon  float64 `yaml:"lon" json:"lon"`
}

type Route struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Km        float64 `json:"km"`
	Estimated bool    `json:"estimated"`
}

// DistanceTable answers city-to-city road distances from a static table.
type DistanceTable struct {
	cities map[string]City
	routes map[[2]string]float64
}

type distanceFile struct {
	Cities map[string]City `yaml:"cities"`
	Routes []struct {
		From string  `yaml:"from"`
		To   string  `yaml:"to"`
		Km   float64 `yaml:"km"`
	} `yaml:"routes"`
}

// DefaultTable parses the embedded table.
func DefaultTable() (*DistanceTable, error) {
	return ParseTable(distancesYAML)
}

func ParseTable(raw []byte) (*DistanceTable, error) {
	var file distanceFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse distance table: %w", err)
	}

	t := &DistanceTable{cities: map[string]City{}, routes: map[[2]string]float64{}}
	for key, c := range file.Cities {
		t.cities[cityKey(key)] = c
	}
	for _, r := range file.Routes {
		from, to := cityKey(r.From), cityKey(r.To)
		if _, ok := t.cities[from]; !ok {
			return nil, fmt.Errorf("route %s-%s: %w %q", r.From, r.To, ErrUnknownCity, r.From)
		}
		if _, ok := t.cities[to]; !ok {
			return nil, fmt.Errorf("route %s-%s: %w %q", r.From, r.To, ErrUnknownCity, r.To)
		}
		t.routes[pair(from, to)] = r.Km
	}
	return t, nil
}

// Distance returns the tabled road distance, or a haversine estimate scaled
// by roadFactor when the pair has no entry.
func (t *DistanceTable) Distance(from, to string) (Route, error) {
	a, ok := t.cities[cityKey(from)]
	if !ok {
		return Route{}, fmt.Errorf("%w %q", ErrUnknownCity, from)
	}
	b, ok := t.cities[cityKey(to)]
	if !ok {
		return Route{}, fmt.Errorf("%w %q", ErrUnknownCity, to)
	}

	route := Route{From: a.Name, To: b.Name}
	if km, ok := t.routes[pair(cityKey(from), cityKey(to))]; ok {
		route.Km = km
		return route, nil
	}
	route.Km = math.Round(geo.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)*roadFactor*10) / 10
	route.Estimated = true
	return route, nil
}

func (t *DistanceTable) City(name string) (City, bool) {
	c, ok := t.cities[cityKey(name)]
	return c, ok
}

// From lists known distances from one city, nearest first. Used to ground the
// planner prompt.
func (t *DistanceTable) From(name string) []Route {
	key := cityKey(name)
	if _, ok := t.cities[key]; !ok {
		return nil
	}
	var out []Route
	for other := range t.cities {
		if other == key {
			continue
		}
		if r, err := t.Distance(key, other); err == nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Km == out[j].Km {
			return out[i].To < out[j].To
		}
		return out[i].Km < out[j].Km
	})
	return out
}

func cityKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func pair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
