package core

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed maps/classic.map
var classicMap []byte

// ErrAsymmetricAdjacency is returned when a map lists a border in one direction only.
var ErrAsymmetricAdjacency = errors.New("asymmetric adjacency")

// Territory is the static identity of a board node
type Territory struct {
	Name       string
	Continent  string
	Neighbours []string
}

// Continent groups territories and grants Bonus troops to a player holding all of them
type Continent struct {
	Name        string
	Bonus       int
	Territories []string
}

// World is the read-only board topology shared by every game.
type World struct {
	territories map[string]*Territory
	order       []string
	continents  []*Continent
	adjacent    map[string]map[string]struct{}
}

// ClassicWorld loads the embedded 42-territory board.
func ClassicWorld() (*World, error) {
	return LoadWorld(bytes.NewReader(classicMap))
}

// MustClassicWorld is ClassicWorld for package initialisation and tests.
func MustClassicWorld() *World {
	w, err := ClassicWorld()
	if err != nil {
		panic("classic map is invalid: " + err.Error())
	}
	return w
}

// LoadWorldFile loads the map at path, or the classic board when path is empty.
func LoadWorldFile(path string) (*World, error) {
	if path == "" {
		return ClassicWorld()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map %s: %w", path, err)
	}
	defer f.Close()
	w, err := LoadWorld(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load map %s: %w", path, err)
	}
	return w, nil
}

// LoadWorld parses a map definition. Every border must be declared from both
// sides; a one-sided border fails the load.
func LoadWorld(r io.Reader) (*World, error) {
	w := &World{
		territories: make(map[string]*Territory),
		adjacent:    make(map[string]map[string]struct{}),
	}

	declared := make(map[string][]string)
	var current *Continent
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ">") {
			c, err := parseContinent(line[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			w.continents = append(w.continents, c)
			current = c
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("line %d: territory %q declared before any continent", lineNo, line)
		}

		name, rest, found := strings.Cut(line, " - ")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("line %d: expected \"Territory - Neighbour, ...\"", lineNo)
		}
		if _, dup := w.territories[name]; dup {
			return nil, fmt.Errorf("line %d: territory %q declared twice", lineNo, name)
		}

		var neighbours []string
		for _, n := range strings.Split(rest, ",") {
			if n = strings.TrimSpace(n); n != "" {
				neighbours = append(neighbours, n)
			}
		}

		w.territories[name] = &Territory{Name: name, Continent: current.Name, Neighbours: neighbours}
		w.order = append(w.order, name)
		current.Territories = append(current.Territories, name)
		declared[name] = neighbours
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}

	for _, c := range w.continents {
		if len(c.Territories) == 0 {
			return nil, fmt.Errorf("continent %q has no territories", c.Name)
		}
	}
	if len(w.order) == 0 {
		return nil, errors.New("map has no territories")
	}

	for _, name := range w.order {
		w.adjacent[name] = make(map[string]struct{})
	}
	for _, name := range w.order {
		for _, n := range declared[name] {
			if _, ok := w.territories[n]; !ok {
				return nil, fmt.Errorf("territory %q borders unknown territory %q", name, n)
			}
			if n == name {
				return nil, fmt.Errorf("territory %q borders itself", name)
			}
			if !contains(declared[n], name) {
				return nil, fmt.Errorf("%w: %q lists %q but not the reverse", ErrAsymmetricAdjacency, name, n)
			}
			w.adjacent[name][n] = struct{}{}
		}
	}

	return w, nil
}

func parseContinent(header string) (*Continent, error) {
	header = strings.TrimSpace(header)
	idx := strings.LastIndex(header, " ")
	if idx <= 0 {
		return nil, fmt.Errorf("continent header %q needs a name and a bonus", header)
	}
	bonus, err := strconv.Atoi(header[idx+1:])
	if err != nil || bonus < 0 {
		return nil, fmt.Errorf("continent header %q has an invalid bonus", header)
	}
	return &Continent{Name: strings.TrimSpace(header[:idx]), Bonus: bonus}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Territory returns the static record for name.
func (w *World) Territory(name string) (*Territory, bool) {
	t, ok := w.territories[name]
	return t, ok
}

func (w *World) HasTerritory(name string) bool {
	_, ok := w.territories[name]
	return ok
}

// Adjacent reports whether a and b share a border.
func (w *World) Adjacent(a, b string) bool {
	_, ok := w.adjacent[a][b]
	return ok
}

// Neighbours returns the territories bordering name in definition order.
func (w *World) Neighbours(name string) []string {
	t, ok := w.territories[name]
	if !ok {
		return nil
	}
	return append([]string(nil), t.Neighbours...)
}

// TerritoryNames returns every territory in definition order.
func (w *World) TerritoryNames() []string {
	return append([]string(nil), w.order...)
}

func (w *World) NumTerritories() int {
	return len(w.order)
}

func (w *World) Continents() []*Continent {
	return w.continents
}

// ContinentOf returns the continent containing the territory.
func (w *World) ContinentOf(name string) (*Continent, bool) {
	t, ok := w.territories[name]
	if !ok {
		return nil, false
	}
	for _, c := range w.continents {
		if c.Name == t.Continent {
			return c, true
		}
	}
	return nil, false
}

// Lookup resolves a player-typed territory name, ignoring case and
// surrounding whitespace.
func (w *World) Lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := w.territories[name]; ok {
		return name, true
	}
	for _, n := range w.order {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
