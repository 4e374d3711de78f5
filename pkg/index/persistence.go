package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/1F47E/golf-hole-mapper/pkg/models"
)

// IndexData is the serialized form of a HoleIndex.
type IndexData struct {
	Pins  []models.Pin
	Count int
}

// SaveToFile writes every pin to a gob file.
func (h *HoleIndex) SaveToFile(filename string) error {
	h.mu.RLock()
	pins := make([]models.Pin, 0, len(h.byID))
	for _, sp := range h.byID {
		pins = append(pins, sp.Pin)
	}
	h.mu.RUnlock()
	sort.Slice(pins, func(i, j int) bool { return pins[i].ID < pins[j].ID })

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(IndexData{Pins: pins, Count: len(pins)}); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return file.Close()
}

// LoadFromFile replaces the index contents with a file written by SaveToFile.
func (h *HoleIndex) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data IndexData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	if data.Count != len(data.Pins) {
		return fmt.Errorf("corrupt index file: header says %d pins, found %d", data.Count, len(data.Pins))
	}

	h.Clear()
	h.IndexPins(data.Pins)
	return nil
}
