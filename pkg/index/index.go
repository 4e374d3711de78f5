// Package index keeps the tee and green pins of saved holes in an R-tree so a camera region
// can list what it shows and a position can find the closest holes.
package index

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/1F47E/golf-hole-mapper/pkg/geo"
	"github.com/1F47E/golf-hole-mapper/pkg/metrics"
	"github.com/1F47E/golf-hole-mapper/pkg/models"
	"github.com/dhconnelly/rtreego"
)

const (
	// pins are points; the rect only needs to be non-degenerate
	tolerance   = 1e-7
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

const (
	PinTee   = "tee"
	PinGreen = "green"
)

// spatialPin wraps a pin to implement rtreego.Spatial
type spatialPin struct {
	models.Pin
	rect      *rtreego.Rect
	partition int
}

func (sp *spatialPin) Bounds() *rtreego.Rect {
	return sp.rect
}

// HoleIndex is a thread-safe pin index split into longitude bands, one tree per band.
type HoleIndex struct {
	partitions []*rtreego.Rtree
	bounds     []models.BoundingBox
	byID       map[string]*spatialPin
	mu         sync.RWMutex
}

// NewHoleIndex creates an index with one partition per CPU.
func NewHoleIndex() *HoleIndex {
	return NewHoleIndexWithPartitions(runtime.NumCPU())
}

// NewHoleIndexWithPartitions creates an index with n longitude bands.
func NewHoleIndexWithPartitions(n int) *HoleIndex {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	partitions := make([]*rtreego.Rtree, n)
	bounds := make([]models.BoundingBox, n)

	lonRange := 360.0 / float64(n)
	for i := 0; i < n; i++ {
		partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)

		minLon := -180.0 + float64(i)*lonRange
		maxLon := minLon + lonRange
		if i == n-1 {
			maxLon = 180.0
		}
		bounds[i] = models.BoundingBox{
			BottomLeft: models.Coordinate{Latitude: -90, Longitude: minLon},
			TopRight:   models.Coordinate{Latitude: 90, Longitude: maxLon},
		}
	}

	return &HoleIndex{
		partitions: partitions,
		bounds:     bounds,
		byID:       make(map[string]*spatialPin),
	}
}

// PinID builds the stable id of a hole's tee or green pin.
func PinID(courseDocID string, holeNumber int, kind string) string {
	return fmt.Sprintf("%s/hole-%d/%s", courseDocID, holeNumber, kind)
}

// PinsFor extracts the tee and green pins of a document. Missing markers are skipped.
func PinsFor(courseDocID string, doc *models.HoleDocument) []models.Pin {
	if doc == nil {
		return nil
	}
	var pins []models.Pin
	if doc.Tee != nil {
		pins = append(pins, models.Pin{
			ID: PinID(courseDocID, doc.HoleNumber, PinTee), Course: courseDocID,
			HoleNumber: doc.HoleNumber, Kind: PinTee, Location: *doc.Tee,
		})
	}
	if doc.Green != nil {
		pins = append(pins, models.Pin{
			ID: PinID(courseDocID, doc.HoleNumber, PinGreen), Course: courseDocID,
			HoleNumber: doc.HoleNumber, Kind: PinGreen, Location: *doc.Green,
		})
	}
	return pins
}

// IndexDocuments indexes the pins of every document, replacing earlier pins of the same holes.
func (h *HoleIndex) IndexDocuments(courseDocID string, docs []*models.HoleDocument) {
	var pins []models.Pin
	for _, doc := range docs {
		pins = append(pins, PinsFor(courseDocID, doc)...)
	}
	h.IndexPins(pins)
}

// IndexPins inserts pins, replacing any pin with the same id.
func (h *HoleIndex) IndexPins(pins []models.Pin) {
	if len(pins) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	grouped := make([][]*spatialPin, len(h.partitions))
	for _, pin := range pins {
		if old, ok := h.byID[pin.ID]; ok {
			h.partitions[old.partition].Delete(old)
		}
		p := rtreego.Point{pin.Location.Latitude, pin.Location.Longitude}
		sp := &spatialPin{Pin: pin, rect: p.ToRect(tolerance), partition: h.partitionFor(pin.Location.Longitude)}
		h.byID[pin.ID] = sp
		grouped[sp.partition] = append(grouped[sp.partition], sp)
	}

	var wg sync.WaitGroup
	for i, items := range grouped {
		if len(items) == 0 {
			continue
		}
		wg.Add(1)
		go func(tree *rtreego.Rtree, items []*spatialPin) {
			defer wg.Done()
			for _, item := range items {
				tree.Insert(item)
			}
		}(h.partitions[i], items)
	}
	wg.Wait()

	metrics.IndexedPins.Set(float64(len(h.byID)))
}

// QueryRegion returns the pins visible in a camera region.
func (h *HoleIndex) QueryRegion(region models.CameraRegion) []models.Pin {
	return h.QueryBox(region.Bounds())
}

// QueryBox returns all pins within box, edges included, ordered by id.
func (h *HoleIndex) QueryBox(box models.BoundingBox) []models.Pin {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// search slightly wider than the box so pins on its edges intersect; Contains filters
	bottomLeft := rtreego.Point{box.BottomLeft.Latitude - tolerance, box.BottomLeft.Longitude - tolerance}
	size := []float64{
		box.TopRight.Latitude - box.BottomLeft.Latitude + 2*tolerance,
		box.TopRight.Longitude - box.BottomLeft.Longitude + 2*tolerance,
	}
	rect, err := rtreego.NewRect(bottomLeft, size)
	if err != nil {
		return nil
	}

	relevant := h.relevantPartitions(box)
	resultsChan := make(chan []models.Pin, len(relevant))
	for _, idx := range relevant {
		go func(tree *rtreego.Rtree) {
			var pins []models.Pin
			for _, result := range tree.SearchIntersect(rect) {
				item, ok := result.(*spatialPin)
				if !ok || item == nil {
					continue
				}
				if box.Contains(item.Location) {
					pins = append(pins, item.Pin)
				}
			}
			resultsChan <- pins
		}(h.partitions[idx])
	}

	all := []models.Pin{}
	for range relevant {
		all = append(all, <-resultsChan...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Neighbor is a pin with its distance from the query point.
type Neighbor struct {
	Pin        models.Pin
	DistanceKm float64
}

// Nearest returns up to n pins closest to c by great-circle distance.
func (h *HoleIndex) Nearest(c models.Coordinate, n int) []Neighbor {
	if n <= 0 {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	resultsChan := make(chan []Neighbor, len(h.partitions))
	for _, tree := range h.partitions {
		go func(tree *rtreego.Rtree) {
			if tree.Size() == 0 {
				resultsChan <- nil
				return
			}
			// planar candidates; re-ranked by haversine below
			candidates := tree.NearestNeighbors(n*2, rtreego.Point{c.Latitude, c.Longitude})
			out := make([]Neighbor, 0, len(candidates))
			for _, result := range candidates {
				sp, ok := result.(*spatialPin)
				if !ok || sp == nil {
					continue
				}
				out = append(out, Neighbor{Pin: sp.Pin, DistanceKm: geo.Distance(c, sp.Location)})
			}
			resultsChan <- out
		}(tree)
	}

	var all []Neighbor
	for range h.partitions {
		all = append(all, <-resultsChan...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].DistanceKm != all[j].DistanceKm {
			return all[i].DistanceKm < all[j].DistanceKm
		}
		return all[i].Pin.ID < all[j].Pin.ID
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Count returns the number of indexed pins.
func (h *HoleIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byID)
}

// Clear removes all pins from the index.
func (h *HoleIndex) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.partitions {
		h.partitions[i] = rtreego.NewTree(dimensions, minChildren, maxChildren)
	}
	h.byID = make(map[string]*spatialPin)
	metrics.IndexedPins.Set(0)
}

func (h *HoleIndex) partitionFor(lon float64) int {
	n := len(h.partitions)
	idx := int((lon + 180.0) / (360.0 / float64(n)))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// relevantPartitions returns the indices of partitions whose band overlaps the box.
func (h *HoleIndex) relevantPartitions(box models.BoundingBox) []int {
	var relevant []int
	for i, b := range h.bounds {
		if box.BottomLeft.Longitude <= b.TopRight.Longitude &&
			box.TopRight.Longitude >= b.BottomLeft.Longitude {
			relevant = append(relevant, i)
		}
	}
	return relevant
}
