// Command genmock writes an offline fixture set: a synthetic ledger for a
// block of Columbus ZIPs plus the availability and geometry artifacts built
// from it. Boundaries come from a square grid instead of TIGERweb so the API
// can be run without network access. Output is reproducible for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -ledger data/mock/refined.txt \
//	  -availability data/mock/availability.json \
//	  -geometry data/mock/columbus-zips.geojson
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/couchcryptid/zip-coverage/internal/adapter/filestore"
	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
	"github.com/couchcryptid/zip-coverage/internal/observability"
	"github.com/couchcryptid/zip-coverage/internal/pipeline"
)

const (
	firstZIP  = 43201
	gridCols  = 6
	cellDeg   = 0.03
	originLon = -83.12
	originLat = 39.92
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ledgerOut := flag.String("ledger", "", "output path for the synthetic ledger")
	availOut := flag.String("availability", "", "output path for the availability artifact")
	geomOut := flag.String("geometry", "", "output path for the geometry artifact")
	count := flag.Int("zips", 30, "number of consecutive ZIPs starting at 43201")
	gaps := flag.Int("gaps", 2, "number of ZIPs left without geometry")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *ledgerOut == "" || *availOut == "" || *geomOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -ledger, -availability, -geometry")
	}
	if *count <= 0 {
		return fmt.Errorf("-zips must be positive")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	zips := make([]string, *count)
	for i := range zips {
		zips[i] = strconv.Itoa(firstZIP + i)
	}

	ledger := buildLedger(rng, zips)
	if err := filestore.WriteFileAtomic(*ledgerOut, []byte(ledger)); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	log.Printf("wrote ledger: %s (%d ZIPs)", *ledgerOut, len(zips))

	store := filestore.New(*ledgerOut, *availOut, *geomOut)
	p := pipeline.New(store, pipeline.Options{}, observability.NopLogger(), observability.NewMetricsForTesting())
	ctx := context.Background()

	ext, err := p.BuildAvailability(ctx, store)
	if err != nil {
		return err
	}
	log.Printf("wrote availability: %s (%d entries)", *availOut, ext.Table.Len())

	grid := newGridSource(zips, pickGaps(rng, zips, *gaps))
	res, err := p.FetchBoundaries(ctx, grid, store)
	if err != nil {
		return err
	}
	log.Printf("wrote geometry: %s (%d features, missing %v)", *geomOut, len(res.Collection.Features), res.Missing)
	return nil
}

// buildLedger writes one section per ZIP with a random status for each brand.
// Roughly one section in eight leaves a brand out.
func buildLedger(rng *rand.Rand, zips []string) string {
	var b strings.Builder
	for _, zip := range zips {
		fmt.Fprintf(&b, "%s: Columbus, OH\n", zip)
		for _, brand := range domain.Brands {
			if rng.IntN(8) == 0 {
				continue
			}
			status := "Available"
			if rng.IntN(3) == 0 {
				status = "Unavailable"
			}
			fmt.Fprintf(&b, "%s - %s\n", strings.ToUpper(string(brand)), status)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pickGaps(rng *rand.Rand, zips []string, n int) map[string]bool {
	out := make(map[string]bool, n)
	for _, i := range rng.Perm(len(zips)) {
		if len(out) >= n {
			break
		}
		out[zips[i]] = true
	}
	return out
}

// gridSource answers boundary queries with one square cell per ZIP.
type gridSource struct {
	cells map[string][2]float64
	gaps  map[string]bool
}

func newGridSource(zips []string, gaps map[string]bool) *gridSource {
	cells := make(map[string][2]float64, len(zips))
	for i, zip := range zips {
		col, row := i%gridCols, i/gridCols
		cells[zip] = [2]float64{originLon + float64(col)*cellDeg, originLat + float64(row)*cellDeg}
	}
	return &gridSource{cells: cells, gaps: gaps}
}

func (g *gridSource) QueryZIPs(_ context.Context, zips []string) ([]geo.Feature, error) {
	features := make([]geo.Feature, 0, len(zips))
	for _, zip := range zips {
		if g.gaps[zip] {
			continue
		}
		c, ok := g.cells[zip]
		if !ok {
			continue
		}
		geom, err := json.Marshal(map[string]any{
			"type": "Polygon",
			"coordinates": [][][]float64{{
				{c[0], c[1]},
				{c[0] + cellDeg, c[1]},
				{c[0] + cellDeg, c[1] + cellDeg},
				{c[0], c[1] + cellDeg},
				{c[0], c[1]},
			}},
		})
		if err != nil {
			return nil, err
		}
		features = append(features, geo.Feature{
			Type:       "Feature",
			Geometry:   geom,
			Properties: geo.Properties{ZIP: zip},
		})
	}
	return features, nil
}
