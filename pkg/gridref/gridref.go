// Package gridref converts WGS84 positions to Ordnance Survey National
// Grid references.
package gridref

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/fofanov/go-osgb"
)

var ErrOutsideGrid = errors.New("position outside the National Grid")

// Ref is a National Grid position in metres.
type Ref struct {
	Easting  float64
	Northing float64
}

// Letters returns the two letter code of the 100 km square containing r.
func (r Ref) Letters() (string, error) {
	if r.Easting < 0 || r.Easting >= 700000 || r.Northing < 0 || r.Northing >= 1300000 {
		return "", ErrOutsideGrid
	}
	e100k := int(math.Floor(r.Easting / 100000))
	n100k := int(math.Floor(r.Northing / 100000))
	l1 := (19 - n100k) - (19-n100k)%5 + (e100k+10)/5
	l2 := (19-n100k)*5%25 + e100k%5
	// the grid alphabet has no I
	if l1 > 7 {
		l1++
	}
	if l2 > 7 {
		l2++
	}
	return string([]byte{byte('A' + l1), byte('A' + l2)}), nil
}

// Format renders r with the given total number of digits (an even number
// from 2 to 10), e.g. "TL 449 584" for six digits.
func (r Ref) Format(digits int) (string, error) {
	if digits < 2 || digits > 10 || digits%2 != 0 {
		return "", fmt.Errorf("invalid grid reference precision %d", digits)
	}
	letters, err := r.Letters()
	if err != nil {
		return "", err
	}
	n := digits / 2
	div := math.Pow(10, float64(5-n))
	e := int(math.Floor(math.Mod(r.Easting, 100000) / div))
	north := int(math.Floor(math.Mod(r.Northing, 100000) / div))
	return fmt.Sprintf("%s %0*d %0*d", letters, n, e, n, north), nil
}

func (r Ref) String() string {
	s, err := r.Format(10)
	if err != nil {
		return fmt.Sprintf("(%.0f, %.0f)", r.Easting, r.Northing)
	}
	return s
}

// Converter loads the OSTN15 transformation on first use. The load is
// shared by concurrent callers and happens at most once.
type Converter struct {
	mu    sync.Mutex
	ready chan struct{} // closed when trans and err are set
	trans osgb.CoordinateTransformer
	err   error
}

func (c *Converter) transformer() (osgb.CoordinateTransformer, error) {
	c.mu.Lock()
	if c.ready == nil {
		c.ready = make(chan struct{})
		c.mu.Unlock()
		c.trans, c.err = osgb.NewOSTN15Transformer()
		if c.err != nil {
			c.err = fmt.Errorf("error loading OSTN15 transformer: %v", c.err)
		}
		close(c.ready)
	} else {
		c.mu.Unlock()
		<-c.ready
	}
	return c.trans, c.err
}

// Convert returns the National Grid position of (lat, lon).
func (c *Converter) Convert(lat, lon float64) (Ref, error) {
	trans, err := c.transformer()
	if err != nil {
		return Ref{}, err
	}
	gpsCoord := osgb.NewETRS89Coord(lon, lat, 0)
	ngCoord, err := trans.ToNationalGrid(gpsCoord)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: error translating coordinates %v: %v", ErrOutsideGrid, gpsCoord, err)
	}
	return Ref{Easting: ngCoord.Easting, Northing: ngCoord.Northing}, nil
}

var std Converter

// Convert uses a package-wide Converter.
func Convert(lat, lon float64) (Ref, error) {
	return std.Convert(lat, lon)
}
