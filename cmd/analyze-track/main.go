package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ray1729/gpx-journey/pkg/colorize"
	"github.com/ray1729/gpx-journey/pkg/gpxread"
	"github.com/ray1729/gpx-journey/pkg/gridref"
	"github.com/ray1729/gpx-journey/pkg/locate"
	"github.com/ray1729/gpx-journey/pkg/panel"
	"github.com/ray1729/gpx-journey/pkg/track"
	"github.com/ray1729/gpx-journey/pkg/viewer"
)

func env(name string) []string {
	return []string{"GPX_JOURNEY_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

func main() {
	log.SetFlags(0)
	defaults := track.DefaultStopConfig()
	app := &cli.App{
		Name:  "analyze-track",
		Usage: "Find the stops in a GPX track and describe its segments",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "window",
				Usage:   "Number of consecutive points tested for a stop",
				Value:   defaults.WindowSize,
				EnvVars: env("window"),
			},
			&cli.Float64Flag{
				Name:    "stop-speed",
				Usage:   "Average speed (km/h) below which the track may be stopped",
				Value:   defaults.SpeedThresholdKmph,
				EnvVars: env("stop-speed"),
			},
			&cli.Int64Flag{
				Name:    "min-stop",
				Usage:   "Shortest stop (seconds) to report",
				Value:   defaults.MinDuration,
				EnvVars: env("min-stop"),
			},
			&cli.Float64Flag{
				Name:    "stop-radius",
				Usage:   "Distance (metres) the track may wander from the start of a stop",
				Value:   defaults.MaxDisplacement,
				EnvVars: env("stop-radius"),
			},
			&cli.StringFlag{
				Name:    "tz",
				Usage:   "Time zone for displayed times",
				Value:   "UTC",
				EnvVars: env("tz"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "summary",
				Usage:     "Write a JSON summary of each track; a directory gets one .json file per .gpx file",
				ArgsUsage: "GPX_FILE_OR_DIRECTORY",
				Action:    summaryAction,
			},
			{
				Name:      "stops",
				Usage:     "List the stops",
				ArgsUsage: "GPX_SOURCE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "national-grid",
						Aliases: []string{"osgb"},
						Usage:   "Show Ordnance Survey grid references",
						EnvVars: env("national-grid"),
					},
				},
				Action: stopsAction,
			},
			{
				Name:      "segments",
				Usage:     "List the move and stop segments",
				ArgsUsage: "GPX_SOURCE",
				Action:    segmentsAction,
			},
			{
				Name:      "geojson",
				Usage:     "Write the map layers and panel data as JSON",
				ArgsUsage: "GPX_SOURCE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Usage:   "Colour edges by fixed, speed or time",
						Value:   string(colorize.ModeSpeed),
						EnvVars: env("mode"),
					},
					&cli.BoolFlag{
						Name:    "windowed",
						Usage:   "Average the speed of short edges with their neighbours",
						EnvVars: env("windowed"),
					},
					&cli.Float64Flag{
						Name:    "min-edge",
						Usage:   "Edges shorter than this (metres) are averaged",
						Value:   colorize.DefaultMinEdgeDistance,
						EnvVars: env("min-edge"),
					},
					&cli.Float64Flag{
						Name:  "zoom",
						Usage: "Map zoom used to space direction arrows",
						Value: 15,
					},
					&cli.IntSliceFlag{
						Name:  "select",
						Usage: "Index of a segment to show; repeat for more",
					},
					&cli.BoolFlag{
						Name:    "national-grid",
						Aliases: []string{"osgb"},
						Usage:   "Add Ordnance Survey grid references to stop markers",
						EnvVars: env("national-grid"),
					},
					&cli.BoolFlag{
						Name:    "global-range",
						Usage:   "Colour selected segments against the speed range of the whole track",
						EnvVars: env("global-range"),
					},
				},
				Action: geojsonAction,
			},
			{
				Name:      "locate",
				Usage:     "Show the track point nearest a position",
				ArgsUsage: "GPX_SOURCE",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat", Usage: "Latitude", Required: true},
					&cli.Float64Flag{Name: "lon", Usage: "Longitude", Required: true},
					&cli.IntSliceFlag{
						Name:  "select",
						Usage: "Index of a segment to search; repeat for more",
					},
				},
				Action: locateAction,
			},
			{
				Name:      "range",
				Usage:     "Describe the stretch between two visible points",
				ArgsUsage: "GPX_SOURCE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from", Usage: "Index of the first point", Required: true},
					&cli.IntFlag{Name: "to", Usage: "Index of the last point", Required: true},
					&cli.IntSliceFlag{
						Name:  "select",
						Usage: "Index of a segment to show; repeat for more",
					},
				},
				Action: rangeAction,
			},
			{
				Name:      "revisits",
				Usage:     "Find places the track passes more than once",
				ArgsUsage: "GPX_SOURCE",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:    "fuzz",
						Aliases: []string{"f"},
						Usage:   "Consider two points coincident if they are within FUZZ metres of each other",
						Value:   5,
					},
					&cli.Float64Flag{
						Name:    "min-distance",
						Aliases: []string{"min"},
						Usage:   "Only show repeats that appear at least MIN kilometres apart",
						Value:   0.1,
					},
					&cli.Float64Flag{
						Name:    "max-distance",
						Aliases: []string{"max"},
						Usage:   "Do not show repeats that appear more than MAX kilometres apart",
						Value:   5.0,
					},
				},
				Action: revisitsAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func stopConfig(c *cli.Context) track.StopConfig {
	return track.StopConfig{
		WindowSize:         c.Int("window"),
		SpeedThresholdKmph: c.Float64("stop-speed"),
		MinDuration:        c.Int64("min-stop"),
		MaxDisplacement:    c.Float64("stop-radius"),
	}
}

func location(c *cli.Context) (*time.Location, error) {
	loc, err := time.LoadLocation(c.String("tz"))
	if err != nil {
		return nil, fmt.Errorf("error loading time zone %s: %v", c.String("tz"), err)
	}
	return loc, nil
}

func source(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args().First(), nil
}

// load reads and analyses the single source named on the command line.
// The returned track is nil when it has no usable points, after the
// notice has been printed.
func load(c *cli.Context) (*viewer.Track, error) {
	src, err := source(c)
	if err != nil {
		return nil, err
	}
	data, err := viewer.ReadSource(src, os.Stdin)
	if err != nil {
		return nil, err
	}
	t, err := viewer.Analyze(data, stopConfig(c))
	if err != nil {
		return nil, fmt.Errorf("error analyzing %s: %v", src, err)
	}
	if t.Empty() {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", src, t.Warning())
		return nil, nil
	}
	return t, nil
}

func writeJSON(v interface{}, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

type trackSummary struct {
	Source   string
	Metadata *gpxread.Metadata `json:",omitempty"`
	Summary  track.Summary
	Skipped  int
	Warning  string `json:",omitempty"`
}

func summarize(src string, data []byte, cfg track.StopConfig) (*trackSummary, error) {
	t, err := viewer.Analyze(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating summary of GPX track %s: %v", src, err)
	}
	return &trackSummary{
		Source:   src,
		Metadata: t.Metadata,
		Summary:  t.Summary,
		Skipped:  len(t.Skipped),
		Warning:  t.Warning(),
	}, nil
}

func summaryAction(c *cli.Context) error {
	src, err := source(c)
	if err != nil {
		return err
	}
	if src != "-" {
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return summarizeDirectory(src, stopConfig(c))
		}
	}
	data, err := viewer.ReadSource(src, os.Stdin)
	if err != nil {
		return err
	}
	s, err := summarize(src, data, stopConfig(c))
	if err != nil {
		return err
	}
	if err := writeJSON(s, c.App.Writer); err != nil {
		return fmt.Errorf("error marshalling summary for %s: %v", src, err)
	}
	return nil
}

func summarizeDirectory(dirName string, cfg track.StopConfig) error {
	files, err := os.ReadDir(dirName)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".gpx" {
			continue
		}
		filename := filepath.Join(dirName, f.Name())
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("error opening %s for reading: %v", filename, err)
		}
		log.Printf("Analyzing %s", filename)
		s, err := summarize(filename, data, cfg)
		if err != nil {
			return err
		}
		outfile := strings.TrimSuffix(filename, ".gpx") + ".json"
		wc, err := os.OpenFile(outfile, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %v", outfile, err)
		}
		if err := writeJSON(s, wc); err != nil {
			wc.Close()
			return fmt.Errorf("error marshalling JSON to %s: %v", outfile, err)
		}
		if err := wc.Close(); err != nil {
			return fmt.Errorf("error closing file %s: %v", outfile, err)
		}
	}
	return nil
}

func stopsAction(c *cli.Context) error {
	t, err := load(c)
	if t == nil || err != nil {
		return err
	}
	loc, err := location(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	for i, s := range t.Stops {
		start := time.Unix(s.StartTime, 0).In(loc).Format("2006-01-02 15:04:05")
		end := time.Unix(s.EndTime, 0).In(loc).Format("15:04:05")
		fmt.Fprintf(w, "%d\t%s - %s\t%s\t%.5f, %.5f", i+1, start, end, panel.DurationText(s.Duration), s.CenterLat, s.CenterLon)
		if c.Bool("national-grid") {
			if ref, err := gridref.Convert(s.CenterLat, s.CenterLon); err == nil {
				fmt.Fprintf(w, "\t%s", ref)
			} else {
				log.Printf("No grid reference for stop %d: %v", i+1, err)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func segmentsAction(c *cli.Context) error {
	t, err := load(c)
	if t == nil || err != nil {
		return err
	}
	loc, err := location(c)
	if err != nil {
		return err
	}
	for _, item := range panel.SegmentList(t.Segments, nil, loc) {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\t%s\t%s km/h\n",
			item.Title, item.KindLabel, item.TimeRange, item.Distance, item.Duration, item.AvgSpeed)
	}
	return nil
}

func geojsonAction(c *cli.Context) error {
	t, err := load(c)
	if t == nil || err != nil {
		return err
	}
	opts := viewer.DefaultViewOptions()
	mode, err := colorize.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	opts.Colors = colorize.Options{
		Mode:            mode,
		Windowed:        c.Bool("windowed"),
		MinEdgeDistance: c.Float64("min-edge"),
	}
	opts.Zoom = c.Float64("zoom")
	opts.NationalGrid = c.Bool("national-grid")
	opts.GlobalSpeedRange = c.Bool("global-range")
	if opts.Location, err = location(c); err != nil {
		return err
	}
	sel := viewer.NewSelection(t.Segments)
	for _, i := range c.IntSlice("select") {
		if err := sel.Set(i, true); err != nil {
			return err
		}
	}
	return writeJSON(viewer.NewModel(t, sel.Flags(), opts), c.App.Writer)
}

type logListener struct {
	src string
}

func (l logListener) TrackReady(t *viewer.Track) {
	log.Printf("Loaded %s: %d points, %d segments", l.src, len(t.Points), len(t.Segments))
}

func (l logListener) TrackRejected(reason string) {
	log.Printf("Rejected %s: %s", l.src, reason)
}

// openSession loads the source named on the command line into a new
// session and shows the segments listed by --select. The session is nil
// when the track has no usable points, after the notice has been printed.
func openSession(c *cli.Context) (*viewer.Session, error) {
	src, err := source(c)
	if err != nil {
		return nil, err
	}
	data, err := viewer.ReadSource(src, os.Stdin)
	if err != nil {
		return nil, err
	}
	s, err := viewer.Open(stopConfig(c), logListener{src})
	if err != nil {
		return nil, err
	}
	t, err := s.Load(data)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error analyzing %s: %v", src, err)
	}
	if t.Empty() {
		s.Close()
		fmt.Fprintf(c.App.Writer, "%s: %s\n", src, t.Warning())
		return nil, nil
	}
	for _, i := range c.IntSlice("select") {
		if err := s.Toggle(i); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func locateAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if s == nil || err != nil {
		return err
	}
	defer s.Close()
	lat, lon := c.Float64("lat"), c.Float64("lon")
	m, err := s.Nearest(lat, lon)
	if err != nil {
		return err
	}
	cur, _ := panel.NewCursor(s.Track().Points, m.Index, loc)
	fmt.Fprintf(c.App.Writer, "Point %d, %.0f m away: %s\n", m.Index, m.Distance, cur)
	if e, err := s.NearestEdge(lat, lon, loc); err == nil {
		fmt.Fprintf(c.App.Writer, "Edge %d: %s\n", e.Index, e)
	}
	return nil
}

func rangeAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if s == nil || err != nil {
		return err
	}
	defer s.Close()
	points := s.VisiblePoints()
	r, ok := panel.NewRange(points, c.Int("from"), c.Int("to"), loc)
	if !ok {
		return fmt.Errorf("range %d to %d is outside the %d visible points", c.Int("from"), c.Int("to"), len(points))
	}
	fmt.Fprintln(c.App.Writer, r)
	return nil
}

func revisitsAction(c *cli.Context) error {
	t, err := load(c)
	if t == nil || err != nil {
		return err
	}
	revisits := locate.Revisits(t.Points, c.Float64("fuzz"), c.Float64("min-distance")*1000.0, c.Float64("max-distance")*1000.0)
	for _, r := range revisits {
		p := t.Points[r.First]
		fmt.Fprintf(c.App.Writer, "Point (%.5f, %.5f) revisited at %0.2f km and %0.2f km\n",
			p.Lat, p.Lon, r.FirstDistance/1000.0, r.SecondDistance/1000.0)
	}
	return nil
}
