package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ray1729/gpx-journey/pkg/colorize"
	"github.com/ray1729/gpx-journey/pkg/track"
)

// Largest GPX document accepted by the handler.
const maxUploadSize = 32 << 20

type Handler struct {
	cfg track.StopConfig
}

func NewHandler(cfg track.StopConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error creating track handler: %v", err)
	}
	return &Handler{cfg: cfg}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	result, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshalling JSON: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(result)
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseViewOptions reads mode, windowed, minEdge, zoom, tz, grid,
// speedRange and range from the query string.
func parseViewOptions(q url.Values) (ViewOptions, error) {
	opts := DefaultViewOptions()
	if s := q.Get("mode"); s != "" {
		mode, err := colorize.ParseMode(s)
		if err != nil {
			return opts, err
		}
		opts.Colors.Mode = mode
	}
	if s := q.Get("windowed"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return opts, fmt.Errorf("invalid windowed: %s", s)
		}
		opts.Colors.Windowed = v
	}
	if s := q.Get("minEdge"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return opts, fmt.Errorf("invalid minEdge: %s", s)
		}
		opts.Colors.MinEdgeDistance = v
	}
	if s := q.Get("zoom"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid zoom: %s", s)
		}
		opts.Zoom = v
	}
	if s := q.Get("tz"); s != "" {
		loc, err := time.LoadLocation(s)
		if err != nil {
			return opts, fmt.Errorf("invalid tz: %s", s)
		}
		opts.Location = loc
	}
	if s := q.Get("grid"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return opts, fmt.Errorf("invalid grid: %s", s)
		}
		opts.NationalGrid = v
	}
	switch s := q.Get("speedRange"); s {
	case "", "segment":
	case "global":
		opts.GlobalSpeedRange = true
	default:
		return opts, fmt.Errorf("invalid speedRange: %s", s)
	}
	if s := q.Get("range"); s != "" {
		ij, err := parseIndices(s)
		if err != nil || len(ij) != 2 {
			return opts, fmt.Errorf("invalid range: %s", s)
		}
		opts.Span = &[2]int{ij[0], ij[1]}
	}
	return opts, nil
}

// parseIndices reads a comma separated list of indices.
func parseIndices(s string) ([]int, error) {
	var indices []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", f)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// ServeHTTP analyses the GPX document in the request body and responds
// with its Model. Segments listed in the select parameter are shown
// selected.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "POST a GPX document", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	opts, err := parseViewOptions(q)
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	selected, err := parseIndices(q.Get("select"))
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		log.Printf("Error reading request body: %v", err)
		http.Error(w, fmt.Sprintf("error reading request body: %v", err), http.StatusBadRequest)
		return
	}
	log.Printf("Handling %d byte upload mode=%s", len(data), opts.Colors.Mode)
	t, err := Analyze(data, h.cfg)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			log.Println(err)
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rejected.Reason})
			return
		}
		log.Printf("Error analyzing upload: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sel := NewSelection(t.Segments)
	for _, i := range selected {
		if err := sel.Set(i, true); err != nil {
			log.Println(err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if opts.Span != nil {
		n := len(sel.VisiblePoints())
		for _, i := range opts.Span {
			if i < 0 || i >= n {
				err := fmt.Errorf("%w: point %d not in [0, %d)", ErrOutOfRange, i, n)
				log.Println(err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, NewModel(t, sel.Flags(), opts))
}
