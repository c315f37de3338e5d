// Command discussion_api serves a fixed discussion listing in the forum API
// format so the remote client can be exercised locally.
package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

//go:embed data.json
var jsonData []byte

type document struct {
	Links    map[string]string `json:"links"`
	Data     []json.RawMessage `json:"data"`
	Included []json.RawMessage `json:"included,omitempty"`
}

func main() {
	var fixture document
	if err := json.Unmarshal(jsonData, &fixture); err != nil {
		log.Fatalf("[Discussion API] invalid data.json: %v", err)
	}

	http.HandleFunc("/api/discussions", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (20-120ms)
		time.Sleep(time.Duration(20+time.Now().UnixNano()%100) * time.Millisecond)

		q := r.URL.Query()
		if sort := q.Get("sort"); sort != "" && strings.Contains(sort, "views") {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"errors": []map[string]string{{"status": "400", "code": "invalid_sort", "detail": sort}},
			})
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "" && !strings.HasPrefix(auth, "Token ") {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"errors": []map[string]string{{"status": "401", "code": "not_authenticated"}},
			})
			return
		}

		offset, _ := strconv.Atoi(q.Get("page[offset]"))
		limit, err := strconv.Atoi(q.Get("page[limit]"))
		if err != nil || limit < 1 {
			limit = 20
		}

		writeJSON(w, http.StatusOK, page(fixture, r.URL, offset, limit))
		log.Printf("[Discussion API] %s %s offset=%d limit=%d", r.Method, r.URL.Path, offset, limit)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	log.Println("Mock Discussion API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// page slices the fixture and builds first/prev/next links.
func page(fixture document, u *url.URL, offset, limit int) document {
	offset = max(offset, 0)
	end := min(offset+limit, len(fixture.Data))
	start := min(offset, end)

	link := func(off int) string {
		next := *u
		q := next.Query()
		q.Set("page[offset]", strconv.Itoa(off))
		next.RawQuery = q.Encode()

		return next.String()
	}

	out := document{
		Links:    map[string]string{"first": link(0)},
		Data:     fixture.Data[start:end],
		Included: fixture.Included,
	}
	if offset > 0 {
		out.Links["prev"] = link(max(offset-limit, 0))
	}
	if end < len(fixture.Data) {
		out.Links["next"] = link(end)
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Discussion API] write error: %v", err)
	}
}
