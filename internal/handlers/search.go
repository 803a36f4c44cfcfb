package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"filefinder/internal/database"
	"filefinder/internal/logging"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
)

// SearchItem is one entry in a search response.
type SearchItem struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"sizeHuman"`
	Modified  string `json:"modified,omitempty"`
}

// SearchResult is the search response envelope.
type SearchResult struct {
	Items    []SearchItem `json:"items"`
	Query    string       `json:"query"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Count    int          `json:"count"`
}

// Search handles GET /api/search. Query words are whitespace separated
// and all must match the entry's full path, case-insensitively. The sort
// parameter is a comma-separated list of field[:asc|desc] keys over
// name, path, size and mtime.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	sortKeys, err := parseSortSpec(r.URL.Query().Get("sort"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := defaultPageSize
	if ps, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	it, err := h.store.Search(r.Context(), database.SearchOptions{
		Query:  query,
		Sort:   sortKeys,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		logging.Error("Search failed: %v", err)
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}
	defer it.Close()

	items := make([]SearchItem, 0, pageSize)
	for {
		e, ok, err := it.Next()
		if err != nil {
			logging.Error("Search iteration failed: %v", err)
			writeJSONError(w, "Search failed", http.StatusInternalServerError)
			return
		}
		if !ok {
			break
		}
		items = append(items, toSearchItem(e))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResult{
		Items:    items,
		Query:    query,
		Page:     page,
		PageSize: pageSize,
		Count:    len(items),
	})
}

func toSearchItem(e database.Entry) SearchItem {
	item := SearchItem{
		Path:      e.Path(),
		Name:      e.Name,
		Kind:      string(e.Kind),
		Size:      e.Size,
		SizeHuman: humanize.Bytes(uint64(e.Size)),
	}
	if e.MtimeMS > 0 {
		item.Modified = time.UnixMilli(e.MtimeMS).UTC().Format(time.RFC3339)
	}
	return item
}

var sortFields = map[string]database.SortField{
	"name":  database.SortByName,
	"path":  database.SortByPath,
	"size":  database.SortBySize,
	"mtime": database.SortByMtime,
}

// parseSortSpec turns "size:desc,name" into sort keys.
func parseSortSpec(spec string) ([]database.SortKey, error) {
	if spec == "" {
		return nil, nil
	}

	var keys []database.SortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fieldName, orderName, hasOrder := strings.Cut(part, ":")
		field, ok := sortFields[strings.ToLower(fieldName)]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", fieldName)
		}

		order := database.SortAsc
		if hasOrder {
			switch strings.ToLower(orderName) {
			case "asc":
			case "desc":
				order = database.SortDesc
			default:
				return nil, fmt.Errorf("unknown sort order %q", orderName)
			}
		}
		keys = append(keys, database.SortKey{Field: field, Order: order})
	}
	return keys, nil
}
