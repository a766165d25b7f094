// Package stuborg is a small stand-in for an org's REST API. It answers
// simple SOQL queries from seeded records so the screen can be driven
// without a real org.
package stuborg

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
)

type Options struct {
	Token string // bearer token to accept; empty accepts any
	Seed  Seed
	User  string
}

type server struct {
	mu      sync.Mutex
	token   string
	revoked bool
	user    string
	records map[string][]map[string]any
}

// NewRouter builds the stub's routes.
func NewRouter(opt Options) *mux.Router {
	if opt.Seed.SObjects == nil {
		opt.Seed = DefaultSeed()
	}
	if opt.User == "" {
		opt.User = "stub@example.com"
	}
	s := &server{token: opt.Token, user: opt.User, records: opt.Seed.normalize()}

	r := mux.NewRouter()
	r.HandleFunc("/services/data/{version}/query", s.authed(s.handleQuery)).Methods(http.MethodGet)
	r.HandleFunc("/services/oauth2/userinfo", s.authed(s.handleUserInfo)).Methods(http.MethodGet)
	r.HandleFunc("/services/oauth2/revoke", s.handleRevoke).Methods(http.MethodPost)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	return r
}

func (s *server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		tok := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		s.mu.Lock()
		ok := tok != "" && !s.revoked && (s.token == "" || tok == s.token)
		s.mu.Unlock()
		if !ok {
			writeErr(w, http.StatusUnauthorized, "INVALID_SESSION_ID", "Session expired or invalid")
			return
		}
		h(w, r)
	}
}

var selectRe = regexp.MustCompile(`(?i)^\s*SELECT\s+(.+?)\s+FROM\s+([A-Za-z_][A-Za-z0-9_]*)\s*$`)

type queryResult struct {
	TotalSize int              `json:"totalSize"`
	Done      bool             `json:"done"`
	Records   []map[string]any `json:"records"`
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	version := mux.Vars(r)["version"]
	q := r.URL.Query().Get("q")
	m := selectRe.FindStringSubmatch(q)
	if m == nil {
		writeErr(w, http.StatusBadRequest, "MALFORMED_QUERY", fmt.Sprintf("unexpected token in %q", q))
		return
	}
	fields := splitFields(m[1])
	sobject := m[2]

	s.mu.Lock()
	rows, ok := s.lookup(sobject)
	s.mu.Unlock()
	if !ok {
		writeErr(w, http.StatusBadRequest, "INVALID_TYPE",
			fmt.Sprintf("sObject type '%s' is not supported.", sobject))
		return
	}

	res := queryResult{Done: true, Records: make([]map[string]any, 0, len(rows))}
	for _, row := range rows {
		rec := map[string]any{
			"attributes": map[string]any{
				"type": sobject,
				"url":  fmt.Sprintf("/services/data/%s/sobjects/%s/%v", version, sobject, row["Id"]),
			},
		}
		for _, f := range fields {
			rec[f] = row[f] // absent fields come back null, as the API does
		}
		res.Records = append(res.Records, rec)
	}
	res.TotalSize = len(res.Records)
	log.Printf("stuborg: %s -> %d records", q, res.TotalSize)
	writeJSON(w, http.StatusOK, res)
}

// lookup matches sobject names case-insensitively.
func (s *server) lookup(sobject string) ([]map[string]any, bool) {
	if rows, ok := s.records[sobject]; ok {
		return rows, true
	}
	for name, rows := range s.records {
		if strings.EqualFold(name, sobject) {
			return rows, true
		}
	}
	return nil, false
}

func splitFields(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id":            "005000000000001AAA",
		"organization_id":    "00D000000000001EAA",
		"preferred_username": s.user,
		"name":               "Stub User",
		"email":              s.user,
	})
}

func (s *server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("token") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "unsupported_token_type",
			"error_description": "missing token",
		})
		return
	}
	s.mu.Lock()
	if s.token == "" || r.PostForm.Get("token") == s.token {
		s.revoked = true
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, []map[string]string{{"message": msg, "errorCode": code}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(v); err != nil {
		log.Printf("stuborg: encode response: %v", err)
	}
}
