package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"wohee/vodtracker/internal/logging"
)

const appwriteBreakerName = "appwrite"

// AppwriteConfig holds the REST endpoint and credentials of a project.
type AppwriteConfig struct {
	Endpoint    string
	ProjectID   string
	APIKey      string
	DatabaseID  string
	Collections Collections
	Timeout     time.Duration
}

// AppwriteStore talks to the Appwrite databases REST API. Every call runs
// through a circuit breaker so a dead upstream fails fast.
type AppwriteStore struct {
	cfg      AppwriteConfig
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[[]byte]
	observe  CallObserver
	onChange func(name, from, to string)
}

type AppwriteOption func(*AppwriteStore)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(c *http.Client) AppwriteOption {
	return func(s *AppwriteStore) { s.client = c }
}

func WithCallObserver(fn CallObserver) AppwriteOption {
	return func(s *AppwriteStore) { s.observe = fn }
}

// WithBreakerObserver is told about breaker state transitions.
func WithBreakerObserver(fn func(name, from, to string)) AppwriteOption {
	return func(s *AppwriteStore) { s.onChange = fn }
}

func NewAppwriteStore(cfg AppwriteConfig, opts ...AppwriteOption) *AppwriteStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	s := &AppwriteStore{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Timeout}
	}

	s.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        appwriteBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},
		// client mistakes are answers, not outages
		IsSuccessful: func(err error) bool {
			var remote *RemoteError
			if errors.As(err, &remote) {
				return remote.Status < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if s.onChange != nil {
				s.onChange(name, from.String(), to.String())
			}
		},
	})
	return s
}

// State returns the breaker state, e.g. "closed" or "open".
func (s *AppwriteStore) State() string {
	return s.cb.State().String()
}

func (s *AppwriteStore) ListDocuments(ctx context.Context, collection string, queries ...Query) (list *DocumentList, err error) {
	defer s.track("list", collection, time.Now(), &err)

	if _, _, err := pagination(queries); err != nil {
		return nil, err
	}
	path, err := s.documentsPath(collection)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for _, q := range queries {
		encoded, err := json.Marshal(q)
		if err != nil {
			return nil, fmt.Errorf("encode query %s: %w", q, err)
		}
		params.Add("queries[]", string(encoded))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	body, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	list = &DocumentList{}
	if err := json.Unmarshal(body, list); err != nil {
		return nil, fmt.Errorf("decode document list: %w", err)
	}
	if list.Documents == nil {
		list.Documents = []Document{}
	}
	return list, nil
}

func (s *AppwriteStore) CreateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer s.track("create", collection, time.Now(), &err)

	path, err := s.documentsPath(collection)
	if err != nil {
		return nil, err
	}
	if documentID == "" {
		documentID = "unique()"
	}
	payload := map[string]any{"documentId": documentID, "data": data}

	body, err := s.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

func (s *AppwriteStore) UpdateDocument(ctx context.Context, collection, documentID string, data map[string]any) (doc Document, err error) {
	defer s.track("update", collection, time.Now(), &err)

	path, err := s.documentsPath(collection)
	if err != nil {
		return nil, err
	}
	body, err := s.do(ctx, http.MethodPatch, path+"/"+url.PathEscape(documentID), map[string]any{"data": data})
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

func (s *AppwriteStore) DeleteDocument(ctx context.Context, collection, documentID string) (err error) {
	defer s.track("delete", collection, time.Now(), &err)

	path, err := s.documentsPath(collection)
	if err != nil {
		return err
	}
	_, err = s.do(ctx, http.MethodDelete, path+"/"+url.PathEscape(documentID), nil)
	return err
}

// Ping reads the database record, which proves both reachability and the
// API key.
func (s *AppwriteStore) Ping(ctx context.Context) (err error) {
	defer s.track("ping", "", time.Now(), &err)
	_, err = s.do(ctx, http.MethodGet, "/databases/"+url.PathEscape(s.cfg.DatabaseID), nil)
	return err
}

func (s *AppwriteStore) documentsPath(collection string) (string, error) {
	id, err := s.cfg.Collections.resolve(collection)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(s.cfg.DatabaseID), url.PathEscape(id)), nil
}

func (s *AppwriteStore) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return s.cb.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, s.cfg.Endpoint+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Appwrite-Project", s.cfg.ProjectID)
		if s.cfg.APIKey != "" {
			req.Header.Set("X-Appwrite-Key", s.cfg.APIKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 300 {
			return nil, remoteError(resp.StatusCode, body)
		}
		return body, nil
	})
}

func remoteError(status int, body []byte) error {
	remote := &RemoteError{Status: status}
	var payload struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		remote.Message = payload.Message
		remote.Type = payload.Type
	}
	if remote.Message == "" {
		remote.Message = http.StatusText(status)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, remote)
	}
	return remote
}

func decodeDocument(body []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func (s *AppwriteStore) track(op, collection string, start time.Time, err *error) {
	if s.observe != nil {
		s.observe("appwrite", op, collection, time.Since(start), *err)
	}
}
