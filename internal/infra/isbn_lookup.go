package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLibroExternoNoEncontrado is returned when the catalogue has no record for
// the ISBN.
var ErrLibroExternoNoEncontrado = errors.New("isbn: sin resultados")

// LibroExterno is the bibliographic data recovered from the public catalogue.
type LibroExterno struct {
	ISBN      string `json:"isbn"`
	Titulo    string `json:"titulo"`
	Autor     string `json:"autor"`
	Editorial string `json:"editorial"`
	Fuente    string `json:"fuente"`
}

// openLibraryBook is the subset of the Open Library "jscmd=data" payload we use.
type openLibraryBook struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
}

// ISBNClient queries an Open Library compatible /api/books endpoint.
// Calls go through a circuit breaker so a dead catalogue does not stall the
// book form.
type ISBNClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewISBNClient(baseURL string) *ISBNClient {
	return &ISBNClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         NewCircuitBreaker("isbn_lookup", DefaultCBConfig()),
	}
}

// Buscar returns the metadata for isbn (digits only, 10 or 13 long).
func (c *ISBNClient) Buscar(ctx context.Context, isbn string) (*LibroExterno, error) {
	var out *LibroExterno
	err := c.cb.Execute(func() error {
		var err error
		out, err = c.buscar(ctx, isbn)
		if errors.Is(err, ErrLibroExternoNoEncontrado) {
			return Ignorable(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ISBNClient) buscar(ctx context.Context, isbn string) (*LibroExterno, error) {
	key := "ISBN:" + isbn
	q := url.Values{}
	q.Set("bibkeys", key)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/books?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("isbn: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("isbn: catalogue unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("isbn: catalogue returned %d", resp.StatusCode)
	}

	var result map[string]openLibraryBook
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("isbn: decode response: %w", err)
	}
	book, ok := result[key]
	if !ok || strings.TrimSpace(book.Title) == "" {
		return nil, ErrLibroExternoNoEncontrado
	}

	titulo := strings.TrimSpace(book.Title)
	if sub := strings.TrimSpace(book.Subtitle); sub != "" {
		titulo += ": " + sub
	}
	autores := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		if n := strings.TrimSpace(a.Name); n != "" {
			autores = append(autores, n)
		}
	}
	editorial := ""
	if len(book.Publishers) > 0 {
		editorial = strings.TrimSpace(book.Publishers[0].Name)
	}
	return &LibroExterno{
		ISBN:      isbn,
		Titulo:    titulo,
		Autor:     strings.Join(autores, ", "),
		Editorial: editorial,
		Fuente:    "openlibrary",
	}, nil
}

// Breaker exposes the circuit breaker for the health endpoint.
func (c *ISBNClient) Breaker() *CircuitBreaker { return c.cb }
