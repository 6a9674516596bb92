package mock

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/service"
)

type storedCover struct {
	data        []byte
	contentType string
}

// Covers keeps cover images in memory. Names are sequential.
type Covers struct {
	mu     sync.Mutex
	next   int
	covers map[string]storedCover

	// PutErr, when set, is returned by Put.
	PutErr error
}

func NewCovers() *Covers {
	return &Covers{covers: make(map[string]storedCover)}
}

func (c *Covers) Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error) {
	if c.PutErr != nil {
		return "", c.PutErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	name := "cover-" + strconv.Itoa(c.next) + filepath.Ext(filename)
	c.covers[name] = storedCover{data: data, contentType: contentType}
	return name, nil
}

func (c *Covers) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc, ok := c.covers[name]
	if !ok {
		return nil, "", service.ErrCoverNotFound
	}
	return io.NopCloser(bytes.NewReader(sc.data)), sc.contentType, nil
}

func (c *Covers) Delete(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.covers, name)
	return nil
}

func (c *Covers) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.covers)
}

// Cache is an in-memory catalog cache that counts hits and invalidations.
type Cache struct {
	mu            sync.Mutex
	generation    int
	pages         map[string]models.CatalogPage
	Hits          int
	Invalidations int
}

func NewCache() *Cache {
	return &Cache{pages: make(map[string]models.CatalogPage)}
}

func (c *Cache) Get(ctx context.Context, key string) (*models.CatalogPage, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := strconv.Itoa(c.generation) + ":" + key
	page, ok := c.pages[slot]
	if !ok {
		return nil, slot, nil
	}
	c.Hits++
	return &page, "", nil
}

func (c *Cache) Set(ctx context.Context, slot string, page *models.CatalogPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[slot] = *page
	return nil
}

// Invalidate starts a new generation; pages stored under an older slot are
// never returned.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.pages = make(map[string]models.CatalogPage)
	c.Invalidations++
	return nil
}
