// Package imagecache keeps card images on disk, keyed by set and collector
// number.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
)

// ErrImageNotFound is returned when a card has no image for the requested face.
var ErrImageNotFound = errors.New("image not found")

// DefaultSetAliases maps MTGA set codes to the code the image source uses.
var DefaultSetAliases = map[string]string{
	"DAR": "DOM",
}

// Resolver looks up the front and back image URLs of a printing. Both the
// card repository and the Scryfall client implement it.
type Resolver interface {
	ImageURIs(ctx context.Context, setCode string, number int) (front, back string, err error)
}

// Fetcher downloads the bytes behind an image URL.
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Cache manages local caching of card images.
type Cache struct {
	cacheDir string
	maxSize  int64 // Maximum cache size in bytes
	resolver Resolver
	fetcher  Fetcher
	aliases  map[string]string
	logger   *slog.Logger

	mu       sync.RWMutex
	sizes    map[string]int64     // Map of file path to file size
	lastUsed map[string]time.Time // LRU tracking
}

// Options configures the image cache.
type Options struct {
	CacheDir string        // Directory to store cached images
	MaxSize  int64         // Maximum cache size in bytes (0 = unlimited)
	Timeout  time.Duration // HTTP timeout when Fetcher is nil
	Resolver Resolver
	Fetcher  Fetcher           // Defaults to a plain HTTP client
	Aliases  map[string]string // Defaults to DefaultSetAliases
	Logger   *slog.Logger
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	homeDir, _ := os.UserHomeDir()
	return Options{
		CacheDir: filepath.Join(homeDir, ".magic-league-generator", "image-cache"),
		MaxSize:  500 * 1024 * 1024,
		Timeout:  60 * time.Second,
	}
}

// New creates an image cache.
func New(opts Options) (*Cache, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("image cache requires a resolver")
	}
	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		cacheDir: opts.CacheDir,
		maxSize:  opts.MaxSize,
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		aliases:  opts.Aliases,
		logger:   opts.Logger,
		sizes:    make(map[string]int64),
		lastUsed: make(map[string]time.Time),
	}
	if c.fetcher == nil {
		c.fetcher = &httpFetcher{client: &http.Client{Timeout: opts.Timeout}}
	}
	if c.aliases == nil {
		c.aliases = DefaultSetAliases
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if err := c.scan(); err != nil {
		return nil, fmt.Errorf("failed to scan cache directory: %w", err)
	}
	return c, nil
}

// SourceSet translates an MTGA set code to the image source's code.
func (c *Cache) SourceSet(setCode string) string {
	code := strings.ToUpper(setCode)
	if alias, ok := c.aliases[code]; ok {
		return alias
	}
	return code
}

// GetCardImageURL returns the image URL of a printing's front or back face.
func (c *Cache) GetCardImageURL(ctx context.Context, setCode string, number int, back bool) (string, error) {
	set := c.SourceSet(setCode)
	front, backURL, err := c.resolver.ImageURIs(ctx, set, number)
	if err != nil {
		if errors.Is(err, cards.ErrCardNotFound) {
			return "", fmt.Errorf("%s %d: %w", set, number, ErrImageNotFound)
		}
		return "", err
	}

	url := front
	if back {
		url = backURL
	}
	if url == "" {
		return "", fmt.Errorf("%s %d back=%t: %w", set, number, back, ErrImageNotFound)
	}
	return url, nil
}

// GetCardImage returns the path of the cached front image of a printing,
// downloading it on first use. The name is only used for logging.
func (c *Cache) GetCardImage(ctx context.Context, name, setCode string, number int) (string, error) {
	return c.getImage(ctx, name, setCode, number, false)
}

// GetCardBackImage is GetCardImage for the back face of a double-faced card.
func (c *Cache) GetCardBackImage(ctx context.Context, name, setCode string, number int) (string, error) {
	return c.getImage(ctx, name, setCode, number, true)
}

// FetchCardImage returns the image bytes of a printing's face.
func (c *Cache) FetchCardImage(ctx context.Context, setCode string, number int, back bool) ([]byte, error) {
	path, err := c.getImage(ctx, "", setCode, number, back)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (c *Cache) getImage(ctx context.Context, name, setCode string, number int, back bool) (string, error) {
	cachePath := filepath.Join(c.cacheDir, cacheKey(c.SourceSet(setCode), number, back))

	c.mu.Lock()
	if _, exists := c.sizes[cachePath]; exists {
		c.lastUsed[cachePath] = time.Now()
		c.mu.Unlock()
		return cachePath, nil
	}
	c.mu.Unlock()

	url, err := c.GetCardImageURL(ctx, setCode, number, back)
	if err != nil {
		return "", err
	}

	data, err := c.fetcher.Download(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to download image of %s (%s) %d: %w", name, setCode, number, err)
	}
	if err := c.store(cachePath, data); err != nil {
		return "", err
	}

	c.logger.Debug("Cached card image", "name", name, "set", setCode, "number", number, "back", back)
	return cachePath, nil
}

// store writes data through a temporary file and records it in the index.
func (c *Cache) store(cachePath string, data []byte) error {
	tempFile, err := os.CreateTemp(c.cacheDir, "download-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(data))
	if err := c.ensureSpace(size); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to ensure cache space: %w", err)
	}
	if err := os.Rename(tempPath, cachePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to move cached file: %w", err)
	}

	c.sizes[cachePath] = size
	c.lastUsed[cachePath] = time.Now()
	return nil
}

// PrefetchResult summarizes a set prefetch.
type PrefetchResult struct {
	Cached  int
	Missing int
}

// PrefetchSet downloads the front images of the given collector numbers
// with at most workers downloads in flight. Printings without an image are
// counted, not failed.
func (c *Cache) PrefetchSet(ctx context.Context, setCode string, numbers []int, workers int) (PrefetchResult, error) {
	if workers <= 0 {
		workers = 4
	}

	var (
		mu     sync.Mutex
		result PrefetchResult
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, number := range numbers {
		g.Go(func() error {
			_, err := c.getImage(ctx, "", setCode, number, false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Cached++
			case errors.Is(err, ErrImageNotFound):
				result.Missing++
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	c.logger.Info("Prefetched set images", "set", setCode, "cached", result.Cached, "missing", result.Missing)
	return result, nil
}

// ensureSpace evicts least recently used files to make room for a new
// file. Must be called with c.mu locked.
func (c *Cache) ensureSpace(neededSize int64) error {
	if c.maxSize == 0 {
		return nil
	}

	var currentSize int64
	for _, size := range c.sizes {
		currentSize += size
	}
	if currentSize+neededSize <= c.maxSize {
		return nil
	}

	paths := make([]string, 0, len(c.sizes))
	for path := range c.sizes {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return c.lastUsed[paths[i]].Before(c.lastUsed[paths[j]])
	})

	for _, path := range paths {
		if currentSize+neededSize <= c.maxSize {
			break
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to evict cached file: %w", err)
		}
		currentSize -= c.sizes[path]
		delete(c.sizes, path)
		delete(c.lastUsed, path)
	}
	return nil
}

// Clear removes all cached images.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for path := range c.sizes {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached file: %w", err)
		}
	}
	c.sizes = make(map[string]int64)
	c.lastUsed = make(map[string]time.Time)
	return nil
}

// Stats contains statistics about the cache.
type Stats struct {
	TotalFiles int
	TotalSize  int64
	MaxSize    int64
	CacheDir   string
}

// Stats returns statistics about the cache.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalSize int64
	for _, size := range c.sizes {
		totalSize += size
	}
	return Stats{
		TotalFiles: len(c.sizes),
		TotalSize:  totalSize,
		MaxSize:    c.maxSize,
		CacheDir:   c.cacheDir,
	}
}

// scan initializes cache metadata from the files already on disk.
func (c *Cache) scan() error {
	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) == ".tmp" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.cacheDir, entry.Name())
		c.sizes[path] = info.Size()
		c.lastUsed[path] = info.ModTime()
	}
	return nil
}

func cacheKey(setCode string, number int, back bool) string {
	face := "front"
	if back {
		face = "back"
	}
	hash := sha256.Sum256([]byte(setCode + "/" + strconv.Itoa(number) + "/" + face))
	return hex.EncodeToString(hash[:]) + ".jpg"
}

type httpFetcher struct {
	client *http.Client
}

func (f *httpFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, ErrImageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
