package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const pdfTemplateVersion = "1.0"

// DefaultPDFCacheTTL bounds how long a rendered label sheet is reused.
const DefaultPDFCacheTTL = time.Hour

// LabelCache is the process-wide cache used by the PDF handlers and the
// purge job.
var LabelCache = NewPDFCache(DefaultPDFCacheTTL)

type pdfCacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// PDFCache keeps rendered label PDFs in process memory so repeated
// previews of the same order do not re-render through the browser.
type PDFCache struct {
	mu      sync.RWMutex
	entries map[string]pdfCacheEntry
	ttl     time.Duration
}

func NewPDFCache(ttl time.Duration) *PDFCache {
	if ttl <= 0 {
		ttl = DefaultPDFCacheTTL
	}
	return &PDFCache{
		entries: make(map[string]pdfCacheEntry),
		ttl:     ttl,
	}
}

func pdfCacheKey(orderID uuid.UUID) string {
	key := fmt.Sprintf("pdf_order_%s_v%s", orderID, pdfTemplateVersion)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (c *PDFCache) Get(orderID uuid.UUID) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pdfCacheKey(orderID)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *PDFCache) Save(orderID uuid.UUID, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pdfCacheKey(orderID)] = pdfCacheEntry{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *PDFCache) Invalidate(orderID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, pdfCacheKey(orderID))
}

// PurgeExpired drops stale entries; run periodically from a cron job.
func (c *PDFCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}
