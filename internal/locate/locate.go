// Package locate resolves IP addresses to coordinates with a MaxMind City
// database.
package locate

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"globe-graph/internal/debug"
	"globe-graph/internal/projection"
)

// DefaultCacheSize is how many lookups are remembered.
const DefaultCacheSize = 2000

var (
	ErrInvalidIP = errors.New("invalid IP address")
	ErrNotFound  = errors.New("address has no location")
)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// GeoIP looks addresses up in a City database and caches the answers,
// most recently used first.
type GeoIP struct {
	db     cityReader
	closer func() error

	mu        sync.Mutex
	cache     map[string]projection.GeoPoint
	cacheList []string
	maxCache  int
}

// Open opens the City database at path.
func Open(path string) (*GeoIP, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	g := newGeoIP(db, DefaultCacheSize)
	g.closer = db.Close
	return g, nil
}

func newGeoIP(db cityReader, maxCache int) *GeoIP {
	return &GeoIP{
		db:       db,
		cache:    make(map[string]projection.GeoPoint),
		maxCache: maxCache,
	}
}

// Close releases the database.
func (g *GeoIP) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

// Locate returns the coordinates recorded for ip.
func (g *GeoIP) Locate(ipStr string) (projection.GeoPoint, error) {
	g.mu.Lock()
	if p, ok := g.cache[ipStr]; ok {
		g.moveToFront(ipStr)
		g.mu.Unlock()
		debug.Log("locate: cache hit for %s", ipStr)
		return p, nil
	}
	g.mu.Unlock()

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return projection.GeoPoint{}, fmt.Errorf("%w: %q", ErrInvalidIP, ipStr)
	}
	rec, err := g.db.City(ip)
	if err != nil {
		return projection.GeoPoint{}, fmt.Errorf("lookup %s: %w", ipStr, err)
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 && rec.Country.IsoCode == "" {
		return projection.GeoPoint{}, fmt.Errorf("%w: %s", ErrNotFound, ipStr)
	}
	p := projection.GeoPoint{Latitude: rec.Location.Latitude, Longitude: rec.Location.Longitude}
	debug.Log("locate: %s -> %.4f,%.4f (%s)", ipStr, p.Latitude, p.Longitude, rec.City.Names["en"])

	g.mu.Lock()
	g.addToCache(ipStr, p)
	g.mu.Unlock()
	return p, nil
}

// CacheStats returns the number of cached entries and the limit.
func (g *GeoIP) CacheStats() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cache), g.maxCache
}

func (g *GeoIP) addToCache(ipStr string, p projection.GeoPoint) {
	if _, ok := g.cache[ipStr]; ok {
		g.cache[ipStr] = p
		g.moveToFront(ipStr)
		return
	}
	if len(g.cache) >= g.maxCache {
		g.evictOldest()
	}
	g.cache[ipStr] = p
	g.cacheList = append([]string{ipStr}, g.cacheList...)
}

func (g *GeoIP) moveToFront(ipStr string) {
	for i, ip := range g.cacheList {
		if ip == ipStr {
			g.cacheList = append(g.cacheList[:i], g.cacheList[i+1:]...)
			break
		}
	}
	g.cacheList = append([]string{ipStr}, g.cacheList...)
}

func (g *GeoIP) evictOldest() {
	if len(g.cacheList) == 0 {
		return
	}
	oldest := g.cacheList[len(g.cacheList)-1]
	delete(g.cache, oldest)
	g.cacheList = g.cacheList[:len(g.cacheList)-1]
}
