package locate

import (
	"errors"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
)

type fakeDB struct {
	records map[string][2]float64
	calls   int
}

func (f *fakeDB) City(ip net.IP) (*geoip2.City, error) {
	f.calls++
	rec := &geoip2.City{}
	if ll, ok := f.records[ip.String()]; ok {
		rec.Location.Latitude, rec.Location.Longitude = ll[0], ll[1]
		rec.Country.IsoCode = "GB"
	}
	return rec, nil
}

func TestLocate(t *testing.T) {
	db := &fakeDB{records: map[string][2]float64{"81.2.69.142": {51.5142, -0.0931}}}
	g := newGeoIP(db, 10)

	p, err := g.Locate("81.2.69.142")
	if err != nil {
		t.Fatal(err)
	}
	if p.Latitude != 51.5142 || p.Longitude != -0.0931 {
		t.Errorf("unexpected location %+v", p)
	}
	if _, err := g.Locate("81.2.69.142"); err != nil || db.calls != 1 {
		t.Errorf("second lookup should come from the cache (calls=%d, err=%v)", db.calls, err)
	}

	if _, err := g.Locate("10.0.0.1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := g.Locate("not an ip"); !errors.Is(err, ErrInvalidIP) {
		t.Errorf("expected ErrInvalidIP, got %v", err)
	}
	if n, _ := g.CacheStats(); n != 1 {
		t.Errorf("failed lookups must not be cached, got %d entries", n)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	db := &fakeDB{records: map[string][2]float64{
		"1.1.1.1": {1, 1}, "2.2.2.2": {2, 2}, "3.3.3.3": {3, 3},
	}}
	g := newGeoIP(db, 2)
	g.Locate("1.1.1.1")
	g.Locate("2.2.2.2")
	g.Locate("1.1.1.1")
	g.Locate("3.3.3.3")

	if n, max := g.CacheStats(); n != 2 || max != 2 {
		t.Fatalf("cache should hold 2 of 2, got %d of %d", n, max)
	}
	calls := db.calls
	g.Locate("1.1.1.1")
	if db.calls != calls {
		t.Error("recently used entry was evicted")
	}
	g.Locate("2.2.2.2")
	if db.calls != calls+1 {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	if _, err := Open("/nonexistent/GeoLite2-City.mmdb"); err == nil {
		t.Error("expected error")
	}
}
