package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StockKind tags which half of a Stock value is meaningful.
type StockKind string

const (
	StockKindCount        StockKind = "count"
	StockKindAvailability StockKind = "availability"
)

const (
	stockLabelAvailable   = "available"
	stockLabelUnavailable = "out of stock"
)

// Stock is either a non-negative unit count or an explicit availability flag.
// Values are built with ParseStock, StockCount or StockAvailability.
type Stock struct {
	kind      StockKind
	count     int
	available bool
}

// StockCount returns a count-based stock value. Negative counts clamp to zero.
func StockCount(n int) Stock {
	if n < 0 {
		n = 0
	}
	return Stock{kind: StockKindCount, count: n}
}

// StockAvailability returns a flag-based stock value.
func StockAvailability(available bool) Stock {
	return Stock{kind: StockKindAvailability, available: available}
}

// StockAvailable reports whether a free-text stock string means the product can be
// bought. The string is trimmed and lowercased; it is available when it equals
// "available", "in stock" or "yes", contains "available", or starts with an integer
// greater than zero. Everything else, including the empty string, is unavailable.
func StockAvailable(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false
	}
	if isAvailabilityPhrase(s) {
		return true
	}
	n, ok := leadingInt(s)
	return ok && n > 0
}

// ParseStock normalizes a free-text stock string into a Stock. It agrees with
// StockAvailable for every input.
func ParseStock(raw string) Stock {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StockAvailability(false)
	}
	if isAvailabilityPhrase(s) {
		return StockAvailability(true)
	}
	if n, ok := leadingInt(s); ok {
		return StockCount(n)
	}
	return StockAvailability(false)
}

func isAvailabilityPhrase(s string) bool {
	switch s {
	case "available", "in stock", "yes":
		return true
	}
	return strings.Contains(s, "available")
}

// leadingInt reads an optionally signed run of decimal digits from the start of s,
// ignoring anything after it. Values past the int range saturate.
func leadingInt(s string) (int, bool) {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
		} else {
			n = n*10 + d
		}
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// Kind returns the tag of the value.
func (s Stock) Kind() StockKind {
	if s.kind == "" {
		return StockKindAvailability
	}
	return s.kind
}

// Quantity returns the unit count for count-based stock and zero otherwise.
func (s Stock) Quantity() int {
	if s.Kind() == StockKindCount {
		return s.count
	}
	return 0
}

// Available reports whether the product can currently be bought.
func (s Stock) Available() bool {
	if s.Kind() == StockKindCount {
		return s.count > 0
	}
	return s.available
}

// String returns the canonical label. ParseStock(s.String()) == s for every value.
func (s Stock) String() string {
	if s.Kind() == StockKindCount {
		return strconv.Itoa(s.count)
	}
	if s.available {
		return stockLabelAvailable
	}
	return stockLabelUnavailable
}

// Value implements driver.Valuer.
func (s Stock) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *Stock) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = StockAvailability(false)
	case string:
		*s = ParseStock(v)
	case []byte:
		*s = ParseStock(string(v))
	case int64:
		*s = StockCount(int(v))
	default:
		return fmt.Errorf("scan stock: unsupported type %T", value)
	}
	return nil
}

// MarshalJSON writes the canonical label, so clients keep seeing the string
// form the catalog has always used ("5", "available", "out of stock").
func (s Stock) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a legacy string or a bare number.
func (s *Stock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = ParseStock(raw)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode stock: want a string or a number, got %s", data)
	}
	*s = ParseStock(n.String())
	return nil
}
