package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// Metadata keys on hotel fact chunks.
const (
	FieldRoomType   = "oda_tipi"
	FieldCapAdult   = "maks_kapasite_yetiskin"
	FieldCapChild   = "maks_kapasite_cocuk"
	FieldSwimUp     = "swim_up"
	FieldView       = "manzara"
	FieldBathrooms  = "banyo_sayisi"
	FieldBedOptions = "yatak_opsiyonlari_json"
	FieldSourceDoc  = "source_document"
)

const (
	viewSea          = "Deniz"
	viewGardenAndSea = "Bahçe + Deniz"
	viewGolf         = "Golf"
)

// FactFilter narrows fact retrieval using structured metadata.
// A nil filter matches everything.
type FactFilter struct {
	MinAdults    int
	SwimUp       bool
	Views        [][]string // every group must match one of its values
	MinBathrooms int
}

var (
	adultsPattern    = regexp.MustCompile(`(\d+)\s*(kişilik|yetişkin)`)
	bathroomsPattern = regexp.MustCompile(`(en az|min(?:imum)?)\s*(\d+)\s*banyo`)
)

// ExtractFilter reads capacity, swim-up, view and bathroom hints from a
// question. It returns nil when the question carries none.
func ExtractFilter(question string) *FactFilter {
	q := strings.ToLower(question)
	f := &FactFilter{}
	found := false

	if m := adultsPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.MinAdults = n
			found = true
		}
	}
	if strings.Contains(q, "swim-up") || strings.Contains(q, "swim up") {
		f.SwimUp = true
		found = true
	}
	if strings.Contains(q, "deniz manzaralı") {
		f.Views = append(f.Views, []string{viewSea, viewGardenAndSea})
		found = true
	}
	if strings.Contains(q, "golf manzaralı") {
		f.Views = append(f.Views, []string{viewGolf})
		found = true
	}
	if m := bathroomsPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			f.MinBathrooms = n
			found = true
		}
	}

	if !found {
		return nil
	}
	return f
}

// Matches applies the filter to one metadata map.
func (f *FactFilter) Matches(meta map[string]interface{}) bool {
	if f == nil {
		return true
	}
	if f.MinAdults > 0 && !capacityAtLeast(meta[FieldCapAdult], f.MinAdults) {
		return false
	}
	if f.SwimUp {
		if b, ok := meta[FieldSwimUp].(bool); !ok || !b {
			return false
		}
	}
	for _, group := range f.Views {
		view, _ := meta[FieldView].(string)
		if !contains(group, view) {
			return false
		}
	}
	if f.MinBathrooms > 0 {
		n, ok := number(meta[FieldBathrooms])
		if !ok || n < float64(f.MinBathrooms) {
			return false
		}
	}
	return true
}

// capacityAtLeast accepts numeric capacities at or above n, and textual
// ones equal to n.
func capacityAtLeast(v interface{}, n int) bool {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == strconv.Itoa(n)
	}
	f, ok := number(v)
	return ok && f >= float64(n)
}

func number(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
