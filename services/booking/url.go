package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	HotelID         = 114738
	BookingHost     = "bookings.travelclick.com"
	HotelDomain     = "www.cullinanhotels.com"
	LanguageID      = 1
	AnchorGuests    = "guestsandrooms"
	engineDateFmt   = "01/02/2006"
	engineDateInput = "1/2/2006"
)

// QueryParam is one ordered key/value pair of the booking link.
type QueryParam struct {
	Key   string
	Value string
}

// URLParams carries the collected slots into BuildURL.
type URLParams struct {
	DateIn    string
	DateOut   string
	Adults    int
	ChildAges []int
	Rooms     int
	// Extra is merged last. A key already present is overwritten in place,
	// a new key is appended.
	Extra []QueryParam
}

// engineDate converts YYYY-MM-DD or M/D/YYYY into zero-padded MM/DD/YYYY.
func engineDate(s string) (string, error) {
	layout := isoDate
	if strings.Contains(s, "/") {
		layout = engineDateInput
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", &FormatError{Value: s, Message: "not a real YYYY-MM-DD or MM/DD/YYYY date"}
	}
	return t.Format(engineDateFmt), nil
}

// BuildURL assembles the booking engine deep link. Output depends only on p.
func BuildURL(p URLParams) (string, error) {
	in, err := engineDate(p.DateIn)
	if err != nil {
		return "", err
	}
	out, err := engineDate(p.DateOut)
	if err != nil {
		return "", err
	}

	params := []QueryParam{
		{"adults", strconv.Itoa(p.Adults)},
		{"datein", in},
		{"dateout", out},
		{"rooms", strconv.Itoa(p.Rooms)},
		{"domain", HotelDomain},
		{"languageid", strconv.Itoa(LanguageID)},
	}
	if len(p.ChildAges) > 0 {
		ages := make([]string, len(p.ChildAges))
		for i, a := range p.ChildAges {
			ages[i] = fmt.Sprintf("%02d", a)
		}
		params = append(params,
			QueryParam{"children", strconv.Itoa(len(p.ChildAges))},
			QueryParam{"childage", strings.Join(ages, ",")},
		)
	}
	params = mergeParams(params, p.Extra)

	var q strings.Builder
	for i, kv := range params {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(kv.Key))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(kv.Value))
	}
	return fmt.Sprintf("https://%s/%d?%s#/%s", BookingHost, HotelID, q.String(), AnchorGuests), nil
}

func mergeParams(base, extra []QueryParam) []QueryParam {
	for _, e := range extra {
		replaced := false
		for i := range base {
			if base[i].Key == e.Key {
				base[i].Value = e.Value
				replaced = true
				break
			}
		}
		if !replaced {
			base = append(base, e)
		}
	}
	return base
}

// ManageURL is the booking engine entry page, used when no dates are known.
func ManageURL() string {
	return fmt.Sprintf("https://%s/%d?domain=%s&languageid=%d#/%s", BookingHost, HotelID, HotelDomain, LanguageID, AnchorGuests)
}
