package models

// Intent is the closed set of purposes a guest message can be classified into.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentGreeting
	IntentFarewell
	IntentThanks
	IntentHelp
	IntentBookingCreate
	IntentBookingModify
	IntentBookingCancel
	IntentBookingStatus
	IntentPriceQuery
	IntentRoomInfo
	IntentDiningInfo
	IntentAirportTransfer
	IntentParkingInfo
	IntentDirections
	IntentAddressInfo
	IntentComplaint
	IntentFeedback
)

// Wire labels are the Turkish names stored with the intent examples.
var intentLabels = map[Intent]string{
	IntentGreeting:        "selamla",
	IntentFarewell:        "veda",
	IntentThanks:          "teşekkür",
	IntentHelp:            "yardım",
	IntentBookingCreate:   "rezervasyon_oluşturma",
	IntentBookingModify:   "rezervasyon_değiştirme",
	IntentBookingCancel:   "rezervasyon_iptali",
	IntentBookingStatus:   "rezervasyon_durumu",
	IntentPriceQuery:      "fiyat_sorgulama",
	IntentRoomInfo:        "oda_bilgisi",
	IntentDiningInfo:      "yemek_bilgisi",
	IntentAirportTransfer: "havalimanı_transferi",
	IntentParkingInfo:     "otopark_bilgisi",
	IntentDirections:      "yol_tarifi",
	IntentAddressInfo:     "adres_bilgisi",
	IntentComplaint:       "şikayet",
	IntentFeedback:        "geri_bildirim",
}

var labelIntents = func() map[string]Intent {
	m := make(map[string]Intent, len(intentLabels))
	for i, l := range intentLabels {
		m[l] = i
	}
	return m
}()

// ParseIntent maps a wire label to an Intent. Unrecognised labels yield IntentUnknown.
func ParseIntent(label string) Intent {
	if i, ok := labelIntents[label]; ok {
		return i
	}
	return IntentUnknown
}

// String returns the wire label, or "unknown".
func (i Intent) String() string {
	if l, ok := intentLabels[i]; ok {
		return l
	}
	return "unknown"
}

// MarshalText lets intents travel as their wire label in JSON.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Intent) UnmarshalText(b []byte) error {
	*i = ParseIntent(string(b))
	return nil
}
