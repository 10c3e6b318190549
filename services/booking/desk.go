package booking

import (
	"fmt"

	"concierge/models"
)

// Desk answers the single-turn booking intents: modify, cancel and status.
// It does not talk to the booking engine; guests are pointed at it instead.
type Desk struct {
	manageURL string
}

func NewDesk() *Desk {
	return &Desk{manageURL: ManageURL()}
}

const (
	msgModify = "Mevcut rezervasyonunuzu değiştirmek için onay e-postanızdaki bağlantıyı kullanabilir ya da rezervasyon sayfamızdan yeni tarihlerinizi seçebilirsiniz: %s"
	msgCancel = "Rezervasyon iptali için onay e-postanızdaki 'Rezervasyonu yönet' bağlantısını kullanabilir veya resepsiyonumuzu arayabilirsiniz. Rezervasyon sayfamız: %s"
	msgStatus = "Rezervasyonunuzun durumunu onay numaranızla rezervasyon sayfamızdan kontrol edebilirsiniz: %s"
)

// Handle returns the reply for a booking intent other than create.
// Status is check-only.
func (d *Desk) Handle(intent models.Intent) (string, error) {
	switch intent {
	case models.IntentBookingModify:
		return fmt.Sprintf(msgModify, d.manageURL), nil
	case models.IntentBookingCancel:
		return fmt.Sprintf(msgCancel, d.manageURL), nil
	case models.IntentBookingStatus:
		return fmt.Sprintf(msgStatus, d.manageURL), nil
	default:
		return "", fmt.Errorf("booking desk: unsupported intent %s", intent)
	}
}
