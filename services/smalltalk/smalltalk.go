package smalltalk

import (
	"fmt"

	"concierge/models"
)

var replies = map[models.Intent]string{
	models.IntentGreeting: "Merhaba, Cullinan Belek'e hoş geldiniz! Size nasıl yardımcı olabilirim?",
	models.IntentFarewell: "Görüşmek üzere, iyi günler dileriz!",
	models.IntentThanks:   "Rica ederiz, başka bir konuda yardımcı olabilir miyim?",
	models.IntentHelp: "Size rezervasyon oluşturma, oda ve fiyat bilgisi, restoranlar, havalimanı transferi, otopark ve yol tarifi konularında yardımcı olabilirim. " +
		"Şikayet veya önerilerinizi de iletebilirsiniz.",
}

// Responder answers greetings, farewells, thanks and help requests.
type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

// Reply returns the fixed text for intent.
func (r *Responder) Reply(intent models.Intent) (string, error) {
	if s, ok := replies[intent]; ok {
		return s, nil
	}
	return "", fmt.Errorf("smalltalk: no reply for intent %s", intent)
}
