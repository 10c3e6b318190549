package booking

import (
	"errors"

	"concierge/models"
)

var askFor = map[models.BookingStep]string{
	models.StepAwaitingDateIn:    "Lütfen giriş tarihini (YYYY-MM-DD) girer misiniz?",
	models.StepAwaitingDateOut:   "Çıkış tarihini (YYYY-MM-DD) yazar mısınız?",
	models.StepAwaitingRooms:     "Kaç oda istiyorsunuz?",
	models.StepAwaitingAdults:    "Yetişkin sayısı?",
	models.StepAwaitingChildAges: "Varsa çocuk yaşlarını virgüllü (örn 8,5) yazın, yoksa 0.",
}

const (
	MsgBadDateFormat = "Tarih biçimi yanlış, lütfen YYYY-MM-DD şeklinde girin."
	MsgBadCalendar   = "Bu tarih takvimde bulunmuyor, lütfen geçerli bir tarihi YYYY-MM-DD şeklinde girin."
	MsgDateOrder     = "Çıkış tarihi giriş tarihinden sonra olmalı, lütfen YYYY-MM-DD şeklinde tekrar girin."
	MsgRoomsRange    = "Oda sayısı 1-9 arasında olmalı."
	MsgAdultsRange   = "Yetişkin sayısı 1-9 arasında olmalı."
	MsgDatesRejected = "Girdiğiniz tarihlerle bağlantı oluşturulamadı. Lütfen giriş tarihini (YYYY-MM-DD) yeniden girer misiniz?"
	MsgCompleted     = "Rezervasyon bağlantınız hazır → %s"
	MsgCancelled     = "Rezervasyon işlemini iptal ettim. Başka bir konuda yardımcı olabilir miyim?"
)

// Prompt returns the question asked for step.
func Prompt(step models.BookingStep) string {
	return askFor[step]
}

// rejection turns a validation failure into the retry message for its slot.
func rejection(err error) string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return Prompt(models.StepAwaitingDateIn)
	}
	switch ve.Slot {
	case models.StepAwaitingRooms:
		return MsgRoomsRange
	case models.StepAwaitingAdults:
		return MsgAdultsRange
	}
	switch ve.Code {
	case CodeBadCalendar:
		return MsgBadCalendar
	case CodeDateOrder:
		return MsgDateOrder
	default:
		return MsgBadDateFormat
	}
}
