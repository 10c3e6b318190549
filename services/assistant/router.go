package assistant

import (
	"context"
	"fmt"
	"strings"

	"concierge/models"
	"concierge/services/booking"

	"go.uber.org/zap"
)

const (
	// FallbackReply answers anything the classifier could not place.
	FallbackReply = "Üzgünüm, sorununuzu anlayamadım. Biraz daha ayrıntı verebilir misiniz?"
	// TryAgainReply is used when a backing service failed.
	TryAgainReply = "Şu anda isteğinizi işleyemiyorum, lütfen biraz sonra tekrar deneyin."
)

var cancelWords = map[string]bool{
	"iptal":     true,
	"iptal et":  true,
	"vazgeç":    true,
	"vazgeçtim": true,
	"vazgec":    true,
	"cancel":    true,
}

type IntentPredictor interface {
	Predict(ctx context.Context, query string) (models.Intent, error)
}

type DialogDriver interface {
	Advance(ctx context.Context, userID, message string) (string, bool, error)
	Continue(ctx context.Context, userID, message string) (reply string, done, active bool, err error)
	CancelActive(ctx context.Context, userID string) (bool, error)
}

type SmallTalker interface {
	Reply(intent models.Intent) (string, error)
}

type BookingDesk interface {
	Handle(intent models.Intent) (string, error)
}

type FAQAnswerer interface {
	Answer(ctx context.Context, intent models.Intent, question string) (string, error)
}

type TicketCreator interface {
	Create(ctx context.Context, userID string, intent models.Intent, message string) (string, error)
}

// Router classifies a guest message and hands it to exactly one handler.
type Router struct {
	Classifier IntentPredictor
	Dialog     DialogDriver
	SmallTalk  SmallTalker
	Desk       BookingDesk
	FAQ        FAQAnswerer
	Tickets    TicketCreator
	Logger     *zap.Logger
}

func (r *Router) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func isCancel(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	m = strings.TrimRight(m, ".!? ")
	return cancelWords[m]
}

// Route always returns a reply. A booking dialog in progress receives the
// message before any classification happens.
func (r *Router) Route(ctx context.Context, userID, message string) (resp models.ChatResponse) {
	log := r.logger().With(zap.String("userID", userID))

	defer func() {
		if p := recover(); p != nil {
			log.Error("Recovered from panic while routing", zap.Any("panic", p))
			resp = models.ChatResponse{Intent: models.IntentUnknown, Response: TryAgainReply}
		}
	}()

	if out, handled := r.continueDialog(ctx, log, userID, message); handled {
		return out
	}

	intent, err := r.Classifier.Predict(ctx, message)
	if err != nil {
		log.Error("Intent classification failed", zap.Error(err))
		return models.ChatResponse{Intent: models.IntentUnknown, Response: TryAgainReply}
	}

	reply, done, err := r.dispatch(ctx, userID, intent, message)
	if err != nil {
		log.Error("Handler failed", zap.Stringer("intent", intent), zap.Error(err))
		return models.ChatResponse{Intent: intent, Response: TryAgainReply}
	}
	log.Debug("Message routed", zap.Stringer("intent", intent))
	return models.ChatResponse{Intent: intent, Response: reply, Done: done}
}

// continueDialog hands the message to a booking dialog in progress.
// handled is false when the user has none.
func (r *Router) continueDialog(ctx context.Context, log *zap.Logger, userID, message string) (resp models.ChatResponse, handled bool) {
	if isCancel(message) {
		cancelled, err := r.Dialog.CancelActive(ctx, userID)
		if err != nil {
			log.Error("Failed to cancel booking dialog", zap.Error(err))
			return models.ChatResponse{Intent: models.IntentBookingCancel, Response: TryAgainReply}, true
		}
		if !cancelled {
			return models.ChatResponse{}, false
		}
		return models.ChatResponse{Intent: models.IntentBookingCancel, Response: booking.MsgCancelled}, true
	}

	reply, done, active, err := r.Dialog.Continue(ctx, userID, message)
	if err != nil {
		log.Error("Booking dialog failed", zap.Error(err))
		return models.ChatResponse{Intent: models.IntentUnknown, Response: TryAgainReply}, true
	}
	if !active {
		return models.ChatResponse{}, false
	}
	return models.ChatResponse{Intent: models.IntentBookingCreate, Response: reply, Done: done}, true
}

// dispatch maps every intent, known or not, to one handler.
func (r *Router) dispatch(ctx context.Context, userID string, intent models.Intent, message string) (string, bool, error) {
	switch intent {
	case models.IntentGreeting, models.IntentFarewell, models.IntentThanks, models.IntentHelp:
		reply, err := r.SmallTalk.Reply(intent)
		return reply, false, err

	case models.IntentBookingCreate:
		return r.Dialog.Advance(ctx, userID, message)

	case models.IntentBookingModify, models.IntentBookingCancel, models.IntentBookingStatus:
		reply, err := r.Desk.Handle(intent)
		return reply, false, err

	case models.IntentPriceQuery, models.IntentRoomInfo, models.IntentDiningInfo,
		models.IntentAirportTransfer, models.IntentParkingInfo, models.IntentDirections,
		models.IntentAddressInfo:
		reply, err := r.FAQ.Answer(ctx, intent, message)
		return reply, false, err

	case models.IntentComplaint, models.IntentFeedback:
		reply, err := r.Tickets.Create(ctx, userID, intent, message)
		return reply, false, err

	case models.IntentUnknown:
		return FallbackReply, false, nil

	default:
		// Values outside the enum, e.g. from a newer label set.
		r.logger().Warn("Unhandled intent", zap.String("intent", fmt.Sprint(int(intent))))
		return FallbackReply, false, nil
	}
}
