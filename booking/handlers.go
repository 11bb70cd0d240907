package booking

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lares/db"
	"lares/globals"
	"lares/logger"
	"lares/scheduling"
	"lares/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var validate = validator.New()

func genID() string {
	return "b" + utils.GenerateRandomDigitString(12)
}

func genConfirmationCode() string {
	return "LR-" + utils.GenerateRandomDigitString(8)
}

// whatsappLink builds the wa.me deep link the operator uses to reach the
// client. Empty when the phone has no usable digits.
func whatsappLink(phone, code string) string {
	digits := utils.NormalizePhone(phone)
	if digits == "" {
		return ""
	}
	text := url.QueryEscape(fmt.Sprintf("Hello! Your visit is confirmed, code %s.", code))
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, text)
}

// ListBookings returns an agenda's bookings, optionally narrowed by status.
// GET /api/scheduling/agendas/:id/bookings?status=PENDING
func ListBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	filter := bson.M{"agendaid": agendaID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cur, err := db.BookingsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "bookingDate", Value: 1}, {Key: "startTime", Value: 1}}))
	if err != nil {
		logger.Log.Error().Err(err).Str("agenda", agendaID).Msg("booking list failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	defer cur.Close(ctx)

	bookings := []Booking{}
	for cur.Next(ctx) {
		var b Booking
		if err := cur.Decode(&b); err != nil {
			continue
		}
		bookings = append(bookings, b)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}

type createBookingInput struct {
	BookingDate string `json:"bookingDate" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	ClientName  string `json:"clientName" validate:"required,min=2"`
	ClientPhone string `json:"clientPhone" validate:"required,min=7"`
	ClientEmail string `json:"clientEmail" validate:"omitempty,email"`
	Notes       string `json:"notes"`
}

// CreateBooking takes a public reservation against an agenda. The requested
// window must fall inside an active availability slot for that weekday and
// must not collide with another open booking.
// POST /api/scheduling/agendas/:id/bookings
func CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	var input createBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	start, err := scheduling.ParseClock(input.StartTime)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid startTime")
		return
	}
	end, err := scheduling.ParseClock(input.EndTime)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid endTime")
		return
	}
	if start >= end {
		utils.RespondWithError(w, http.StatusBadRequest, "endTime must be after startTime")
		return
	}
	date, err := time.Parse("2006-01-02", input.BookingDate)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid bookingDate")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var agenda scheduling.Agenda
	if err := db.AgendaCollection.FindOne(ctx, bson.M{"agendaid": agendaID}).Decode(&agenda); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Agenda not found")
		return
	}
	if !agenda.IsActive {
		utils.RespondWithError(w, http.StatusConflict, "Agenda is not taking bookings")
		return
	}

	if !windowAvailable(agenda.Slots, int(date.Weekday()), start, end) {
		utils.RespondWithJSON(w, http.StatusConflict, utils.M{"ok": false, "reason": "outside-availability"})
		return
	}

	// Reject double bookings: any non-cancelled booking on the same date
	// overlapping the requested window blocks it. Check-then-insert is not
	// atomic; two requests racing for the same window can both land. The
	// duplicate surfaces in the agenda list and one side gets cancelled; a
	// reservation write would need a transaction here.
	taken, err := windowTaken(ctx, agendaID, input.BookingDate, start, end)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check availability")
		return
	}
	if taken {
		utils.RespondWithJSON(w, http.StatusConflict, utils.M{"ok": false, "reason": "window-taken"})
		return
	}

	code := genConfirmationCode()
	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	b := Booking{
		ID:               genID(),
		AgendaID:         agendaID,
		BookingDate:      input.BookingDate,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		ClientName:       input.ClientName,
		ClientPhone:      input.ClientPhone,
		ClientEmail:      input.ClientEmail,
		Notes:            input.Notes,
		Status:           StatusPending,
		ConfirmationCode: code,
		WhatsappLink:     whatsappLink(input.ClientPhone, code),
		UserID:           userID,
		CreatedAt:        time.Now().Unix(),
	}

	if _, err := db.BookingsCollection.InsertOne(ctx, b); err != nil {
		logger.Log.Error().Err(err).Str("agenda", agendaID).Msg("booking insert failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	logger.Log.Info().Str("booking", b.ID).Str("agenda", agendaID).Msg("booking created")
	broadcastUpdate(agendaID)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"ok": true, "booking": b})
}

// windowAvailable reports whether [start, end) fits inside one active slot
// for the weekday.
func windowAvailable(slots []scheduling.AvailabilitySlot, weekday, start, end int) bool {
	for _, s := range slots {
		if s.DayOfWeek != weekday || !s.IsActive {
			continue
		}
		sStart, err := scheduling.ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		sEnd, err := scheduling.ParseClock(s.EndTime)
		if err != nil {
			continue
		}
		if start >= sStart && end <= sEnd {
			return true
		}
	}
	return false
}

func windowTaken(ctx context.Context, agendaID, date string, start, end int) (bool, error) {
	cur, err := db.BookingsCollection.Find(ctx, bson.M{
		"agendaid":    agendaID,
		"bookingDate": date,
		"status":      bson.M{"$ne": StatusCancelled},
	})
	if err != nil {
		return false, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var b Booking
		if err := cur.Decode(&b); err != nil {
			continue
		}
		bStart, err1 := scheduling.ParseClock(b.StartTime)
		bEnd, err2 := scheduling.ParseClock(b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start < bEnd && bStart < end {
			return true, nil
		}
	}
	return false, nil
}

// GetBooking fetches one booking by id.
func GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var b Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"id": bookingID}).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"booking": b})
}

// UpdateBookingStatus moves a booking through the status machine. The
// transition table is checked against the stored status before any write;
// the response carries the updated document so clients can patch their
// local list by id.
// PUT /api/scheduling/bookings/:id/status
func UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	next, err := ParseStatus(body.Status)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var current Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"id": bookingID}).Decode(&current); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if err := Transition(current.Status, next); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	// Filter on the previous status too, so two racing operators cannot
	// both win the same transition.
	res := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": bookingID, "status": current.Status},
		bson.M{"$set": bson.M{"status": next}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated Booking
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusConflict, "Booking changed, reload and retry")
		return
	}

	logger.Log.Info().Str("booking", bookingID).
		Str("from", string(current.Status)).Str("to", string(next)).Msg("booking status changed")
	broadcastUpdate(updated.AgendaID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "booking": updated})
}

// codeMatches compares a caller-supplied confirmation code against the
// booking's, in constant time. Bookings without a code match nothing.
func codeMatches(b Booking, code string) bool {
	if b.ConfirmationCode == "" || code == "" {
		return false
	}
	return hmac.Equal([]byte(b.ConfirmationCode), []byte(code))
}

// CancelBooking is the idempotent public shortcut for clients. The booking
// id alone is guessable, so the confirmation code issued at creation is
// what authenticates the request. Already-closed bookings come back
// unchanged.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	var body struct {
		ConfirmationCode string `json:"confirmationCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ConfirmationCode == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Confirmation code required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var current Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"id": bookingID}).Decode(&current); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	if !codeMatches(current, body.ConfirmationCode) {
		utils.RespondWithError(w, http.StatusForbidden, "Confirmation code does not match")
		return
	}
	if current.Status == StatusCancelled {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "booking": current})
		return
	}
	if err := Transition(current.Status, StatusCancelled); err != nil {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}

	res := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{"id": bookingID, "status": current.Status},
		bson.M{"$set": bson.M{"status": StatusCancelled}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated Booking
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusConflict, "Booking changed, reload and retry")
		return
	}

	broadcastUpdate(updated.AgendaID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "booking": updated})
}
