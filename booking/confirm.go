package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"lares/db"
	"lares/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

var hmacSecret = func() []byte {
	if s := os.Getenv("CONFIRMATION_HMAC_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev_only_confirmation_secret")
}()

// signedPayload builds the QR content: bookingId|code|signature. The agent
// scanning it at the door can verify the signature offline.
func signedPayload(bookingID, code string) string {
	data := fmt.Sprintf("%s|%s", bookingID, code)
	h := hmac.New(sha256.New, hmacSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPayload checks a scanned QR payload against its signature and
// returns the booking id it names.
func VerifyPayload(payload string) (string, error) {
	parts := strings.SplitN(payload, "|", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed payload")
	}
	bookingID, code := parts[0], parts[1]

	expected := signedPayload(bookingID, code)
	if !hmac.Equal([]byte(expected), []byte(payload)) {
		return "", fmt.Errorf("bad signature")
	}
	return bookingID, nil
}

// PrintConfirmation renders a visit confirmation PDF with an embedded
// signed QR code.
// GET /api/scheduling/bookings/:id/confirmation
func PrintConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var b Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"id": bookingID}).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	qrPNG, err := qrcode.Encode(signedPayload(b.ID, b.ConfirmationCode), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Visit Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Client: %s", b.ClientName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s  %s - %s", b.BookingDate, b.StartTime, b.EndTime))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", b.Status))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Confirmation Code: %s", b.ConfirmationCode))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+b.ConfirmationCode+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
