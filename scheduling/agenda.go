package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lares/db"
	"lares/globals"
	"lares/logger"
	"lares/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Agenda is one bookable calendar (an agent's visit schedule, an office's
// open-house calendar). Its weekly availability is the slot collection.
type Agenda struct {
	AgendaID    string             `json:"agendaid" bson:"agendaid"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID     string             `json:"ownerid" bson:"ownerid"`
	Slots       []AvailabilitySlot `json:"slots" bson:"slots"`
	SlotMinutes int                `json:"slotMinutes" bson:"slotMinutes"` // booking granularity
	IsActive    bool               `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

func genID() string {
	return "g" + utils.GenerateRandomDigitString(12)
}

func CreateAgenda(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var agenda Agenda
	if err := json.NewDecoder(r.Body).Decode(&agenda); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if agenda.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}

	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	agenda.AgendaID = genID()
	agenda.OwnerID = userID
	agenda.IsActive = true
	if agenda.SlotMinutes <= 0 {
		agenda.SlotMinutes = 60
	}
	if agenda.Slots == nil {
		agenda.Slots = []AvailabilitySlot{}
	}
	if verrs := Validate(agenda.Slots); len(verrs) > 0 {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{"errors": verrs})
		return
	}
	agenda.CreatedAt = time.Now()
	agenda.UpdatedAt = agenda.CreatedAt

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.AgendaCollection.InsertOne(ctx, agenda); err != nil {
		logger.Log.Error().Err(err).Msg("agenda insert failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create agenda")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"agenda": agenda})
}

func GetAgendas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		filter["ownerid"] = owner
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cur, err := db.AgendaCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch agendas")
		return
	}
	defer cur.Close(ctx)

	agendas := []Agenda{}
	for cur.Next(ctx) {
		var a Agenda
		if err := cur.Decode(&a); err != nil {
			continue
		}
		agendas = append(agendas, a)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"agendas": agendas})
}

func GetAgenda(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var agenda Agenda
	if err := db.AgendaCollection.FindOne(ctx, bson.M{"agendaid": agendaID}).Decode(&agenda); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Agenda not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"agenda": agenda})
}

func EditAgenda(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		SlotMinutes *int    `json:"slotMinutes"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.SlotMinutes != nil && *input.SlotMinutes > 0 {
		set["slotMinutes"] = *input.SlotMinutes
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := db.AgendaCollection.FindOneAndUpdate(ctx,
		bson.M{"agendaid": agendaID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated Agenda
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Agenda not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"agenda": updated})
}

func DeleteAgenda(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := db.AgendaCollection.DeleteOne(ctx, bson.M{"agendaid": agendaID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete agenda")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Agenda not found")
		return
	}
	// Bookings are kept for history; they reference the agenda by id only.
	w.WriteHeader(http.StatusNoContent)
}

// UpdateAvailability replaces an agenda's whole slot collection. The editor
// runs client-side against the same operations in this package; the server
// re-validates before persisting so no unchecked window ever lands in Mongo.
func UpdateAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	agendaID := ps.ByName("id")

	var input struct {
		Slots []AvailabilitySlot `json:"slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if input.Slots == nil {
		input.Slots = []AvailabilitySlot{}
	}

	// Slots created by older clients may arrive without ids; assign them
	// here so later edits can address the slot.
	for i := range input.Slots {
		if input.Slots[i].ID == "" {
			input.Slots[i].ID = NewSlot(input.Slots[i].DayOfWeek).ID
		}
	}

	if verrs := Validate(input.Slots); len(verrs) > 0 {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{"errors": verrs})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := db.AgendaCollection.FindOneAndUpdate(ctx,
		bson.M{"agendaid": agendaID},
		bson.M{"$set": bson.M{"slots": input.Slots, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated Agenda
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Agenda not found")
		return
	}

	logger.Log.Info().Str("agenda", agendaID).Int("slots", len(updated.Slots)).Msg("availability updated")
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"agenda": updated})
}
