package contacts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"lares/db"
	"lares/globals"
	"lares/logger"
	"lares/models"
	"lares/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var validate = validator.New()

// Stages a lead moves through, in pipeline order.
var stages = map[string]bool{
	"lead":        true,
	"contacted":   true,
	"visiting":    true,
	"negotiating": true,
	"closed":      true,
}

func genID() string {
	return "c" + utils.GenerateRandomDigitString(12)
}

type contactInput struct {
	FullName   string `json:"fullName" validate:"required,min=2"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"required,min=7"`
	Source     string `json:"source"`
	Stage      string `json:"stage"`
	Notes      string `json:"notes"`
	PropertyID string `json:"propertyId"`
}

func CreateContact(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input contactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}
	if input.Stage == "" {
		input.Stage = "lead"
	}
	if !stages[input.Stage] {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown stage")
		return
	}

	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	contact := models.Contact{
		ContactID:  genID(),
		FullName:   input.FullName,
		Email:      input.Email,
		Phone:      utils.NormalizePhone(input.Phone),
		Source:     input.Source,
		Stage:      input.Stage,
		Notes:      input.Notes,
		PropertyID: input.PropertyID,
		OwnerID:    userID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One contact per phone number per owner.
	count, err := db.ContactsCollection.CountDocuments(ctx,
		bson.M{"ownerid": userID, "phone": contact.Phone})
	if err == nil && count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Contact with this phone already exists")
		return
	}

	if _, err := db.ContactsCollection.InsertOne(ctx, contact); err != nil {
		logger.Log.Error().Err(err).Msg("contact insert failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"contact": contact})
}

// ListContacts returns the caller's contacts, optionally narrowed by
// pipeline stage or linked property.
// GET /api/contacts?stage=visiting&property=p123
func ListContacts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, _ := r.Context().Value(globals.UserIDKey).(string)

	filter := bson.M{"ownerid": userID}
	if stage := r.URL.Query().Get("stage"); stage != "" {
		if !stages[stage] {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown stage")
			return
		}
		filter["stage"] = stage
	}
	if prop := r.URL.Query().Get("property"); prop != "" {
		filter["propertyid"] = prop
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cur, err := db.ContactsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}
	defer cur.Close(ctx)

	contacts := []models.Contact{}
	for cur.Next(ctx) {
		var c models.Contact
		if err := cur.Decode(&c); err != nil {
			continue
		}
		contacts = append(contacts, c)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"contacts": contacts})
}

func GetContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contactID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var c models.Contact
	if err := db.ContactsCollection.FindOne(ctx, bson.M{"contactid": contactID}).Decode(&c); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Contact not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"contact": c})
}

func EditContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contactID := ps.ByName("id")

	var input struct {
		FullName   *string `json:"fullName"`
		Email      *string `json:"email"`
		Phone      *string `json:"phone"`
		Source     *string `json:"source"`
		Stage      *string `json:"stage"`
		Notes      *string `json:"notes"`
		PropertyID *string `json:"propertyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if input.FullName != nil {
		set["full_name"] = *input.FullName
	}
	if input.Email != nil {
		set["email"] = *input.Email
	}
	if input.Phone != nil {
		set["phone"] = utils.NormalizePhone(*input.Phone)
	}
	if input.Source != nil {
		set["source"] = *input.Source
	}
	if input.Stage != nil {
		if !stages[*input.Stage] {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown stage")
			return
		}
		set["stage"] = *input.Stage
	}
	if input.Notes != nil {
		set["notes"] = *input.Notes
	}
	if input.PropertyID != nil {
		set["propertyid"] = *input.PropertyID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := db.ContactsCollection.FindOneAndUpdate(ctx,
		bson.M{"contactid": contactID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Contact
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Contact not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"contact": updated})
}

func DeleteContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contactID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := db.ContactsCollection.DeleteOne(ctx, bson.M{"contactid": contactID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Contact not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
