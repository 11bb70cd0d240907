package property

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
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

func genID() string {
	return "p" + utils.GenerateRandomDigitString(12)
}

type propertyInput struct {
	Title        string   `json:"title" validate:"required,min=3"`
	Description  string   `json:"description"`
	Type         string   `json:"type" validate:"required,oneof=house apartment land commercial"`
	Price        float64  `json:"price" validate:"gte=0"`
	City         string   `json:"city" validate:"required"`
	Neighborhood string   `json:"neighborhood"`
	Address      string   `json:"address"`
	Bedrooms     int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int      `json:"bathrooms" validate:"gte=0"`
	AreaM2       float64  `json:"area_m2" validate:"gte=0"`
	Features     []string `json:"features"`
}

func CreateProperty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input propertyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := validate.Struct(input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	userID, _ := r.Context().Value(globals.UserIDKey).(string)
	prop := models.Property{
		PropertyID:   genID(),
		Title:        input.Title,
		Description:  input.Description,
		Type:         input.Type,
		Status:       "draft",
		Price:        input.Price,
		City:         input.City,
		Neighborhood: input.Neighborhood,
		Address:      input.Address,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		AreaM2:       input.AreaM2,
		Features:     input.Features,
		AgentID:      userID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.PropertyCollection.InsertOne(ctx, prop); err != nil {
		logger.Log.Error().Err(err).Msg("property insert failed")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"property": prop})
}

// SearchProperties is the public listings endpoint: only published
// properties, narrowed by the usual portal filters.
// GET /api/properties?city=&type=&minPrice=&maxPrice=&bedrooms=
func SearchProperties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	filter := bson.M{"status": "published"}
	if city := q.Get("city"); city != "" {
		filter["city"] = city
	}
	if typ := q.Get("type"); typ != "" {
		filter["type"] = typ
	}
	price := bson.M{}
	if min, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		price["$gte"] = min
	}
	if max, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if beds, err := strconv.Atoi(q.Get("bedrooms")); err == nil && beds > 0 {
		filter["bedrooms"] = bson.M{"$gte": beds}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cur, err := db.PropertyCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch properties")
		return
	}
	defer cur.Close(ctx)

	properties := []models.Property{}
	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			continue
		}
		properties = append(properties, p)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"properties": properties})
}

// ListProperties is the CRM view: every property, any status.
func ListProperties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{}
	if agent := r.URL.Query().Get("agent"); agent != "" {
		filter["agentid"] = agent
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cur, err := db.PropertyCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch properties")
		return
	}
	defer cur.Close(ctx)

	properties := []models.Property{}
	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			continue
		}
		properties = append(properties, p)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"properties": properties})
}

func GetProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var p models.Property
	if err := db.PropertyCollection.FindOne(ctx, bson.M{"propertyid": propertyID}).Decode(&p); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"property": p})
}

func EditProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	// Only whitelisted fields are editable; ids and ownership are not.
	editable := map[string]bool{
		"title": true, "description": true, "type": true, "status": true,
		"price": true, "city": true, "neighborhood": true, "address": true,
		"bedrooms": true, "bathrooms": true, "area_m2": true, "features": true,
	}
	set := bson.M{"updated_at": time.Now()}
	for k, v := range input {
		if editable[k] {
			set[k] = v
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := db.PropertyCollection.FindOneAndUpdate(ctx,
		bson.M{"propertyid": propertyID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Property
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"property": updated})
}

func DeleteProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := db.PropertyCollection.DeleteOne(ctx, bson.M{"propertyid": propertyID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete property")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
