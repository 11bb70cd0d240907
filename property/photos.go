package property

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"lares/db"
	"lares/logger"
	"lares/models"
	"lares/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	photoDir = "./static/propertypic"
	thumbDir = "./static/propertypic/thumb"
)

// UploadPhotos accepts multipart images for a property, stores the
// originals and a 300px-wide thumbnail for each, and appends the
// filenames to the property document.
// POST /api/properties/:id/photos
func UploadPhotos(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No photos uploaded")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var prop models.Property
	if err := db.PropertyCollection.FindOne(ctx, bson.M{"propertyid": propertyID}).Decode(&prop); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}

	if err := utils.EnsureDir(photoDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}

	saved := []string{}
	for _, header := range files {
		if !utils.ValidateImageFileType(w, header) {
			return
		}

		file, err := header.Open()
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to read photo")
			return
		}

		img, err := imaging.Decode(file)
		file.Close()
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Unsupported image data")
			return
		}

		name := fmt.Sprintf("%s-%s.jpg", propertyID, utils.GenerateRandomString(8))
		if err := imaging.Save(img, filepath.Join(photoDir, name)); err != nil {
			logger.Log.Error().Err(err).Str("property", propertyID).Msg("photo save failed")
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save photo")
			return
		}

		thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
		if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
			logger.Log.Error().Err(err).Str("property", propertyID).Msg("thumbnail save failed")
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save thumbnail")
			return
		}

		saved = append(saved, name)
	}

	res := db.PropertyCollection.FindOneAndUpdate(ctx,
		bson.M{"propertyid": propertyID},
		bson.M{
			"$push": bson.M{"photos": bson.M{"$each": saved}},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Property
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record photos")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"photos": saved, "property": updated})
}

// DeletePhoto removes one photo (and its thumbnail) from a property.
// DELETE /api/properties/:id/photos/:photo
func DeletePhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("id")
	photo := utils.SanitizeFilename(ps.ByName("photo"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := db.PropertyCollection.FindOneAndUpdate(ctx,
		bson.M{"propertyid": propertyID, "photos": photo},
		bson.M{
			"$pull": bson.M{"photos": photo},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Property
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Photo not found")
		return
	}

	os.Remove(filepath.Join(photoDir, photo))
	os.Remove(filepath.Join(thumbDir, photo))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"property": updated})
}
