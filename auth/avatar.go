package auth

import (
	"context"
	"net/http"
	"time"

	"lares/db"
	"lares/globals"
	"lares/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const avatarDir = "./static/userpic"

// UploadAvatar replaces the caller's profile picture.
// PUT /api/auth/me/avatar
func UploadAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to parse form")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No avatar uploaded")
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}
	if err := utils.EnsureDir(avatarDir); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Storage unavailable")
		return
	}

	filename, err := utils.SaveFile(file, header, avatarDir)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": userID},
		bson.M{"$set": bson.M{"avatar": filename, "updated_at": time.Now()}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"avatar": filename})
}
