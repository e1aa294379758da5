package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"forever-ecommerce/models"
	"forever-ecommerce/services"
	"forever-ecommerce/utils"
)

const maxBackupUpload = 32 << 20

type SettingsController struct {
	Settings *services.SettingsService
	Errors   utils.ErrorResponder
}

func NewSettingsController(settings *services.SettingsService, errs utils.ErrorResponder) *SettingsController {
	return &SettingsController{Settings: settings, Errors: errs}
}

func (sc *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := sc.Settings.Get(r.Context())
	if err != nil {
		sc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"settings": settings})
}

func (sc *SettingsController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in models.Settings
	if err := decodeJSON(w, r, &in); err != nil {
		sc.Errors.Respond(w, r, err)
		return
	}
	settings, err := sc.Settings.Update(r.Context(), in)
	if err != nil {
		sc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Settings updated successfully", "settings": settings})
}

// Backup streams a zip of the settings and product catalog.
func (sc *SettingsController) Backup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sc.Settings.Backup(r.Context(), &buf); err != nil {
		sc.Errors.Respond(w, r, err)
		return
	}
	name := "forever-backup-" + time.Now().UTC().Format("20060102-150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Restore reads the multipart "file" field produced by Backup.
func (sc *SettingsController) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupUpload)
	if err := r.ParseMultipartForm(maxBackupUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(w, http.StatusRequestEntityTooLarge, "Backup file too large")
			return
		}
		utils.Fail(w, http.StatusBadRequest, "No backup file provided")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "No backup file provided")
		return
	}
	defer file.Close()

	result, err := sc.Settings.Restore(r.Context(), file, header.Size)
	if err != nil {
		sc.Errors.Respond(w, r, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]any{"message": "Backup restored successfully", "restored": result})
}
