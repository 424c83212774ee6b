package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/file"
	"github.com/xsoluti-sigelo/sigelo/internal/request"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/validator"
)

type vehicleHandler struct {
	db           *database.DB
	errHandler   *errHandler.ErrorRepository
	fileUploader *file.FileUploader
	auditor      *AuditRecorder
}

func NewVehicleHandler(db *database.DB, errHandler *errHandler.ErrorRepository, fileUploader *file.FileUploader, auditor *AuditRecorder) *vehicleHandler {
	return &vehicleHandler{
		db:           db,
		errHandler:   errHandler,
		fileUploader: fileUploader,
		auditor:      auditor,
	}
}

func vehicleSnapshot(vehicle *database.Vehicle) audit.JSONMap {
	if vehicle == nil {
		return nil
	}

	return audit.JSONMap{
		"plate":       vehicle.Plate,
		"model":       vehicle.Model,
		"capacity_kg": vehicle.CapacityKg,
		"status":      vehicle.Status,
	}
}

type vehicleInput struct {
	Plate      string              `json:"plate"`
	Model      string              `json:"model"`
	CapacityKg int                 `json:"capacity_kg"`
	Status     string              `json:"status"`
	Validator  validator.Validator `json:"-"`
}

func (input *vehicleInput) validate() {
	input.Validator.Check(validator.NotBlank(input.Plate), "Plate is required")
	input.Validator.Check(validator.Matches(input.Plate, validator.RgxPlate), "Plate must be a valid Brazilian plate")
	input.Validator.Check(validator.NotBlank(input.Model), "Model is required")
	input.Validator.Check(input.CapacityKg >= 0, "Capacity cannot be negative")
	input.Validator.Check(validator.In(input.Status,
		database.VehicleStatusAvailable,
		database.VehicleStatusInUse,
		database.VehicleStatusMaintenance,
	), "Unknown status")
}

func (h *vehicleHandler) HandleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var input vehicleInput

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = database.VehicleStatusAvailable
	}

	input.validate()

	user := context.ContextGetAuthenticatedUser(r)

	exists, err := h.db.CheckIfPlateExists(user.TenantID, input.Plate)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!exists, "A vehicle with this plate already exists")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	vehicle := &database.Vehicle{
		TenantID:   user.TenantID,
		Plate:      input.Plate,
		Model:      input.Model,
		CapacityKg: input.CapacityKg,
		Status:     input.Status,
	}

	id, err := h.db.InsertVehicle(vehicle)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	vehicle.ID = id

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionCreateVehicle,
		EntityType: audit.EntityVehicle,
		EntityID:   id,
		NewValue:   vehicleSnapshot(vehicle),
		Success:    true,
	})

	err = response.JSONCreatedResponse(w, map[string]string{"id": id}, "Vehicle created")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *vehicleHandler) HandleListVehicles(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	vehicles, err := h.db.ListVehicles(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, vehicles, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *vehicleHandler) HandleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetVehicle(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	var input vehicleInput

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Status == "" {
		input.Status = existing.Status
	}

	input.validate()
	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	oldSnapshot := vehicleSnapshot(existing)

	updated := *existing
	updated.Plate = input.Plate
	updated.Model = input.Model
	updated.CapacityKg = input.CapacityKg
	updated.Status = input.Status

	if err := h.db.UpdateVehicle(&updated); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionUpdateVehicle,
		EntityType: audit.EntityVehicle,
		EntityID:   updated.ID,
		OldValue:   oldSnapshot,
		NewValue:   vehicleSnapshot(&updated),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Vehicle updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleUploadVehiclePhoto pushes the photo to cloud storage and keeps
// the returned URL on the vehicle row.
func (h *vehicleHandler) HandleUploadVehiclePhoto(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	vehicle, found, err := h.db.GetVehicle(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	err = r.ParseMultipartForm(10 << 20) // 10 MB
	if err != nil {
		h.errHandler.BadRequest(w, r, errors.New("invalid request data"))
		return
	}

	upload, header, err := r.FormFile("photo")
	if err != nil {
		h.errHandler.BadRequest(w, r, errors.New("error retrieving the file"))
		return
	}
	defer upload.Close()

	fileExtension := filepath.Ext(header.Filename)

	tempFile, err := os.CreateTemp("", fmt.Sprintf("upload-*%s", fileExtension))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = tempFile.ReadFrom(upload)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	photoURL, err := h.fileUploader.UploadFile(r.Context(), tempFile.Name(), "vehicles")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if err := h.db.UpdateVehiclePhoto(user.TenantID, vehicle.ID, photoURL); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionUpdateVehicle,
		EntityType: audit.EntityVehicle,
		EntityID:   vehicle.ID,
		Success:    true,
		Metadata:   audit.JSONMap{"photo_url": photoURL},
	})

	err = response.JSONOkResponse(w, map[string]string{"photo_url": photoURL}, "Photo uploaded", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *vehicleHandler) HandleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	existing, found, err := h.db.GetVehicle(user.TenantID, r.PathValue("id"))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	if err := h.db.SoftDeleteVehicle(user.TenantID, existing.ID); err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionDeleteVehicle,
		EntityType: audit.EntityVehicle,
		EntityID:   existing.ID,
		OldValue:   vehicleSnapshot(existing),
		Success:    true,
	})

	err = response.JSONOkResponse(w, nil, "Vehicle removed", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
