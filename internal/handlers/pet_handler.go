package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/httpresp"
	"github.com/clinicavet/vet-scheduler/internal/middleware"
	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/storage"
)

// maxPhotoUpload caps a pet photo upload at 5 MiB.
const maxPhotoUpload = 5 << 20

type PetHandler struct {
	db       *gorm.DB
	uploader *storage.Uploader
}

// NewPetHandler builds the pet CRUD handler. uploader may be nil when no
// bucket is configured; photo uploads then return a validation error.
func NewPetHandler(db *gorm.DB, uploader *storage.Uploader) *PetHandler {
	return &PetHandler{db: db, uploader: uploader}
}

type PetRequest struct {
	Name     string   `json:"name" binding:"required"`
	Species  string   `json:"species" binding:"required"`
	Breed    string   `json:"breed"`
	AgeYears *int     `json:"age_years"`
	WeightKg *float64 `json:"weight_kg"`
}

func (h *PetHandler) Create(c *gin.Context) {
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("name and species are required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	pet := models.Pet{
		OwnerID:  user.ID,
		Name:     req.Name,
		Species:  req.Species,
		Breed:    req.Breed,
		AgeYears: req.AgeYears,
		WeightKg: req.WeightKg,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&pet).Error; err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	httpresp.Created(c, gin.H{"pet": pet})
}

// List returns the caller's pets; admins see every pet in the clinic.
func (h *PetHandler) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	q := h.db.WithContext(c.Request.Context()).Order("name ASC")
	if user.Role != models.RoleAdmin {
		q = q.Where("owner_id = ?", user.ID)
	}

	var pets []models.Pet
	if err := q.Find(&pets).Error; err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	httpresp.OK(c, gin.H{"pets": pets})
}

func (h *PetHandler) Get(c *gin.Context) {
	pet, err := h.ownedPet(c)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"pet": pet})
}

func (h *PetHandler) Update(c *gin.Context) {
	pet, err := h.ownedPet(c)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("name and species are required"))
		return
	}

	pet.Name = req.Name
	pet.Species = req.Species
	pet.Breed = req.Breed
	pet.AgeYears = req.AgeYears
	pet.WeightKg = req.WeightKg

	if err := h.db.WithContext(c.Request.Context()).Save(pet).Error; err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	httpresp.OK(c, gin.H{"pet": pet})
}

func (h *PetHandler) Delete(c *gin.Context) {
	pet, err := h.ownedPet(c)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(pet).Error; err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}
	httpresp.Message(c, "pet deleted")
}

// UploadPhoto converts the upload to webp and stores it in the media bucket.
func (h *PetHandler) UploadPhoto(c *gin.Context) {
	if h.uploader == nil {
		httperr.WriteError(c, httperr.Validation("photo storage is not configured"))
		return
	}

	pet, err := h.ownedPet(c)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		httperr.WriteError(c, httperr.Validation("a photo file is required"))
		return
	}
	if file.Size > maxPhotoUpload {
		httperr.WriteError(c, httperr.Validation("photo must be under 5MB"))
		return
	}

	src, err := file.Open()
	if err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}
	defer src.Close()

	encoded, err := storage.ToWebP(src)
	if err != nil {
		httperr.WriteError(c, httperr.Validation("photo must be a valid jpeg or png image"))
		return
	}

	key := fmt.Sprintf("pets/%d/%d.webp", pet.ID, time.Now().Unix())
	url, err := h.uploader.Upload(c.Request.Context(), key, encoded, "image/webp")
	if err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(pet).
		Update("photo_url", url).Error; err != nil {
		httperr.WriteError(c, httperr.Internal(err))
		return
	}

	httpresp.OK(c, gin.H{"photo_url": url})
}

// ownedPet loads the pet from the path and enforces row-level ownership:
// the owner or an admin.
func (h *PetHandler) ownedPet(c *gin.Context) (*models.Pet, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, httperr.Validation("invalid pet id")
	}

	var pet models.Pet
	if err := h.db.WithContext(c.Request.Context()).First(&pet, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("pet not found")
		}
		return nil, httperr.Internal(err)
	}

	user, _ := middleware.UserFromContext(c)
	if user.Role != models.RoleAdmin && pet.OwnerID != user.ID {
		return nil, httperr.Forbidden("this pet belongs to another client")
	}
	return &pet, nil
}
