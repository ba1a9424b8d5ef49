package api

import (
	"errors"
	"net/http"
	"time"

	"alcyxob/exercise-resolver/internal/domain"
	"alcyxob/exercise-resolver/internal/service"

	"github.com/gin-gonic/gin"
)

// ResolverHandler holds the resolver service dependency.
type ResolverHandler struct {
	resolverService service.ResolverService
}

// NewResolverHandler creates a new ResolverHandler.
func NewResolverHandler(resolverService service.ResolverService) *ResolverHandler {
	return &ResolverHandler{resolverService: resolverService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ResolveRequest defines the expected JSON for a resolution call.
type ResolveRequest struct {
	Name string `json:"name" binding:"required"`
}

// CandidateResponse is one ranked "did you mean" entry.
type CandidateResponse struct {
	ExerciseID  string  `json:"exerciseId"`
	Name        string  `json:"name,omitempty"`
	Similarity  float64 `json:"similarity"`
	Channel     string  `json:"channel"`
	Explanation string  `json:"explanation"`
}

// ExerciseResponse is the DTO for returning a catalog record.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	OriginalName     string    `json:"originalName"`
	NormalizedName   string    `json:"normalizedName"`
	Synonyms         []string  `json:"synonyms,omitempty"`
	MovementPattern  string    `json:"movementPattern,omitempty"`
	PrimaryEquipment string    `json:"primaryEquipment,omitempty"`
	MuscleGroups     []string  `json:"muscleGroups,omitempty"`
	DifficultyLevel  string    `json:"difficultyLevel,omitempty"`
	IsValidated      bool      `json:"isValidated"`
	UsageCount       int64     `json:"usageCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ResolveResponse wraps the outcome: exactly one of Record or Candidates is
// populated depending on the outcome tag.
type ResolveResponse struct {
	Outcome    string              `json:"outcome"`
	Record     *ExerciseResponse   `json:"record,omitempty"`
	Candidates []CandidateResponse `json:"candidates,omitempty"`
}

// MapExerciseToResponse converts a domain.ExerciseRecord to its DTO.
func MapExerciseToResponse(record *domain.ExerciseRecord) *ExerciseResponse {
	if record == nil {
		return nil
	}
	return &ExerciseResponse{
		ID:               record.ID,
		OriginalName:     record.OriginalName,
		NormalizedName:   record.NormalizedName,
		Synonyms:         record.Synonyms,
		MovementPattern:  record.MovementPattern,
		PrimaryEquipment: record.PrimaryEquipment,
		MuscleGroups:     record.MuscleGroups,
		DifficultyLevel:  record.DifficultyLevel,
		IsValidated:      record.IsValidated,
		UsageCount:       record.UsageCount,
		CreatedAt:        record.CreatedAt,
	}
}

func mapOutcomeToResponse(outcome *domain.Outcome) ResolveResponse {
	resp := ResolveResponse{
		Outcome: string(outcome.Status),
		Record:  MapExerciseToResponse(outcome.Record),
	}
	for _, c := range outcome.Candidates {
		cr := CandidateResponse{
			ExerciseID:  c.ExerciseID,
			Similarity:  c.Similarity,
			Channel:     string(c.Channel),
			Explanation: c.Explanation,
		}
		if c.Record != nil {
			cr.Name = c.Record.OriginalName
		}
		resp.Candidates = append(resp.Candidates, cr)
	}
	return resp
}

// --- Handler Methods ---

// Resolve handles POST /api/v1/resolve.
func (h *ResolverHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	outcome, err := h.resolverService.Resolve(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyName):
			abortWithError(c, http.StatusBadRequest, "Exercise name is empty after normalization")
		case errors.Is(err, service.ErrSynonymConflict):
			// Data-integrity conflict: needs manual adjudication, the
			// store was left unchanged.
			abortWithError(c, http.StatusConflict, "Synonym conflict requires manual adjudication")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to resolve exercise name")
		}
		return
	}

	c.JSON(http.StatusOK, mapOutcomeToResponse(outcome))
}

// RecordUsage handles POST /api/v1/exercises/:id/usage.
func (h *ResolverHandler) RecordUsage(c *gin.Context) {
	exerciseID := c.Param("id")

	err := h.resolverService.RecordUsage(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to record usage")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetExercise handles GET /api/v1/exercises/:id.
func (h *ResolverHandler) GetExercise(c *gin.Context) {
	exerciseID := c.Param("id")

	record, err := h.resolverService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, "Exercise not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch exercise")
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(record))
}

// abortWithError sends a consistent JSON error payload.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
