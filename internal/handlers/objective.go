package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/middleware"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ObjectiveHandler struct {
	objectiveService *services.ObjectiveService
}

func NewObjectiveHandler(db *gorm.DB) *ObjectiveHandler {
	return &ObjectiveHandler{
		objectiveService: services.NewObjectiveService(db),
	}
}

// Create adds an objective to a team
// POST /api/teams/:tid/objectives
func (h *ObjectiveHandler) Create(c *gin.Context) {
	var req services.CreateObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	obj, err := h.objectiveService.CreateObjective(c.Param("tid"), &req, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, obj)
}

// List returns the team's objectives with their key results
// GET /api/teams/:tid/objectives
func (h *ObjectiveHandler) List(c *gin.Context) {
	items, err := h.objectiveService.ListTeamObjectives(c.Param("tid"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, items)
}

// Update changes an objective's name, description or target date
// PUT /api/objectives/:obj_id
func (h *ObjectiveHandler) Update(c *gin.Context) {
	objID, ok := uintParam(c, "obj_id")
	if !ok {
		return
	}

	var req services.UpdateObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	obj, err := h.objectiveService.UpdateObjective(objID, &req, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, obj)
}

// Delete removes an objective and its key results
// DELETE /api/objectives/:obj_id
func (h *ObjectiveHandler) Delete(c *gin.Context) {
	objID, ok := uintParam(c, "obj_id")
	if !ok {
		return
	}

	if err := h.objectiveService.DeleteObjective(objID, middleware.GetUID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// Progress returns the objective's completion counters
// GET /api/objectives/:obj_id/progress
func (h *ObjectiveHandler) Progress(c *gin.Context) {
	objID, ok := uintParam(c, "obj_id")
	if !ok {
		return
	}

	progress, err := h.objectiveService.Progress(objID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, progress)
}

// CreateKeyResult adds a key result under an objective
// POST /api/objectives/:obj_id/key-results
func (h *ObjectiveHandler) CreateKeyResult(c *gin.Context) {
	objID, ok := uintParam(c, "obj_id")
	if !ok {
		return
	}

	var req services.CreateKeyResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	kr, err := h.objectiveService.CreateKeyResult(objID, &req, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, kr)
}

// UpdateKeyResultProgress records new progress for a key result
// PUT /api/key-results/:key_id/progress
func (h *ObjectiveHandler) UpdateKeyResultProgress(c *gin.Context) {
	keyID, ok := uintParam(c, "key_id")
	if !ok {
		return
	}

	var req struct {
		Progress float64 `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	kr, err := h.objectiveService.UpdateKeyResultProgress(keyID, req.Progress, middleware.GetUID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, kr)
}

// DeleteKeyResult removes a key result
// DELETE /api/key-results/:key_id
func (h *ObjectiveHandler) DeleteKeyResult(c *gin.Context) {
	keyID, ok := uintParam(c, "key_id")
	if !ok {
		return
	}

	if err := h.objectiveService.DeleteKeyResult(keyID, middleware.GetUID(c)); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
