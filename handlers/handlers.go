package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"release-service/form"
	"release-service/models"
	"release-service/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// SessionState is what every mutation returns so the form can
// re-render without a second round trip.
type SessionState struct {
	SessionID   string             `json:"session_id"`
	Draft       models.ReportDraft `json:"draft"`
	Submittable bool               `json:"submittable"`
	Missing     []string           `json:"missing"`
}

func (h *Handler) sessionState(sess *form.Session) SessionState {
	draft := sess.Snapshot()
	return SessionState{
		SessionID:   sess.ID,
		Draft:       draft,
		Submittable: form.Submittable(&draft),
		Missing:     missingCategories(&draft),
	}
}

// missingCategories tells the form which groups still block
// submission. Presentation hint only; the gate is the boolean.
func missingCategories(d *models.ReportDraft) []string {
	missing := []string{}

	for _, m := range d.Team {
		if m.ID == "" || m.Rank == models.RankNotFound {
			missing = append(missing, "team")
			break
		}
	}

	hasVehicle := false
	for _, v := range d.Vehicles {
		if strings.TrimSpace(v) != "" {
			hasVehicle = true
			break
		}
	}
	if !hasVehicle {
		missing = append(missing, "vehicles")
	}

	if d.Street == "" {
		missing = append(missing, "street")
	}
	if d.Neighborhood == nil {
		missing = append(missing, "neighborhood")
	}
	if d.Narrative == "" {
		missing = append(missing, "narrative")
	}
	return missing
}

// session resolves the :id path param, replying 404 on a miss.
func (h *Handler) session(c *gin.Context) (*form.Session, bool) {
	sess, ok := h.svc.Session(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// index resolves the :index path param.
func index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return i, true
}

// CreateSession opens a new draft. Blocked with 503 while the
// directory has not loaded.
func (h *Handler) CreateSession(c *gin.Context) {
	sess, err := h.svc.CreateSession()
	if err != nil {
		log.Errorf("Failed to create session: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "directory unavailable"})
		return
	}
	c.JSON(http.StatusCreated, h.sessionState(sess))
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type setTeamMemberRequest struct {
	ID string `json:"id"`
}

func (h *Handler) SetTeamMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := index(c)
	if !ok {
		return
	}

	var req setTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := sess.SetTeamMemberID(i, req.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) AddTeamMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.AddTeamMember()
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) RemoveTeamMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := index(c)
	if !ok {
		return
	}
	if err := sess.RemoveTeamMember(i); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type setVehicleRequest struct {
	Value string `json:"value"`
}

func (h *Handler) SetVehicle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := index(c)
	if !ok {
		return
	}

	var req setVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := sess.SetVehicle(i, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) AddVehicle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.AddVehicle()
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) RemoveVehicle(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	i, ok := index(c)
	if !ok {
		return
	}
	if err := sess.RemoveVehicle(i); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type setNeighborhoodRequest struct {
	Name string `json:"name"`
}

func (h *Handler) SetNeighborhood(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req setNeighborhoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	sess.SetNeighborhood(req.Name)
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) SetField(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := sess.SetField(form.Field(req.Field), req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type attachPhotoRequest struct {
	Photo string `json:"photo"`
}

func (h *Handler) AttachPhoto(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req attachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Photo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	sess.AttachPhoto(req.Photo)
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) RemovePhoto(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.RemovePhoto()
	c.JSON(http.StatusOK, h.sessionState(sess))
}

type enhanceRequest struct {
	Field string `json:"field"`
}

// Enhance rewrites narrative or productivity text. Adapter failures
// degrade to the original text, so this never reports an upstream
// error to the form.
func (h *Handler) Enhance(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := h.svc.Enhance(c.Request.Context(), sess, form.Field(req.Field)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.sessionState(sess))
}

func (h *Handler) Summary(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": h.svc.Summary(sess)})
}

func (h *Handler) ShareLink(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_link": h.svc.ShareLink(sess)})
}

// Submit delivers the flattened report. A failed delivery is 502 and
// retryable; the draft is untouched.
func (h *Handler) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	rec, err := h.svc.Submit(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrNotSubmittable) {
			c.JSON(http.StatusConflict, gin.H{"error": "report is incomplete"})
			return
		}
		log.Errorf("Submission failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to save report, please retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

// Directory exposes the rosters so the form can fill its dropdowns.
func (h *Handler) Directory(c *gin.Context) {
	dir, err := h.svc.Directory()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "directory unavailable"})
		return
	}
	c.JSON(http.StatusOK, dir)
}

// ReloadDirectory retries a failed roster load. There is no automatic
// retry; recovery is explicit.
func (h *Handler) ReloadDirectory(c *gin.Context) {
	if err := h.svc.ReloadDirectory(c.Request.Context()); err != nil {
		log.Errorf("Directory reload failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "directory reload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
