// Package gateway serves the public HTTP API and forwards calls to the auth
// and event services.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"eventreward/pkg/api/authv1"
	"eventreward/pkg/api/eventv1"
	"eventreward/pkg/db/pagination"
	"eventreward/pkg/errutil"
	"eventreward/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

type Handler struct {
	auth   authv1.AuthServiceClient
	events eventv1.EventServiceClient
}

type HandlerParams struct {
	fx.In

	Auth   authv1.AuthServiceClient
	Events eventv1.EventServiceClient
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{auth: p.Auth, events: p.Events}
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, middleware.Envelope{StatusCode: code, Message: message, Data: data})
}

// bindError turns gin binding failures into a BadRequest listing the offending fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errutil.BadRequest("malformed request", err)
	}
	details := make([]errutil.Detail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, errutil.Detail{Field: fe.Field(), Message: "failed on " + fe.Tag()})
	}
	return errutil.BadRequest("invalid request", err, errutil.WithDetails(details...))
}

type registerBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), &authv1.RegisterRequest{
		Name: body.Name, Email: body.Email, Password: body.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "user registered", user)
}

type loginBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), &authv1.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "login succeeded", pair)
}

func (h *Handler) Refresh(c *gin.Context) {
	raw := c.Query("refreshToken")
	if raw == "" {
		_ = c.Error(errutil.BadRequest("refreshToken is required", nil))
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), &authv1.RefreshRequest{RefreshToken: raw})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "token refreshed", pair)
}

type rolesBody struct {
	Roles []string `json:"roles" binding:"required,min=1"`
}

func (h *Handler) UpdateUserRoles(c *gin.Context) {
	var body rolesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	user, err := h.auth.UpdateUserRoles(c.Request.Context(), &authv1.UpdateUserRolesRequest{
		UserID: c.Param("userId"), Roles: body.Roles,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "roles updated", user)
}

type createEventBody struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description" binding:"required"`
	StartDate   time.Time         `json:"startDate" binding:"required"`
	EndDate     time.Time         `json:"endDate" binding:"required,gtfield=StartDate"`
	Status      string            `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE ENDED"`
	Condition   eventv1.Condition `json:"conditions"`
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var body createEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	evt, err := h.events.CreateEvent(c.Request.Context(), &eventv1.CreateEventRequest{
		Title:       body.Title,
		Description: body.Description,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Status:      body.Status,
		Condition:   body.Condition,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "event created", evt)
}

func (h *Handler) ListEvents(c *gin.Context) {
	out, err := h.events.ListEvents(c.Request.Context(), &eventv1.ListEventsRequest{})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "events", out.Events)
}

func (h *Handler) GetEvent(c *gin.Context) {
	evt, err := h.events.GetEvent(c.Request.Context(), &eventv1.GetEventRequest{EventID: c.Param("id")})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "event", evt)
}

type createRewardBody struct {
	Type     string          `json:"type" binding:"required,oneof=CASH GOLD ITEM COUPON"`
	Name     string          `json:"name" binding:"required"`
	Details  json.RawMessage `json:"details"`
	Quantity *int            `json:"quantity" binding:"required,gte=-1"`
}

func (h *Handler) CreateReward(c *gin.Context) {
	var body createRewardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	rw, err := h.events.CreateReward(c.Request.Context(), &eventv1.CreateRewardRequest{
		EventID:  c.Param("id"),
		Type:     body.Type,
		Name:     body.Name,
		Details:  body.Details,
		Quantity: *body.Quantity,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "reward created", rw)
}

func (h *Handler) ListRewards(c *gin.Context) {
	out, err := h.events.ListRewards(c.Request.Context(), &eventv1.ListRewardsRequest{EventID: c.Param("id")})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "rewards", out.Rewards)
}

type submitBody struct {
	EventID  string           `json:"eventId" binding:"required"`
	Evidence eventv1.Evidence `json:"completedInfo"`
}

// SubmitRewardRequest files a request for the caller. A 201 may still carry
// FAILED_NO_REMAINING_REWARD rows.
func (h *Handler) SubmitRewardRequest(c *gin.Context) {
	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	claims, _ := middleware.ClaimsFrom(c)

	out, err := h.events.SubmitRewardRequest(c.Request.Context(), &eventv1.SubmitRewardRequestRequest{
		UserID:   claims.UserID,
		EventID:  body.EventID,
		Evidence: body.Evidence,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "reward request processed", out.Requests)
}

func (h *Handler) ListMyRewardRequests(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)

	out, err := h.events.ListMyRewardRequests(c.Request.Context(), &eventv1.ListMyRewardRequestsRequest{UserID: claims.UserID})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "reward requests", out.Requests)
}

type listRequestsQuery struct {
	pagination.Pagination

	UserID           string     `form:"userId"`
	EventID          string     `form:"eventId"`
	RewardID         string     `form:"rewardId"`
	Status           string     `form:"status"`
	RequestedAtStart *time.Time `form:"requestedAtStart" time_format:"2006-01-02T15:04:05Z07:00"`
	RequestedAtEnd   *time.Time `form:"requestedAtEnd" time_format:"2006-01-02T15:04:05Z07:00"`
	ProcessedAtStart *time.Time `form:"processedAtStart" time_format:"2006-01-02T15:04:05Z07:00"`
	ProcessedAtEnd   *time.Time `form:"processedAtEnd" time_format:"2006-01-02T15:04:05Z07:00"`
	ClaimedAtStart   *time.Time `form:"claimedAtStart" time_format:"2006-01-02T15:04:05Z07:00"`
	ClaimedAtEnd     *time.Time `form:"claimedAtEnd" time_format:"2006-01-02T15:04:05Z07:00"`
	Notes            string     `form:"notes"`
}

type requestPage struct {
	Items []eventv1.RewardRequest `json:"items"`
	pagination.PageInfo
}

func (h *Handler) ListAllRewardRequests(c *gin.Context) {
	var q listRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	out, err := h.events.ListAllRewardRequests(c.Request.Context(), &eventv1.ListAllRewardRequestsRequest{
		UserID:           q.UserID,
		EventID:          q.EventID,
		RewardID:         q.RewardID,
		Status:           q.Status,
		RequestedAtStart: q.RequestedAtStart,
		RequestedAtEnd:   q.RequestedAtEnd,
		ProcessedAtStart: q.ProcessedAtStart,
		ProcessedAtEnd:   q.ProcessedAtEnd,
		ClaimedAtStart:   q.ClaimedAtStart,
		ClaimedAtEnd:     q.ClaimedAtEnd,
		Notes:            q.Notes,
		Cursor:           q.Cursor,
		Limit:            q.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "reward requests", requestPage{
		Items:    out.Requests,
		PageInfo: pagination.PageInfo{NextCursor: out.NextCursor, HasMore: out.HasMore},
	})
}
