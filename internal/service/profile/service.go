// Package profile serves profile reads and the owner-only update.
package profile

import (
	"net/http"

	"github.com/flamematch/backend/internal/app"
	"github.com/flamematch/backend/internal/auth"
	svcErr "github.com/flamematch/backend/internal/errors"
	"github.com/flamematch/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// Service implements the profile endpoints.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService wires the profile service from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Me returns the caller's own profile.
func (s *Service) Me(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	user, err := s.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateRequest struct {
	Name         *string   `json:"name"`
	Age          *int      `json:"age"`
	Bio          *string   `json:"bio"`
	Photos       *[]string `json:"photos"`
	Gender       *string   `json:"gender"`
	InterestedIn *string   `json:"interestedIn"`
	Location     *string   `json:"location"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
}

// UpdateMe applies an owner-initiated profile update. Only display,
// preference and location attributes are writable; identity,
// entitlement flags and counters are not client-mutable.
func (s *Service) UpdateMe(c *gin.Context) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Age != nil && (*req.Age < 18 || *req.Age > 120) {
		err := svcErr.InvalidArgument("age out of range")
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Photos != nil {
		user.Photos = *req.Photos
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.InterestedIn != nil {
		user.InterestedIn = *req.InterestedIn
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Latitude != nil {
		user.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		user.Longitude = *req.Longitude
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Get returns another user's public profile.
func (s *Service) Get(c *gin.Context) {
	if _, err := auth.CurrentUserID(c); err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	user, err := s.userRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapped := svcErr.Map(err)
		c.JSON(svcErr.HTTPStatus(mapped), gin.H{"error": mapped.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}
