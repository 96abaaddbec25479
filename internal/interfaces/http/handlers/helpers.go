package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "dvlottery.backend/internal/domain/errors"
	"dvlottery.backend/internal/interfaces/http/middleware"
	"dvlottery.backend/internal/interfaces/http/response"
	"dvlottery.backend/pkg/utils"
)

// uuidParam parses a path parameter, writing a 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, writing a 401 when there is none
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
	}
	return callerID, ok
}

// requireSubject lets the request through only when the authenticated caller
// is userID, or an admin when allowAdmin is set.
func requireSubject(c *gin.Context, userID uuid.UUID, allowAdmin bool) bool {
	callerID, ok := currentUser(c)
	if !ok {
		return false
	}
	if callerID == userID || (allowAdmin && middleware.IsAdmin(c)) {
		return true
	}
	response.Error(c, domainerrors.Forbidden("access denied"))
	return false
}

// checkClaimedSubject rejects an authenticated applicant acting on another
// applicant's user id. Anonymous callers pass; the usecase validates ownership.
func checkClaimedSubject(c *gin.Context, userID uuid.UUID) bool {
	callerID, ok := middleware.GetUserID(c)
	if !ok || callerID == userID || middleware.IsAdmin(c) {
		return true
	}
	response.Error(c, domainerrors.Forbidden("access denied"))
	return false
}
