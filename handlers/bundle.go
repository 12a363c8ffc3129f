package handlers

import (
	"net/http"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the endpoint handlers for route registration.
type HandlerBundle struct {
	// Portal session endpoints.
	LoginHandler         gin.HandlerFunc
	SessionStatusHandler gin.HandlerFunc
	LogoutHandler        gin.HandlerFunc

	// Booking endpoints.
	ListBookingsHandler  gin.HandlerFunc
	BookingDetailHandler gin.HandlerFunc

	// Sync endpoints.
	RunSyncHandler        gin.HandlerFunc
	SyncStatusHandler     gin.HandlerFunc
	ReseedSnapshotHandler gin.HandlerFunc

	// Verification-code endpoints.
	FetchCodeHandler gin.HandlerFunc
	WaitCodeHandler  gin.HandlerFunc
}

// respondPortalError maps portal error codes onto HTTP statuses. Auth errors
// surface verbatim so the caller can present the right next action.
func respondPortalError(c *gin.Context, err error) {
	code := portal.CodeOf(err)
	switch code {
	case portal.CodeAuthRequired, portal.CodeAuthFailed, portal.CodeInvalidCode:
		utils.JSONError(c, http.StatusUnauthorized, code, err.Error())
	case portal.CodeVerificationTimeout:
		utils.JSONError(c, http.StatusGatewayTimeout, code, err.Error())
	case portal.CodeNetworkError:
		utils.JSONError(c, http.StatusBadGateway, code, err.Error())
	case portal.CodeParseError:
		utils.JSONError(c, http.StatusUnprocessableEntity, code, err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, code, err.Error())
	}
}
