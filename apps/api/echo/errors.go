package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/tracker"
	"github.com/Abraham77967/Taskmate-Web/services/identity"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errRemoteUnavailable    = echo.NewHTTPError(http.StatusBadGateway, "remote store unavailable")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var vErr *core.ValidationError
		var wErr *core.RemoteWriteError
		cause := errors.Cause(err)

		switch {
		case errors.As(err, &vErr):
			if vErr.Fields != nil {
				message = vErr.FieldErrors()
			} else {
				message = vErr.Error()
			}
			code = http.StatusBadRequest
		case cause == identity.ErrInvalidCredentials:
			code = errAuthenticationFailed.Code
			message = errAuthenticationFailed.Message
		case cause == tracker.ErrNotSignedIn:
			code = errUnauthorized.Code
			message = errUnauthorized.Message
		case cause == identity.ErrInvalidToken:
			code = errUnauthorized.Code
			message = errUnauthorized.Message
		case cause == tracker.ErrNotReady:
			code = errRemoteUnavailable.Code
			message = errRemoteUnavailable.Message
			logger.Warn("live data not ready", err, contextIdentity(ctx))
		case cause == homework.ErrNotFound, cause == class.ErrNotFound:
			code = errHttpNotFound.Code
			message = cause.Error()
		case errors.As(err, &wErr):
			code = errRemoteUnavailable.Code
			message = errRemoteUnavailable.Message
			logger.Warn("remote write failed", err, contextIdentity(ctx))
		default:
			if hErr, ok := cause.(*echo.HTTPError); ok {
				if hErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = hErr.Message
					break
				}
				if hErr.Internal != nil {
					if herr, ok := hErr.Internal.(*echo.HTTPError); ok {
						hErr = herr
					}
				}
				code = hErr.Code
				message = hErr.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), contextIdentity(ctx))
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
