package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/labstack/echo/v4"
)

type userResponse struct {
	User *models.Profile `json:"user"`
}

type messageResponse struct {
	Message string          `json:"message"`
	User    *models.Profile `json:"user,omitempty"`
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) checkEmail(c echo.Context) error {
	var req models.EmailCheckRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	if err := s.accounts.CheckEmail(c.Request().Context(), req.Email); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": true})
}

func (s *HTTPServer) signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	sess, err := s.accounts.Signup(c.Request().Context(), &req)
	if err != nil {
		return s.writeError(c, err)
	}

	c.SetCookie(s.sessionCookie(sess.Token))
	return c.JSON(http.StatusCreated, userResponse{User: sess.Profile})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	sess, err := s.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// an unknown email is still a failed login for the client
		if errors.Is(err, common.ErrorNotFound) {
			return c.JSON(http.StatusUnauthorized, errorBody(reason(err, "email not found")))
		}
		return s.writeError(c, err)
	}

	c.SetCookie(s.sessionCookie(sess.Token))
	return c.JSON(http.StatusOK, userResponse{User: sess.Profile})
}

func (s *HTTPServer) me(c echo.Context) error {
	return c.JSON(http.StatusOK, userResponse{User: currentProfile(c)})
}

// logout needs no valid session and always succeeds.
func (s *HTTPServer) logout(c echo.Context) error {
	c.SetCookie(s.expiredCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

func (s *HTTPServer) editProfile(c echo.Context) error {
	var patch models.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badBody(c)
	}

	sess, err := s.accounts.EditProfile(c.Request().Context(), currentProfile(c).ID, &patch)
	if err != nil {
		return s.writeError(c, err)
	}

	c.SetCookie(s.sessionCookie(sess.Token))
	return c.JSON(http.StatusOK, messageResponse{Message: "profile updated", User: sess.Profile})
}

func (s *HTTPServer) editPassword(c echo.Context) error {
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	if err := s.accounts.ChangePassword(c.Request().Context(), currentProfile(c).ID, req.OldPassword, req.NewPassword); err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
}

func (s *HTTPServer) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(common.SessionTokenLifetime / time.Second),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *HTTPServer) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
