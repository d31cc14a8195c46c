package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"astrolab/internal/identity"
	"astrolab/pkg/model"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	User    identity.User `json:"user"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			writeError(w, http.StatusConflict, ErrCodeConflict, "Email already registered")
		case errors.Is(err, model.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			writeInternalError(w, err, "Signup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Email and password are required")
		return
	}

	user, token, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, identity.ErrInvalidCredentials.Error())
			return
		}
		writeInternalError(w, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Token is required")
		return
	}

	user, err := h.auth.ValidateToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, identity.ErrInvalidToken.Error())
			return
		}
		writeInternalError(w, err, "Token validation failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Token is valid",
		User:    user,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "User details retrieved",
		User:    user,
	})
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userOrError(w, r)
	if !ok {
		return
	}

	var fields model.Document
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Profile updated",
		User:    user,
	})
}
