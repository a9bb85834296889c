package mock

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Envelope is the body shape of every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RegisterRequest mirrors the registration form.
type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required,max=100"`
	Department      string `json:"department" validate:"required"`
	EmpID           string `json:"empId" validate:"required,alphanum,min=4,max=20"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	MobileNo        string `json:"mobileNo" validate:"required,numeric,len=10"`
	CompanyEmail    string `json:"companyEmail" validate:"required,email"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthData is returned on successful registration and login.
type AuthData struct {
	Token        string `json:"token"`
	Type         string `json:"type"`
	UserID       int64  `json:"userId"`
	FullName     string `json:"fullName"`
	Department   string `json:"department"`
	EmpID        string `json:"empId"`
	MobileNo     string `json:"mobileNo"`
	CompanyEmail string `json:"companyEmail"`
}

type userKey struct{}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Auth service is running",
		Data: map[string]any{
			"status": "UP",
			"users":  s.users.count(),
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.users.emailExists(req.CompanyEmail) {
		writeError(w, http.StatusBadRequest, "Email already registered!")
		return
	}
	if s.users.empIDExists(req.EmpID) {
		writeError(w, http.StatusBadRequest, "Employee ID already registered!")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match!")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to secure password")
		return
	}

	user := &User{
		FullName:     strings.TrimSpace(req.FullName),
		Department:   req.Department,
		EmpID:        req.EmpID,
		MobileNo:     req.MobileNo,
		CompanyEmail: strings.TrimSpace(req.CompanyEmail),
		CreatedAt:    time.Now().UTC(),
		PasswordHash: hash,
	}
	if err := s.users.insert(user); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already registered!")
		case errors.Is(err, ErrEmpIDTaken):
			writeError(w, http.StatusBadRequest, "Employee ID already registered!")
		default:
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	data, err := s.authData(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "User registered successfully", Data: data})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Identifier and password are required")
		return
	}

	user, err := s.users.find(req.Identifier)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email/employee ID!")
		return
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid password!")
		return
	}

	data, err := s.authData(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Login successful", Data: data})
}

func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey{}).(*User)
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Token is valid",
		Data: map[string]any{
			"userId":       user.ID,
			"companyEmail": user.CompanyEmail,
			"empId":        user.EmpID,
		},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(userKey{}).(*User)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Profile retrieved", Data: user})
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	exists := s.users.emailExists(email)
	message := "Email is available"
	if exists {
		message = "Email is already registered"
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: exists})
}

// handleForgotPassword answers the same way whether or not the account
// exists.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "If the account exists, password reset instructions have been sent",
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims, err := s.tokens.verify(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		id, err := claims.UserID()
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		user, ok := s.users.get(id)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func (s *Server) authData(u *User) (*AuthData, error) {
	token, err := s.tokens.issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthData{
		Token:        token,
		Type:         "Bearer",
		UserID:       u.ID,
		FullName:     u.FullName,
		Department:   u.Department,
		EmpID:        u.EmpID,
		MobileNo:     u.MobileNo,
		CompanyEmail: u.CompanyEmail,
	}, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid registration data"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return "Invalid registration data: " + strings.Join(fields, ", ")
}
