package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quasarhq/quasar-backend/models"
	"github.com/quasarhq/quasar-backend/responses"
	"github.com/quasarhq/quasar-backend/utils"
)

func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	if a.DB == nil {
		utils.HandleError(w, responses.ServiceUnavailableError{Msg: "Accounts are unavailable on this server."})
		return
	}

	var user models.User
	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	if len(user.Username) < 3 || len(user.Username) > 50 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Username must be between 3 and 50 characters."})
		return
	}

	if len(user.Password) < 3 || len(user.Password) > 50 {
		utils.HandleError(w, responses.BadRequestError{Msg: "Password must be between 3 and 50 characters."})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to hash password."})
		return
	}
	user.Password = string(hashedPassword)

	_, err = a.DB.Exec("INSERT INTO users (username, password) VALUES ($1, $2)", user.Username, user.Password)
	if err != nil {
		a.Log.Errorw("failed to create user", "err", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to create user."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "User created successfully."}))
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if a.DB == nil {
		utils.HandleError(w, responses.ServiceUnavailableError{Msg: "Accounts are unavailable on this server."})
		return
	}

	var loginInfo models.User
	err := json.NewDecoder(r.Body).Decode(&loginInfo)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid request."})
		return
	}

	var user models.User
	err = a.DB.QueryRow("SELECT id, username, password FROM users WHERE username = $1", loginInfo.Username).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.HandleError(w, responses.UnauthorizedError{Msg: "You are not authorized to access this resource."})
			return
		}
		a.Log.Errorw("login query failed", "err", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginInfo.Password))
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "Invalid username or password."})
		return
	}

	tokenString, err := a.signToken(user)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate token."})
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate refresh token."})
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour * 180) // Expires in 180 days

	_, err = a.DB.Exec("INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)",
		user.ID, refreshToken, expiresAt)
	if err != nil {
		a.Log.Errorw("failed to store refresh token", "err", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to store refresh token."})
		return
	}

	// Create a cookie
	refreshTokenCookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}

	// Set the cookie in the response header
	http.SetCookie(w, refreshTokenCookie)
	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"access_token": tokenString}))
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	refreshTokenCookie, err := r.Cookie("refresh_token")

	if err == nil && a.DB != nil {
		_, dbErr := a.DB.Exec("DELETE FROM refresh_tokens WHERE token = $1", refreshTokenCookie.Value)
		if dbErr != nil {
			a.Log.Errorw("failed to delete refresh token", "err", dbErr)
			utils.HandleError(w, responses.InternalServerError{Msg: "Failed to delete refresh token."})
			return
		}
	}

	// Expire the cookie to force the client to delete it
	newCookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Now().AddDate(0, 0, -1),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	}
	http.SetCookie(w, newCookie)

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"message": "Logged out successfully."}))
}

func (a *App) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshTokenCookie, err := r.Cookie("refresh_token")
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "No refresh token found."})
		return
	}
	if a.DB == nil {
		utils.HandleError(w, responses.ServiceUnavailableError{Msg: "Accounts are unavailable on this server."})
		return
	}

	var userID int64
	var expiresAt time.Time
	err = a.DB.QueryRow("SELECT user_id, expires_at FROM refresh_tokens WHERE token = $1", refreshTokenCookie.Value).Scan(&userID, &expiresAt)
	if err != nil {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Invalid refresh token."})
		return
	}

	if time.Now().After(expiresAt) {
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Refresh token has expired."})
		return
	}

	user := models.User{ID: userID}
	err = a.DB.QueryRow("SELECT username FROM users WHERE id = $1", userID).Scan(&user.Username)
	if err != nil {
		a.Log.Errorw("refresh lookup failed", "err", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
		return
	}

	tokenString, err := a.signToken(user)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate token."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{"access_token": tokenString}))
}

func (a *App) signToken(user models.User) (string, error) {
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		},
		ID:       strconv.FormatInt(user.ID, 10),
		Username: user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.Cfg.JWTSecret))
}

func generateRefreshToken() (string, error) {
	tokenBytes := make([]byte, 64) // 64 bytes
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}
