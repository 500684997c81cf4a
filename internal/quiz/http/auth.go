package http

import (
	"net/http"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/httpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

// AuthHandler serves the OTP flow, registration, login and the session
// lookup.
type AuthHandler struct {
	OTPService          *service.OTPService
	RegistrationService *service.RegistrationService
	AuthService         *service.AuthService
}

// HandleSendOTP godoc
//
//	@Summary		Send an email verification code
//	@Description	Issues a fresh 6 digit code for the email and mails it. A resend inside the cooldown is refused with the remaining wait.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.SendOTPRequest	true	"Email to verify"
//	@Success		200		{object}	quizsdk.MessageResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Invalid email"
//	@Failure		429		{object}	quizsdk.ErrorResponse	"Cooldown active or rate limited"
//	@Failure		502		{object}	quizsdk.ErrorResponse	"Email could not be delivered"
//	@Router			/v1/auth/send-otp [post].
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.SendOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.OTPService.Request(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, "send otp", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quizsdk.MessageResponse{Message: "OTP sent"})
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify an email code
//	@Description	Checks the submitted code. At most five wrong guesses are allowed per code. Success unlocks registration for the email until the code expires.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.VerifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	quizsdk.MessageResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Missing fields, invalid or expired code"
//	@Failure		404		{object}	quizsdk.ErrorResponse	"No code issued for the email"
//	@Failure		429		{object}	quizsdk.ErrorResponse	"Too many attempts"
//	@Router			/v1/auth/verify-otp [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.OTPService.Verify(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, r, "verify otp", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quizsdk.MessageResponse{Message: "OTP verified successfully"})
}

// HandleRegister godoc
//
//	@Summary		Register a verified account
//	@Description	Creates the account for an email verified through verify-otp and returns an access token. The welcome email is best effort and reported in welcomeEmail.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	quizsdk.AuthResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Invalid input or email not verified"
//	@Failure		409		{object}	quizsdk.ErrorResponse	"Email or mobile already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.RegistrationService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
		UserType: req.UserType,
	})
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	resp := authResponse("User registered successfully", res.User, res.Token)
	resp.WelcomeEmail = deliveryResponse(res.WelcomeEmail)
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates by email, or by mobile when email is empty. Unknown accounts and wrong passwords get the same answer.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		quizsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	quizsdk.AuthResponse
//	@Failure		400		{object}	quizsdk.ErrorResponse	"Missing identifier or password"
//	@Failure		401		{object}	quizsdk.ErrorResponse	"Invalid credentials"
//	@Failure		403		{object}	quizsdk.ErrorResponse	"Account disabled"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req quizsdk.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResponse("Login successful", res.User, res.Token))
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	quizsdk.UserResponse
//	@Failure		401	{object}	quizsdk.ErrorResponse
//	@Failure		404	{object}	quizsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(w, r)
	if !ok {
		return
	}

	u, err := h.AuthService.Me(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "load account", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(u))
}
