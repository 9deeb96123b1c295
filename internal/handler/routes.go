package handler

import (
	"net/http"

	"github.com/msomdec/irhis/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. The credential
// endpoints are wrapped in limiter; every resource endpoint requires a
// bearer credential.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	patients *service.PatientService,
	assignments *service.AssignmentService,
	limiter service.RateLimiter,
) {
	authH := NewAuthHandler(auth)
	patientH := NewPatientHandler(patients)
	doctorH := NewDoctorHandler(assignments)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /", HandleHome)

	mux.Handle("POST /login", RateLimit(limiter, http.HandlerFunc(authH.HandleLogin)))
	mux.Handle("POST /signup", RateLimit(limiter, http.HandlerFunc(authH.HandleSignup)))
	mux.Handle("GET /me", protect(authH.HandleMe))

	mux.Handle("GET /patients/unassigned", protect(doctorH.HandleListUnassigned))
	mux.Handle("GET /patients/{id}", protect(patientH.HandleGet))
	mux.Handle("POST /patients/{id}/assign-doctor", protect(doctorH.HandleAssign))
	mux.Handle("PUT /patients/{id}/recovery-process", protect(patientH.HandleUpdateRecoveryProcess))
	mux.Handle("PUT /patients/{id}/details", protect(patientH.HandleUpdateDetails))
	mux.Handle("PUT /patients/{id}/feedback", protect(patientH.HandleSubmitFeedback))
	mux.Handle("GET /doctors/{id}/patients", protect(doctorH.HandleListPatients))
}
