package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/msomdec/irhis/internal/domain"
	"github.com/msomdec/irhis/internal/service"
)

// PatientHandler serves the patient record endpoints. Each handler checks
// the policy before it touches the store, so a denied caller gets 403 even
// for a patient that does not exist.
type PatientHandler struct {
	patients *service.PatientService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// HandleGet returns a single patient record.
// GET /patients/{id}
func (h *PatientHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := authorize(w, r, service.OpReadPatient, id); !ok {
		return
	}

	p, err := h.patients.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(p))
}

// HandleUpdateRecoveryProcess replaces the patient's exercise list.
// PUT /patients/{id}/recovery-process
// Request: [{"id":"...","name":"...","completed":false,...}]
func (h *PatientHandler) HandleUpdateRecoveryProcess(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := authorize(w, r, service.OpUpdateRecoveryProcess, id); !ok {
		return
	}

	var raw json.RawMessage
	if err := readJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body.")
		return
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		writeError(w, http.StatusBadRequest, codeValidation, "Recovery process must be a list of exercises.")
		return
	}
	var exercises []ExerciseDTO
	if err := json.Unmarshal(raw, &exercises); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Recovery process must be a list of exercises.")
		return
	}

	p, err := h.patients.UpdateRecoveryProcess(r.Context(), id, fromExerciseDTOs(exercises))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(p))
}

// HandleUpdateDetails merges a partial clinical details update.
// PUT /patients/{id}/details
// Request: {"weight":90,"height":1.8,...}
func (h *PatientHandler) HandleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := authorize(w, r, service.OpUpdateDetails, id); !ok {
		return
	}

	var req DetailsUpdateDTO
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body.")
		return
	}

	p, err := h.patients.UpdateDetails(r.Context(), id, req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(p))
}

// HandleSubmitFeedback appends one or more feedback entries.
// PUT /patients/{id}/feedback
// Request: {"feedback": {...}} or {"feedback": [{...}, ...]}
func (h *PatientHandler) HandleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := authorize(w, r, service.OpSubmitFeedback, id); !ok {
		return
	}

	var req struct {
		Feedback json.RawMessage `json:"feedback"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body.")
		return
	}
	entries, err := decodeFeedback(req.Feedback)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Feedback is required.")
		return
	}

	p, err := h.patients.SubmitFeedback(r.Context(), id, entries)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(p))
}

// decodeFeedback accepts a single feedback object or a list of them.
func decodeFeedback(raw json.RawMessage) ([]domain.Feedback, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domain.ErrInvalidInput
	}

	var dtos []FeedbackDTO
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &dtos); err != nil {
			return nil, err
		}
	} else {
		var one FeedbackDTO
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		dtos = []FeedbackDTO{one}
	}
	if len(dtos) == 0 {
		return nil, domain.ErrInvalidInput
	}

	entries := make([]domain.Feedback, len(dtos))
	for i, d := range dtos {
		entries[i] = domain.Feedback(d)
	}
	return entries, nil
}
