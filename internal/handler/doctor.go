package handler

import (
	"net/http"

	"github.com/msomdec/irhis/internal/service"
)

// DoctorHandler serves the doctor-facing assignment endpoints.
type DoctorHandler struct {
	assignments *service.AssignmentService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(assignments *service.AssignmentService) *DoctorHandler {
	return &DoctorHandler{assignments: assignments}
}

// HandleListPatients returns the patients assigned to the doctor in the path.
// Doctors may only list their own set.
// GET /doctors/{id}/patients
func (h *DoctorHandler) HandleListPatients(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if _, ok := authorize(w, r, service.OpListDoctorPatients, doctorID); !ok {
		return
	}

	patients, err := h.assignments.PatientsForDoctor(r.Context(), doctorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTOs(patients))
}

// HandleListUnassigned returns every patient no doctor has taken yet.
// GET /patients/unassigned
func (h *DoctorHandler) HandleListUnassigned(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, service.OpListUnassigned, ""); !ok {
		return
	}

	patients, err := h.assignments.Unassigned(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTOs(patients))
}

// HandleAssign adds the patient in the path to the calling doctor's set.
// POST /patients/{id}/assign-doctor
func (h *DoctorHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	doctor, ok := authorize(w, r, service.OpAssignPatient, patientID)
	if !ok {
		return
	}

	if err := h.assignments.Assign(r.Context(), doctor.ID, patientID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Patient assigned successfully"})
}
