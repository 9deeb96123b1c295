package service

import "github.com/msomdec/irhis/internal/domain"

// Operation names a protected action for the authorization policy.
type Operation int

const (
	OpReadProfile Operation = iota + 1
	OpReadPatient
	OpListDoctorPatients
	OpListUnassigned
	OpAssignPatient
	OpUpdateRecoveryProcess
	OpUpdateDetails
	OpSubmitFeedback
)

var operationNames = map[Operation]string{
	OpReadProfile:           "read_profile",
	OpReadPatient:           "read_patient",
	OpListDoctorPatients:    "list_doctor_patients",
	OpListUnassigned:        "list_unassigned",
	OpAssignPatient:         "assign_patient",
	OpUpdateRecoveryProcess: "update_recovery_process",
	OpUpdateDetails:         "update_details",
	OpSubmitFeedback:        "submit_feedback",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "unknown"
}

// Allow decides whether caller may perform op. target is the patient ID the
// operation acts on, or the doctor ID for OpListDoctorPatients. Unknown
// operations and nil callers are denied.
//
// Recovery process updates are open to every doctor, not just assigned ones.
func Allow(caller *domain.User, op Operation, target string) bool {
	if caller == nil || caller.ID == "" {
		return false
	}

	switch op {
	case OpReadProfile:
		return true
	case OpReadPatient, OpSubmitFeedback:
		return caller.IsDoctor() || caller.ID == target
	case OpListDoctorPatients:
		return caller.IsDoctor() && caller.ID == target
	case OpListUnassigned, OpAssignPatient, OpUpdateRecoveryProcess, OpUpdateDetails:
		return caller.IsDoctor()
	default:
		return false
	}
}

// Authorize returns domain.ErrUnauthorized when Allow denies the request.
func Authorize(caller *domain.User, op Operation, target string) error {
	if !Allow(caller, op, target) {
		return domain.ErrUnauthorized
	}
	return nil
}
