package handler

import (
	"time"

	"github.com/msomdec/irhis/internal/domain"
	"github.com/msomdec/irhis/internal/service"
)

// UserDTO is the JSON representation of a user. The password digest never
// leaves the service.
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

// SessionDTO is returned by login and signup.
type SessionDTO struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}

func toSessionDTO(s *service.Session) SessionDTO {
	return SessionDTO{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserDTO(s.User),
	}
}

// ExerciseDTO is the JSON representation of one recovery-process step.
type ExerciseDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Completed         bool   `json:"completed"`
	TargetRepetitions int    `json:"targetRepetitions,omitempty"`
	TargetSets        int    `json:"targetSets,omitempty"`
	Instructions      string `json:"instructions,omitempty"`
	AssignedDate      string `json:"assignedDate,omitempty"`
	LastModified      string `json:"lastModified,omitempty"`
	VideoURL          string `json:"videoUrl,omitempty"`
}

func toExerciseDTOs(exercises []domain.Exercise) []ExerciseDTO {
	dtos := make([]ExerciseDTO, len(exercises))
	for i, e := range exercises {
		dtos[i] = ExerciseDTO(e)
	}
	return dtos
}

func fromExerciseDTOs(dtos []ExerciseDTO) []domain.Exercise {
	exercises := make([]domain.Exercise, len(dtos))
	for i, d := range dtos {
		exercises[i] = domain.Exercise(d)
	}
	return exercises
}

// DetailsDTO is the JSON representation of a patient's clinical details.
type DetailsDTO struct {
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	Height         float64  `json:"height"`
	Weight         float64  `json:"weight"`
	BMI            float64  `json:"bmi"`
	ClinicalInfo   string   `json:"clinicalInfo"`
	MedicalHistory string   `json:"medicalHistory,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
}

// DetailsUpdateDTO is a partial details update. bmi is derived and ignored
// when sent.
type DetailsUpdateDTO struct {
	Age            *int      `json:"age"`
	Sex            *string   `json:"sex"`
	Height         *float64  `json:"height"`
	Weight         *float64  `json:"weight"`
	ClinicalInfo   *string   `json:"clinicalInfo"`
	MedicalHistory *string   `json:"medicalHistory"`
	Allergies      *[]string `json:"allergies"`
}

func (d DetailsUpdateDTO) toDomain() domain.DetailsUpdate {
	return domain.DetailsUpdate{
		Age:            d.Age,
		Sex:            d.Sex,
		Height:         d.Height,
		Weight:         d.Weight,
		ClinicalInfo:   d.ClinicalInfo,
		MedicalHistory: d.MedicalHistory,
		Allergies:      d.Allergies,
	}
}

// FeedbackDTO is the JSON representation of a feedback entry.
type FeedbackDTO struct {
	SessionID  string `json:"sessionId"`
	Timestamp  string `json:"timestamp"`
	Pain       int    `json:"pain"`
	Fatigue    int    `json:"fatigue"`
	Difficulty int    `json:"difficulty"`
	Comments   string `json:"comments"`
}

// PatientDTO is the JSON representation of a patient record. The
// recovery_process key is what the mobile client reads.
type PatientDTO struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	RecoveryProcess []ExerciseDTO `json:"recovery_process"`
	Details         DetailsDTO    `json:"details"`
	Feedback        []FeedbackDTO `json:"feedback"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
}

func toPatientDTO(p *domain.Patient) PatientDTO {
	feedback := make([]FeedbackDTO, len(p.Feedback))
	for i, f := range p.Feedback {
		feedback[i] = FeedbackDTO(f)
	}
	dto := PatientDTO{
		ID:              p.ID,
		Name:            p.Name,
		RecoveryProcess: toExerciseDTOs(p.RecoveryProcess),
		Details:         DetailsDTO(p.Details),
		Feedback:        feedback,
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toPatientDTOs(patients []domain.Patient) []PatientDTO {
	dtos := make([]PatientDTO, len(patients))
	for i := range patients {
		dtos[i] = toPatientDTO(&patients[i])
	}
	return dtos
}
