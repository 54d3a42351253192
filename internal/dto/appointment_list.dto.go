package dto

import "github.com/google/uuid"

type AppointmentListDTO struct {
	ID              uuid.UUID `json:"id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Status          string    `json:"status"`
	PatientName     string    `json:"patient_name"`
	ProcedureName   string    `json:"procedure_name"`
}
