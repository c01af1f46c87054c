package assist

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

const systemPrompt = "You are an assistant for clinic staff. Answer concisely, in plain text, based only on the data provided."

var historyTmpl = template.Must(template.New("history").Parse(`Summarize this patient's visit history for a doctor preparing a consultation.

Patient: {{.Patient.Name}} ({{.Patient.Gender}})
{{- if .Patient.DOB}}
Date of birth: {{.Patient.DOB.Format "2006-01-02"}}
{{- end}}

Appointments:
{{- range .Appointments}}
- {{.DateTime.Format "2006-01-02 15:04"}} with {{.DoctorName}} ({{.DoctorSpecialty}}), status {{.Status}}
{{- else}}
- none on record
{{- end}}

Billing:
{{- range .Transactions}}
- {{.Date.Format "2006-01-02"}}: {{.Service}}, {{printf "%.2f" .Amount}} ({{.Status}})
{{- else}}
- none on record
{{- end}}`))

type Service struct {
	client          *Client
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	transactionRepo repository.TransactionRepository
	logger          *logger.Logger
}

func NewService(client *Client, patientRepo repository.PatientRepository, doctorRepo repository.DoctorRepository, appointmentRepo repository.AppointmentRepository, transactionRepo repository.TransactionRepository, logger *logger.Logger) *Service {
	return &Service{
		client:          client,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// SummarizePatientHistory builds a short narrative of the patient's
// appointments and billing for the consulting doctor.
func (s *Service) SummarizePatientHistory(ctx context.Context, patientID uuid.UUID) (string, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("patient lookup failed: %w", err)
	}
	appointments, err := s.appointmentRepo.List(ctx, &model.AppointmentFilters{PatientID: patientID})
	if err != nil {
		return "", fmt.Errorf("failed to list appointments: %w", err)
	}
	transactions, err := s.transactionRepo.List(ctx, &model.TransactionFilters{PatientID: patientID})
	if err != nil {
		return "", fmt.Errorf("failed to list transactions: %w", err)
	}

	prompt, err := render(historyTmpl, map[string]interface{}{
		"Patient":      patient,
		"Appointments": appointments,
		"Transactions": transactions,
	})
	if err != nil {
		return "", err
	}
	return s.client.Complete(ctx, systemPrompt, prompt)
}

// SuggestBillingService proposes a service label and amount for an
// appointment about to be billed manually.
func (s *Service) SuggestBillingService(ctx context.Context, appointmentID uuid.UUID) (string, error) {
	apt, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return "", fmt.Errorf("appointment lookup failed: %w", err)
	}
	doctor, err := s.doctorRepo.Get(ctx, apt.DoctorID)
	if err != nil {
		return "", fmt.Errorf("doctor lookup failed: %w", err)
	}
	transactions, err := s.transactionRepo.List(ctx, &model.TransactionFilters{PatientID: apt.PatientID})
	if err != nil {
		return "", fmt.Errorf("failed to list transactions: %w", err)
	}

	var price string
	if doctor.ServicePrice != nil {
		price = fmt.Sprintf("%.2f", *doctor.ServicePrice)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest a billing service description and amount for this appointment. Reply with a single service name and a number.\n\n")
	fmt.Fprintf(&b, "Doctor: %s, specialty %s\n", doctor.Name, doctor.Specialty)
	if price != "" {
		fmt.Fprintf(&b, "Standard consultation price: %s\n", price)
	}
	fmt.Fprintf(&b, "Patient: %s\n", apt.PatientName)
	fmt.Fprintf(&b, "Visit date: %s\n", apt.DateTime.Format("2006-01-02"))
	fmt.Fprintf(&b, "Past services billed to this patient:\n")
	if len(transactions) == 0 {
		fmt.Fprintf(&b, "- none\n")
	}
	for _, t := range transactions {
		fmt.Fprintf(&b, "- %s: %.2f\n", t.Service, t.Amount)
	}

	return s.client.Complete(ctx, systemPrompt, b.String())
}

// SuggestAppointmentSlots proposes free slots for a doctor over the coming
// week, based on their working days and current bookings.
func (s *Service) SuggestAppointmentSlots(ctx context.Context, doctorID uuid.UUID) (string, error) {
	doctor, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		return "", fmt.Errorf("doctor lookup failed: %w", err)
	}

	now := time.Now()
	appointments, err := s.appointmentRepo.List(ctx, &model.AppointmentFilters{
		DoctorID:  doctorID,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, 7),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list appointments: %w", err)
	}

	prompt, err := renderSlots(doctor, appointments, now)
	if err != nil {
		return "", err
	}
	return s.client.Complete(ctx, systemPrompt, prompt)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}

func renderSlots(doctor *model.Doctor, appointments []*model.Appointment, now time.Time) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest up to three good appointment slots for the next week. Prefer working days listed below and avoid times already booked. Reply as a short list of date and time.\n\n")
	fmt.Fprintf(&b, "Doctor: %s (%s)\n", doctor.Name, doctor.Specialty)
	fmt.Fprintf(&b, "Working days: %s\n", strings.Join(doctor.AvailableDays, ", "))
	fmt.Fprintf(&b, "Today: %s\n", now.Format("2006-01-02 (Monday)"))
	fmt.Fprintf(&b, "Booked slots:\n")
	if len(appointments) == 0 {
		fmt.Fprintf(&b, "- none\n")
	}
	for _, a := range appointments {
		fmt.Fprintf(&b, "- %s\n", a.DateTime.Format("2006-01-02 15:04"))
	}
	return b.String(), nil
}
