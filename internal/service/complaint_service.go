package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// ComplaintService coordinates the complaint lifecycle: creation, listings,
// the status state machine, assignment bookkeeping and the history log.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
}

// ComplaintDependencies bundles requirements for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
}

// ComplaintCreateInput describes complaint creation payload. Details carries
// the free-form submission fields verbatim; no content validation happens.
type ComplaintCreateInput struct {
	Email   string
	Details map[string]any
}

// HistoryPatch carries the optional fields appended as one history entry on a
// transition. Only fields present in the patch end up in the stored entry.
type HistoryPatch struct {
	File        *string
	Description *string
	Comment     *string
	Location    *string
}

// TransitionInput describes a requested status change.
type TransitionInput struct {
	Status     string
	EmployeeID *string
	History    *HistoryPatch
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		dispatcher: deps.Dispatcher,
	}
}

var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.ComplaintStatusPending:  {domain.ComplaintStatusViewed, domain.ComplaintStatusAssigned},
	domain.ComplaintStatusViewed:   {domain.ComplaintStatusAssigned},
	domain.ComplaintStatusAssigned: {domain.ComplaintStatusOngoing, domain.ComplaintStatusResolved},
	domain.ComplaintStatusOngoing:  {domain.ComplaintStatusResolved},
	domain.ComplaintStatusResolved: {},
}

func isValidTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create stores a new complaint in its initial state: Pending, no assignee,
// empty history.
func (s *ComplaintService) Create(ctx context.Context, input ComplaintCreateInput) (*domain.Complaint, error) {
	complaint := &domain.Complaint{
		Email:      input.Email,
		Status:     domain.ComplaintStatusPending,
		EmployeeID: nil,
		History:    []domain.HistoryEntry{},
		Details:    input.Details,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type: events.EventComplaintCreated,
		Payload: events.ComplaintCreatedPayload{
			ComplaintID: complaint.ID,
			Email:       complaint.Email,
		},
	})
	return complaint, nil
}

// Transition validates the requested status against the transition table and
// applies it together with assignee and history changes in one conditional
// update guarded by the validated prior status.
func (s *ComplaintService) Transition(ctx context.Context, id string, input TransitionInput) (*domain.Complaint, error) {
	if err := validateID(id, "complaint id"); err != nil {
		return nil, err
	}

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint")
		}
		return nil, apperrors.MapError(err)
	}

	next := domain.ComplaintStatus(input.Status)
	if input.Status == "" || !isValidTransition(complaint.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(complaint.Status), input.Status)
	}

	update := repository.TransitionUpdate{
		NextStatus: next,
		PrevStatus: complaint.Status,
	}

	if next == domain.ComplaintStatusAssigned {
		if input.EmployeeID == nil || *input.EmployeeID == "" {
			return nil, apperrors.NewMissingAssignee()
		}
		if err := validateID(*input.EmployeeID, "employee id"); err != nil {
			return nil, err
		}
		update.EmployeeID = input.EmployeeID
		update.SetEmployee = true
	}
	// Pending/Viewed are not reachable from Assigned onward through the table
	// above; the reset keeps the assignee invariant intact should an
	// administrative correction path ever feed them.
	if next == domain.ComplaintStatusPending || next == domain.ComplaintStatusViewed {
		update.ClearEmployee = true
	}

	if entry := buildHistoryEntry(input.History); entry != nil {
		update.HistoryEntry = entry
	}

	rows, err := s.complaints.ApplyTransition(ctx, id, update)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if rows == 0 {
		return nil, apperrors.NewTransitionConflict(id)
	}

	updated, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type: events.EventComplaintStatusChanged,
		Payload: events.ComplaintStatusChangedPayload{
			ComplaintID: id,
			OldStatus:   complaint.Status,
			NewStatus:   next,
			EmployeeID:  update.EmployeeID,
		},
	})
	if next == domain.ComplaintStatusAssigned {
		s.publishEvent(ctx, events.Event{
			Type: events.EventComplaintAssigned,
			Payload: events.ComplaintStatusChangedPayload{
				ComplaintID: id,
				OldStatus:   complaint.Status,
				NewStatus:   next,
				EmployeeID:  update.EmployeeID,
			},
		})
	}
	return updated, nil
}

// GetByID fetches a single complaint.
func (s *ComplaintService) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	if err := validateID(id, "complaint id"); err != nil {
		return nil, err
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint")
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// ListAll returns every complaint.
func (s *ComplaintService) ListAll(ctx context.Context) ([]domain.Complaint, error) {
	complaints, err := s.complaints.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// ListByUser returns complaints submitted under the given email.
func (s *ComplaintService) ListByUser(ctx context.Context, email string) ([]domain.Complaint, error) {
	if email == "" {
		return nil, apperrors.NewInvalidArgument("email required")
	}
	complaints, err := s.complaints.ListByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// ListByEmployee returns complaints assigned to the given employee.
func (s *ComplaintService) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Complaint, error) {
	if err := validateID(employeeID, "employee id"); err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// Delete removes a complaint unconditionally. Deleting an absent complaint is
// not an error.
func (s *ComplaintService) Delete(ctx context.Context, id string) (int64, error) {
	if err := validateID(id, "complaint id"); err != nil {
		return 0, err
	}
	deleted, err := s.complaints.Delete(ctx, id)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return deleted, nil
}

func buildHistoryEntry(patch *HistoryPatch) *domain.HistoryEntry {
	if patch == nil {
		return nil
	}
	if patch.File == nil && patch.Description == nil && patch.Comment == nil && patch.Location == nil {
		return nil
	}
	return &domain.HistoryEntry{
		Timestamp:   time.Now().UTC(),
		File:        patch.File,
		Description: patch.Description,
		Comment:     patch.Comment,
		Location:    patch.Location,
	}
}

func validateID(id, label string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewInvalidArgument("invalid " + label)
	}
	return nil
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
