package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type fakeComplaintRepo struct {
	byID map[string]*domain.Complaint

	// forceConflict makes ApplyTransition report zero affected rows, as the
	// real repository does when the status guard fails.
	forceConflict bool
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{byID: map[string]*domain.Complaint{}}
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	complaint.ID = uuid.NewString()
	stored := *complaint
	f.byID[complaint.ID] = &stored
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *complaint
	copied.History = append([]domain.HistoryEntry{}, complaint.History...)
	return &copied, nil
}

func (f *fakeComplaintRepo) ListAll(_ context.Context) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, complaint := range f.byID {
		result = append(result, *complaint)
	}
	return result, nil
}

func (f *fakeComplaintRepo) ListByEmail(_ context.Context, email string) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, complaint := range f.byID {
		if complaint.Email == email {
			result = append(result, *complaint)
		}
	}
	return result, nil
}

func (f *fakeComplaintRepo) ListByEmployee(_ context.Context, employeeID string) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for _, complaint := range f.byID {
		if complaint.EmployeeID != nil && *complaint.EmployeeID == employeeID {
			result = append(result, *complaint)
		}
	}
	return result, nil
}

func (f *fakeComplaintRepo) ApplyTransition(_ context.Context, id string, update repository.TransitionUpdate) (int64, error) {
	if f.forceConflict {
		return 0, nil
	}
	complaint, ok := f.byID[id]
	if !ok || complaint.Status != update.PrevStatus {
		return 0, nil
	}
	complaint.Status = update.NextStatus
	if update.SetEmployee {
		complaint.EmployeeID = update.EmployeeID
	}
	if update.ClearEmployee {
		complaint.EmployeeID = nil
	}
	if update.HistoryEntry != nil {
		complaint.History = append([]domain.HistoryEntry{*update.HistoryEntry}, complaint.History...)
	}
	return 1, nil
}

func (f *fakeComplaintRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func requireErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T", err)
	require.Equal(t, code, domainErr.Code)
}

func newComplaintFixture(t *testing.T, repo *fakeComplaintRepo, svc *ComplaintService) *domain.Complaint {
	t.Helper()
	complaint, err := svc.Create(context.Background(), ComplaintCreateInput{
		Email:   "u@x.com",
		Details: map[string]any{"description": "pothole"},
	})
	require.NoError(t, err)
	return complaint
}

func TestComplaintCreate(t *testing.T) {
	repo := newFakeComplaintRepo()
	svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})

	complaint := newComplaintFixture(t, repo, svc)

	require.Equal(t, domain.ComplaintStatusPending, complaint.Status)
	require.Nil(t, complaint.EmployeeID)
	require.Empty(t, complaint.History)
	require.Equal(t, "u@x.com", complaint.Email)
	require.Equal(t, "pothole", complaint.Details["description"])
}

func TestComplaintTransition(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()

	t.Run("pending to viewed leaves assignee unset", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		updated, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Viewed"})
		require.NoError(t, err)
		require.Equal(t, domain.ComplaintStatusViewed, updated.Status)
		require.Nil(t, updated.EmployeeID)
	})

	t.Run("viewed to assigned sets assignee", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Viewed"})
		require.NoError(t, err)

		updated, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Assigned", EmployeeID: &employeeID})
		require.NoError(t, err)
		require.Equal(t, domain.ComplaintStatusAssigned, updated.Status)
		require.NotNil(t, updated.EmployeeID)
		require.Equal(t, employeeID, *updated.EmployeeID)
	})

	t.Run("assigned requires an employee id", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Assigned"})
		requireErrorCode(t, err, "MISSING_ASSIGNEE")

		stored, getErr := svc.GetByID(ctx, complaint.ID)
		require.NoError(t, getErr)
		require.Equal(t, domain.ComplaintStatusPending, stored.Status)
		require.Nil(t, stored.EmployeeID)
	})

	t.Run("skipping assigned is rejected and nothing changes", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Viewed"})
		require.NoError(t, err)

		_, err = svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Ongoing"})
		requireErrorCode(t, err, "INVALID_TRANSITION")

		stored, getErr := svc.GetByID(ctx, complaint.ID)
		require.NoError(t, getErr)
		require.Equal(t, domain.ComplaintStatusViewed, stored.Status)
		require.Empty(t, stored.History)
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		for _, step := range []TransitionInput{
			{Status: "Assigned", EmployeeID: &employeeID},
			{Status: "Ongoing"},
			{Status: "Resolved"},
		} {
			_, err := svc.Transition(ctx, complaint.ID, step)
			require.NoError(t, err)
		}

		for _, next := range []string{"Pending", "Viewed", "Assigned", "Ongoing", "Resolved"} {
			_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: next, EmployeeID: &employeeID})
			requireErrorCode(t, err, "INVALID_TRANSITION")
		}
	})

	t.Run("missing status is an invalid transition", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		_, err := svc.Transition(ctx, complaint.ID, TransitionInput{})
		requireErrorCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("malformed ids are rejected before storage", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})

		_, err := svc.Transition(ctx, "not-a-uuid", TransitionInput{Status: "Viewed"})
		requireErrorCode(t, err, "INVALID_ARGUMENT")

		complaint := newComplaintFixture(t, repo, svc)
		bad := "employee-1"
		_, err = svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Assigned", EmployeeID: &bad})
		requireErrorCode(t, err, "INVALID_ARGUMENT")
	})

	t.Run("unknown complaint is not found", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})

		_, err := svc.Transition(ctx, uuid.NewString(), TransitionInput{Status: "Viewed"})
		requireErrorCode(t, err, "NOT_FOUND")
	})

	t.Run("stale status reports a conflict", func(t *testing.T) {
		repo := newFakeComplaintRepo()
		svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
		complaint := newComplaintFixture(t, repo, svc)

		repo.forceConflict = true
		_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Viewed"})
		requireErrorCode(t, err, "TRANSITION_CONFLICT")
	})
}

func TestComplaintHistory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeComplaintRepo()
	svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
	complaint := newComplaintFixture(t, repo, svc)
	employeeID := uuid.NewString()

	first := "taking a look"
	_, err := svc.Transition(ctx, complaint.ID, TransitionInput{
		Status:  "Viewed",
		History: &HistoryPatch{Comment: &first},
	})
	require.NoError(t, err)

	second := "handing over"
	updated, err := svc.Transition(ctx, complaint.ID, TransitionInput{
		Status:     "Assigned",
		EmployeeID: &employeeID,
		History:    &HistoryPatch{Comment: &second},
	})
	require.NoError(t, err)

	require.Len(t, updated.History, 2)
	require.Equal(t, second, *updated.History[0].Comment)
	require.Equal(t, first, *updated.History[1].Comment)
	require.False(t, updated.History[0].Timestamp.Before(updated.History[1].Timestamp))

	// absent patch fields never appear in the entry
	require.Nil(t, updated.History[0].File)
	require.Nil(t, updated.History[0].Description)
	require.Nil(t, updated.History[0].Location)

	t.Run("transition without patch appends nothing", func(t *testing.T) {
		updated, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Ongoing"})
		require.NoError(t, err)
		require.Len(t, updated.History, 2)
	})

	t.Run("empty patch appends nothing", func(t *testing.T) {
		updated, err := svc.Transition(ctx, complaint.ID, TransitionInput{
			Status:  "Resolved",
			History: &HistoryPatch{},
		})
		require.NoError(t, err)
		require.Len(t, updated.History, 2)
	})
}

func TestComplaintDelete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeComplaintRepo()
	svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
	complaint := newComplaintFixture(t, repo, svc)
	other := newComplaintFixture(t, repo, svc)

	deleted, err := svc.Delete(ctx, complaint.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	deleted, err = svc.Delete(ctx, complaint.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)

	_, err = svc.Delete(ctx, "not-a-uuid")
	requireErrorCode(t, err, "INVALID_ARGUMENT")

	// unrelated records are untouched
	remaining, err := svc.GetByID(ctx, other.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, remaining.ID)
}

func TestComplaintListings(t *testing.T) {
	ctx := context.Background()
	repo := newFakeComplaintRepo()
	svc := NewComplaintService(ComplaintDependencies{ComplaintRepo: repo})
	complaint := newComplaintFixture(t, repo, svc)
	employeeID := uuid.NewString()

	_, err := svc.Transition(ctx, complaint.ID, TransitionInput{Status: "Assigned", EmployeeID: &employeeID})
	require.NoError(t, err)

	byUser, err := svc.ListByUser(ctx, "u@x.com")
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	byEmployee, err := svc.ListByEmployee(ctx, employeeID)
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)

	_, err = svc.ListByEmployee(ctx, "bogus")
	requireErrorCode(t, err, "INVALID_ARGUMENT")

	_, err = svc.ListByUser(ctx, "")
	requireErrorCode(t, err, "INVALID_ARGUMENT")
}
