package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/contexts/trust-safety/appeal-service/adapters/memory"
	"warden/contexts/trust-safety/appeal-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/appeal-service/domain/errors"
	"warden/contexts/trust-safety/appeal-service/ports"
)

func newSubmitUseCase(store *memory.Store) SubmitAppealUseCase {
	return SubmitAppealUseCase{
		Repository: store,
		Violations: store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
	}
}

func TestSubmitAppealCreatesPendingAppeal(t *testing.T) {
	store := memory.NewStore()
	store.PrimeViolation(ports.ViolationSnapshot{
		ID: "violation-1", UserID: "user-1", WhisperID: "whisper-1",
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	})
	uc := newSubmitUseCase(store)

	appeal, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "violation-1",
		Reason:      "the detection was wrong",
	})
	if err != nil {
		t.Fatalf("submit appeal: %v", err)
	}
	if appeal.Status != entities.StatusPending {
		t.Fatalf("expected pending status, got %s", appeal.Status)
	}
	if appeal.ID == "" || appeal.SubmittedAt.IsZero() {
		t.Fatalf("appeal must carry id and submission time: %+v", appeal)
	}

	submitted := false
	for _, eventType := range store.OutboxEvents() {
		if eventType == "appeal.submitted" {
			submitted = true
		}
	}
	if !submitted {
		t.Fatal("expected appeal.submitted event in outbox")
	}
}

func TestSubmitAppealRejectsUnknownViolation(t *testing.T) {
	uc := newSubmitUseCase(memory.NewStore())

	_, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "missing",
		Reason:      "please reconsider",
	})
	if !errors.Is(err, domainerrors.ErrViolationNotFound) {
		t.Fatalf("expected ErrViolationNotFound, got %v", err)
	}
}

func TestSubmitAppealRejectsForeignViolation(t *testing.T) {
	store := memory.NewStore()
	store.PrimeViolation(ports.ViolationSnapshot{
		ID: "violation-1", UserID: "someone-else",
		CreatedAt: time.Now().UTC(),
	})
	uc := newSubmitUseCase(store)

	_, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "violation-1",
		Reason:      "not mine",
	})
	if !errors.Is(err, domainerrors.ErrNotViolationOwner) {
		t.Fatalf("expected ErrNotViolationOwner, got %v", err)
	}
}

func TestSubmitAppealEnforcesEligibilityWindow(t *testing.T) {
	store := memory.NewStore()
	store.PrimeViolation(ports.ViolationSnapshot{
		ID: "violation-old", UserID: "user-1", WhisperID: "whisper-1",
		CreatedAt: time.Now().UTC().Add(-31 * 24 * time.Hour),
	})
	uc := newSubmitUseCase(store)

	_, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "violation-old",
		Reason:      "too late but trying",
	})
	if !errors.Is(err, domainerrors.ErrAppealWindowClosed) {
		t.Fatalf("expected ErrAppealWindowClosed, got %v", err)
	}
}

func TestSubmitAppealRejectsSecondOutstandingAppeal(t *testing.T) {
	store := memory.NewStore()
	store.PrimeViolation(ports.ViolationSnapshot{
		ID: "violation-1", UserID: "user-1", WhisperID: "whisper-1",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
	uc := newSubmitUseCase(store)

	if _, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "violation-1",
		Reason:      "first appeal",
	}); err != nil {
		t.Fatalf("first appeal: %v", err)
	}

	_, err := uc.Execute(context.Background(), SubmitAppealCommand{
		UserID:      "user-1",
		WhisperID:   "whisper-1",
		ViolationID: "violation-1",
		Reason:      "second appeal",
	})
	if !errors.Is(err, domainerrors.ErrAppealOutstanding) {
		t.Fatalf("expected ErrAppealOutstanding, got %v", err)
	}
}

func TestSubmitAppealValidation(t *testing.T) {
	uc := newSubmitUseCase(memory.NewStore())

	cases := []SubmitAppealCommand{
		{WhisperID: "w", ViolationID: "v", Reason: "x"},
		{UserID: "u", ViolationID: "v", Reason: "x"},
		{UserID: "u", WhisperID: "w", Reason: "x"},
		{UserID: "u", WhisperID: "w", ViolationID: "v"},
	}
	for i, cmd := range cases {
		if _, err := uc.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidRequest) {
			t.Fatalf("case %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}
