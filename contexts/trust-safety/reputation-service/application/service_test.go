package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"warden/contexts/trust-safety/reputation-service/adapters/memory"
	"warden/contexts/trust-safety/reputation-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/reputation-service/domain/errors"
	"warden/contexts/trust-safety/reputation-service/domain/services"
	"warden/contexts/trust-safety/reputation-service/ports"
)

func newService(store *memory.Store) Service {
	return Service{
		Repo:        store,
		Outbox:      store,
		Standing:    services.NewStanding(services.DefaultStandingConfig()),
		Clock:       store,
		IDGenerator: store,
	}
}

func TestGetReturnsDefaultForUnknownUser(t *testing.T) {
	svc := newService(memory.NewStore())

	reputation, err := svc.Get(context.Background(), "nobody-yet")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reputation.Level != entities.LevelStandard {
		t.Fatalf("unknown user must read as standard, got %s", reputation.Level)
	}
	if reputation.Score != 50 {
		t.Fatalf("unknown user must carry the default score, got %d", reputation.Score)
	}
}

func TestRecordViolationDeductsScoreAndRecomputesLevel(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	store.PrimeReputation(entities.UserReputation{
		UserID: "user-1",
		Score:  95,
		Level:  entities.LevelTrusted,
	})

	violation, err := svc.RecordViolation(context.Background(), ports.RecordViolationInput{
		UserID:        "user-1",
		WhisperID:     "w-1",
		ViolationType: "scam",
		Reason:        "financial lure detected",
		Severity:      "high",
	})
	if err != nil {
		t.Fatalf("record violation failed: %v", err)
	}
	if violation.ID == "" || violation.ExpiresAt == nil {
		t.Fatalf("violation must carry an id and expiry: %+v", violation)
	}

	reputation, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reputation.Score != 75 {
		t.Fatalf("high severity must deduct 20 points, got %d", reputation.Score)
	}
	if reputation.Level == entities.LevelTrusted {
		t.Fatal("an active violation must drop the trusted level")
	}
	if len(reputation.ViolationHistory) != 1 || reputation.ViolationHistory[0] != violation.ID {
		t.Fatalf("violation history not appended: %+v", reputation.ViolationHistory)
	}
}

func TestRecordViolationValidation(t *testing.T) {
	svc := newService(memory.NewStore())

	_, err := svc.RecordViolation(context.Background(), ports.RecordViolationInput{
		UserID: "user-1", ViolationType: "spam", Reason: "r", Severity: "apocalyptic",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for unknown severity, got %v", err)
	}
	_, err = svc.RecordViolation(context.Background(), ports.RecordViolationInput{
		UserID: "user-1", ViolationType: "spam", Severity: "low",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty reason, got %v", err)
	}
}

func TestApplyAppealResolutionAdjustsScore(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	store.PrimeReputation(entities.UserReputation{
		UserID: "user-2",
		Score:  30,
		Level:  entities.LevelFlagged,
	})

	reputation, err := svc.ApplyAppealResolution(context.Background(), "user-2", "appeal-1", 25)
	if err != nil {
		t.Fatalf("apply resolution failed: %v", err)
	}
	if reputation.Score != 55 {
		t.Fatalf("expected score 55, got %d", reputation.Score)
	}
	if reputation.Level != entities.LevelStandard {
		t.Fatalf("recovered score must lift the flagged level, got %s", reputation.Level)
	}

	events := store.OutboxEvents()
	found := false
	for _, eventType := range events {
		if eventType == "reputation.adjusted" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected reputation.adjusted event, got %v", events)
	}
}

func TestWeightNeverFails(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	store.PrimeReputation(entities.UserReputation{UserID: "user-3", Score: 95, Level: entities.LevelTrusted})

	if got := svc.Weight(context.Background(), "user-3"); got != 2.0 {
		t.Fatalf("trusted weight expected 2.0, got %.1f", got)
	}
	if got := svc.Weight(context.Background(), "no-such-user"); got != 1.0 {
		t.Fatalf("missing user must fall back to 1.0, got %.1f", got)
	}
}

func TestSuspendPermanentRejectsEndDate(t *testing.T) {
	svc := newService(memory.NewStore())
	endDate := time.Now().UTC().Add(24 * time.Hour)

	_, err := svc.Suspend(context.Background(), ports.SuspendInput{
		UserID:      "user-4",
		Type:        "permanent",
		Reason:      "repeated scam violations",
		ModeratorID: "mod-1",
		EndDate:     &endDate,
	})
	if !errors.Is(err, domainerrors.ErrPermanentHasEndDate) {
		t.Fatalf("expected permanent end-date rejection, got %v", err)
	}
}

func TestSuspendPermanentBansReputation(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	store.PrimeReputation(entities.UserReputation{UserID: "user-5", Score: 80, Level: entities.LevelVerified})

	suspension, err := svc.Suspend(context.Background(), ports.SuspendInput{
		UserID:      "user-5",
		Type:        "permanent",
		Reason:      "repeated scam violations",
		ModeratorID: "mod-1",
	})
	if err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if suspension.EndDate != nil {
		t.Fatal("permanent suspension must not carry an end date")
	}

	reputation, err := svc.Get(context.Background(), "user-5")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reputation.Level != entities.LevelBanned || reputation.Score != 0 {
		t.Fatalf("permanent suspension must ban the account, got %s score=%d", reputation.Level, reputation.Score)
	}
}

func TestSuspendTemporaryRequiresEndDate(t *testing.T) {
	svc := newService(memory.NewStore())

	_, err := svc.Suspend(context.Background(), ports.SuspendInput{
		UserID:      "user-6",
		Type:        "temporary",
		Reason:      "cooling off",
		ModeratorID: "mod-1",
	})
	if !errors.Is(err, domainerrors.ErrTemporaryNeedsEndDate) {
		t.Fatalf("expected missing end-date rejection, got %v", err)
	}
}

func TestActiveSuspensionDerivesFromEndDate(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	if _, err := svc.Suspend(context.Background(), ports.SuspendInput{
		UserID: "user-7", Type: "temporary", Reason: "spam wave", ModeratorID: "mod-1", EndDate: &future,
	}); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	active, err := svc.ActiveSuspension(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("active lookup failed: %v", err)
	}
	if active == nil {
		t.Fatal("expected an active suspension before the end date")
	}

	store2 := memory.NewStore()
	svc2 := newService(store2)
	if err := store2.CreateSuspension(context.Background(), entities.Suspension{
		ID: "susp-old", UserID: "user-8", Type: entities.SuspensionTemporary,
		Reason: "old", ModeratorID: "mod-1", StartDate: past.Add(-time.Hour), EndDate: &past, IsActive: true,
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	active, err = svc2.ActiveSuspension(context.Background(), "user-8")
	if err != nil {
		t.Fatalf("active lookup failed: %v", err)
	}
	if active != nil {
		t.Fatal("an elapsed temporary suspension must read as inactive")
	}
}

func TestLiftSuspensionNotFound(t *testing.T) {
	svc := newService(memory.NewStore())

	_, err := svc.LiftSuspension(context.Background(), "missing", "mod-1")
	if !errors.Is(err, domainerrors.ErrSuspensionNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExpireViolationsLiftsLevelPressure(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	now := time.Now().UTC()
	expired := now.Add(-time.Minute)
	for i := 0; i < 3; i++ {
		if err := store.CreateViolation(context.Background(), entities.UserViolation{
			ID: string(rune('a' + i)), UserID: "user-9", ViolationType: "spam",
			Reason: "burst", Severity: entities.SeverityLow,
			CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: &expired,
		}); err != nil {
			t.Fatalf("seed violation failed: %v", err)
		}
	}
	store.PrimeReputation(entities.UserReputation{UserID: "user-9", Score: 60, Level: entities.LevelFlagged})

	count, err := svc.ExpireViolations(context.Background(), 10)
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 expired violations, got %d", count)
	}

	reputation, err := svc.Get(context.Background(), "user-9")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reputation.Level != entities.LevelStandard {
		t.Fatalf("expired pressure must restore standard level, got %s", reputation.Level)
	}
}
