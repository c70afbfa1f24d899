package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
)

type importerStub struct {
	batches [][]fixture.Fixture
	err     error
}

var _ FixtureImporter = (*importerStub)(nil)

func (s *importerStub) UpsertFixtures(_ context.Context, items []fixture.Fixture) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, items)
	return nil
}

func TestFixtureAdminService_ImportFixtures(t *testing.T) {
	t.Parallel()

	importer := &importerStub{}
	invalidator := &invalidatorStub{}
	svc := NewFixtureAdminService(importer, invalidator)

	batch := []fixture.Fixture{
		{Round: 1, Index: 0, HomeTeam: "Arsenal", AwayTeam: "Chelsea", KickoffAt: testNow.Add(72 * time.Hour)},
		{Round: 1, Index: 1, HomeTeam: "Everton", AwayTeam: "Fulham"},
	}
	count, err := svc.ImportFixtures(context.Background(), batch)
	if err != nil {
		t.Fatalf("import fixtures: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected import count: %d", count)
	}
	if len(importer.batches) != 1 || len(importer.batches[0]) != 2 {
		t.Fatalf("unexpected stored batches: %+v", importer.batches)
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected one invalidation, got %d", invalidator.calls)
	}
}

func TestFixtureAdminService_ImportFixtures_Validation(t *testing.T) {
	t.Parallel()

	cases := map[string][]fixture.Fixture{
		"empty batch": {},
		"round missing": {
			{Index: 0, HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		},
		"negative index": {
			{Round: 1, Index: -1, HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		},
		"blank team name": {
			{Round: 1, Index: 0, HomeTeam: "Arsenal", AwayTeam: "  "},
		},
		"duplicate slot": {
			{Round: 1, Index: 0, HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
			{Round: 1, Index: 0, HomeTeam: "Everton", AwayTeam: "Fulham"},
		},
	}
	for name, batch := range cases {
		batch := batch
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			importer := &importerStub{}
			invalidator := &invalidatorStub{}
			svc := NewFixtureAdminService(importer, invalidator)

			_, err := svc.ImportFixtures(context.Background(), batch)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(importer.batches) != 0 || invalidator.calls != 0 {
				t.Fatalf("rejected batch must not reach storage")
			}
		})
	}
}
