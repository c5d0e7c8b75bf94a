package logic

import (
	"context"
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/skateiq/fantasy-agent/internal/models"
)

type MockStandingsSource struct {
	FetchStandingsFunc func(ctx context.Context) ([]models.TeamDefense, error)
}

func (m *MockStandingsSource) FetchStandings(ctx context.Context) ([]models.TeamDefense, error) {
	return m.FetchStandingsFunc(ctx)
}

func TestMatchupQualityFor(t *testing.T) {
	tests := []struct {
		rating float64
		want   models.MatchupQuality
	}{
		{100, models.MatchupExcellent},
		{70, models.MatchupExcellent},
		{69.9, models.MatchupGood},
		{60, models.MatchupGood},
		{59.9, models.MatchupAverage},
		{40, models.MatchupAverage},
		{39.9, models.MatchupDifficult},
		{30, models.MatchupDifficult},
		{29.9, models.MatchupVeryDifficult},
		{0, models.MatchupVeryDifficult},
	}
	for _, tt := range tests {
		if got := MatchupQualityFor(tt.rating); got != tt.want {
			t.Errorf("MatchupQualityFor(%v) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestBaselineRater_Range(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := models.UpcomingGame{
			Opponent: rapid.StringMatching(`[A-Z]{3}`).Draw(rt, "opponent"),
			Home:     rapid.Bool().Draw(rt, "home"),
		}
		r := BaselineRater{}.Rate(context.Background(), models.PlayerProfile{}, g)
		if r < 50 || r >= 70 {
			rt.Fatalf("baseline rating %v outside [50,70)", r)
		}
	})
}

func TestRateMatchups_Aggregates(t *testing.T) {
	games := []models.UpcomingGame{
		{GameID: 1, Opponent: "TOR", Home: true},
		{GameID: 2, Opponent: "MTL", Home: false},
		{GameID: 3, Opponent: "BOS", Home: true},
	}

	got := RateMatchups(context.Background(), BaselineRater{}, models.PlayerProfile{}, games)

	if len(got.Assessments) != 3 {
		t.Fatalf("Assessments = %d, want 3", len(got.Assessments))
	}
	// 65, 55, 65
	if want := 185.0 / 3; got.AverageRating != want {
		t.Errorf("AverageRating = %v, want %v", got.AverageRating, want)
	}
	if got.FavorableCount != 2 {
		t.Errorf("FavorableCount = %d, want 2", got.FavorableCount)
	}
	if got.DifficultCount != 0 {
		t.Errorf("DifficultCount = %d, want 0", got.DifficultCount)
	}
	if got.Assessments[0].Quality != models.MatchupGood {
		t.Errorf("Quality = %s, want good", got.Assessments[0].Quality)
	}
}

func TestRateMatchups_NoGames(t *testing.T) {
	got := RateMatchups(context.Background(), BaselineRater{}, models.PlayerProfile{}, nil)
	if got.AverageRating != 0 || got.FavorableCount != 0 || len(got.Assessments) != 0 {
		t.Errorf("expected empty summary, got %+v", got)
	}
}

func TestStandingsRater(t *testing.T) {
	standings := []models.TeamDefense{
		{TeamAbbrev: "LEAK", GamesPlayed: 10, GoalsFor: 20, GoalsAgainst: 40},
		{TeamAbbrev: "WALL", GamesPlayed: 10, GoalsFor: 40, GoalsAgainst: 20},
	}
	source := &MockStandingsSource{
		FetchStandingsFunc: func(ctx context.Context) ([]models.TeamDefense, error) {
			return standings, nil
		},
	}
	rater := NewStandingsRater(source)
	ctx := context.Background()
	skater := models.PlayerProfile{Position: models.PositionCenter}
	goalie := models.PlayerProfile{Position: models.PositionGoalie}

	// league GA/game = 3; LEAK concedes 4 => +33%
	leak := rater.Rate(ctx, skater, models.UpcomingGame{Opponent: "LEAK"})
	wall := rater.Rate(ctx, skater, models.UpcomingGame{Opponent: "WALL"})
	if leak <= wall {
		t.Errorf("skater should prefer the leaky defense: leak=%v wall=%v", leak, wall)
	}

	// goalies prefer the opponent that scores less
	gLeak := rater.Rate(ctx, goalie, models.UpcomingGame{Opponent: "LEAK"})
	gWall := rater.Rate(ctx, goalie, models.UpcomingGame{Opponent: "WALL"})
	if gLeak <= gWall {
		t.Errorf("goalie should prefer the low scoring opponent: leak=%v wall=%v", gLeak, gWall)
	}

	home := rater.Rate(ctx, skater, models.UpcomingGame{Opponent: "LEAK", Home: true})
	if home != leak+standingsHomeBonus {
		t.Errorf("home bonus not applied: home=%v road=%v", home, leak)
	}
}

func TestStandingsRater_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context) ([]models.TeamDefense, error)
	}{
		{"source error", func(ctx context.Context) ([]models.TeamDefense, error) {
			return nil, errors.New("down")
		}},
		{"unknown opponent", func(ctx context.Context) ([]models.TeamDefense, error) {
			return []models.TeamDefense{{TeamAbbrev: "EDM", GamesPlayed: 5, GoalsAgainst: 10, GoalsFor: 12}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rater := NewStandingsRater(&MockStandingsSource{FetchStandingsFunc: tt.fn})
			game := models.UpcomingGame{Opponent: "XYZ", Home: true}
			got := rater.Rate(context.Background(), models.PlayerProfile{}, game)
			want := BaselineRater{}.Rate(context.Background(), models.PlayerProfile{}, game)
			if got != want {
				t.Errorf("got %v, want baseline %v", got, want)
			}
		})
	}
}
