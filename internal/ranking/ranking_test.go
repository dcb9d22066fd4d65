package ranking

import (
	"fmt"
	"testing"

	"crux-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(userID string, grade domain.Grade, attempts int) domain.CompletionRow {
	return domain.CompletionRow{
		UserID:    userID,
		RouteID:   "route-" + string(grade),
		Grade:     grade,
		Attempts:  attempts,
		IsFlashed: attempts == 1,
	}
}

func TestRankAggregatesPerUser(t *testing.T) {
	engine := NewEngine()

	rows := []domain.CompletionRow{
		row("alice", domain.GradeNoir, 1),   // 855 * 1.3 = 1112
		row("alice", domain.GradeViolet, 4), // 51
		row("bob", domain.GradeViolet, 4),   // 51
	}

	entries := engine.Rank(rows, map[string]float64{})
	require.Len(t, entries, 2)

	assert.Equal(t, "alice", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1163, entries[0].Points)
	assert.Equal(t, 2, entries[0].TotalValidations)
	assert.Equal(t, 1, entries[0].FlashCount)
	assert.Equal(t, 50.0, entries[0].FlashRate)

	assert.Equal(t, "bob", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 51, entries[1].Points)
}

func TestRankAppliesDifficultyFactors(t *testing.T) {
	engine := NewEngine()

	rows := []domain.CompletionRow{
		{UserID: "alice", RouteID: "r1", Grade: domain.GradeRouge, Attempts: 4},
	}

	// round(112 * 1.5) = 168
	entries := engine.Rank(rows, map[string]float64{"r1": 1.5})
	require.Len(t, entries, 1)
	assert.Equal(t, 168, entries[0].Points)

	// unknown route falls back to the neutral factor
	entries = engine.Rank(rows, map[string]float64{})
	assert.Equal(t, 112, entries[0].Points)
}

func TestRankDeterministic(t *testing.T) {
	engine := NewEngine()

	var rows []domain.CompletionRow
	for i := 0; i < 20; i++ {
		// every user has an identical record: all four sort keys tie
		rows = append(rows, row(fmt.Sprintf("user-%02d", i), domain.GradeViolet, 4))
	}

	first := engine.Rank(rows, nil)
	for run := 0; run < 5; run++ {
		again := engine.Rank(rows, nil)
		assert.Equal(t, first, again, "identical input must yield identical rank assignments")
	}
}

func TestRankContiguousDenseRanks(t *testing.T) {
	engine := NewEngine()

	var rows []domain.CompletionRow
	for i := 0; i < 7; i++ {
		rows = append(rows, row(fmt.Sprintf("user-%d", i), domain.GradeViolet, 4))
	}

	entries := engine.Rank(rows, nil)
	require.Len(t, entries, 7)

	seen := make(map[int]bool)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
		assert.False(t, seen[entry.Rank], "rank %d assigned twice", entry.Rank)
		seen[entry.Rank] = true
	}
}

func TestRankTieBreakChain(t *testing.T) {
	engine := NewEngine()

	// bob scores the same points as alice but with fewer validations
	// (higher grade, fewer routes); alice outranks him on validations.
	rows := []domain.CompletionRow{
		{UserID: "alice", RouteID: "a1", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "alice", RouteID: "a2", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "bob", RouteID: "b1", Grade: domain.GradeVert, Attempts: 4},
	}
	entries := engine.Rank(rows, map[string]float64{"b1": 2.0})
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Points, entries[1].Points)
	assert.Equal(t, "alice", entries[0].UserID, "more validations wins the points tie")

	// flash rate breaks the next tie
	rows = []domain.CompletionRow{
		{UserID: "flasher", RouteID: "f1", Grade: domain.GradeVert, Attempts: 1, IsFlashed: true},
		{UserID: "grinder", RouteID: "g1", Grade: domain.GradeVert, Attempts: 1, IsFlashed: false},
	}
	entries = engine.Rank(rows, nil)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].Points, entries[1].Points)
	assert.Equal(t, "flasher", entries[0].UserID)
}

func TestRankGradeTieBreakPrefersGradedUser(t *testing.T) {
	engine := NewEngine()

	// both users: identical points, validations and flash rate; carol has
	// validated a grade, dave has his completions spread too thin.
	rows := []domain.CompletionRow{
		{UserID: "carol", RouteID: "c1", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "carol", RouteID: "c2", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "carol", RouteID: "c3", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "dave", RouteID: "d1", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "dave", RouteID: "d2", Grade: domain.GradeVert, Attempts: 4},
		{UserID: "dave", RouteID: "d3", Grade: domain.GradeVertClair, Attempts: 4},
	}
	// force point equality: Vert 10+10+10 = 30 vs 10+10+15 = 35, so scale d3 down
	factors := map[string]float64{"d3": 10.0 / 15.0}

	entries := engine.Rank(rows, factors)
	require.Len(t, entries, 2)
	require.Equal(t, entries[0].Points, entries[1].Points)
	assert.Equal(t, "carol", entries[0].UserID, "validated grade outranks no grade")
	assert.Equal(t, domain.GradeVert, entries[0].ValidatedGrade)
	assert.Equal(t, domain.Grade(""), entries[1].ValidatedGrade)
}

func TestValidatedGrade(t *testing.T) {
	// 5 completions of Violet, 3 of the higher Rouge: Rouge is validated
	byGrade := map[domain.Grade]int{
		domain.GradeViolet: 5,
		domain.GradeRouge:  3,
	}
	assert.Equal(t, domain.GradeRouge, ValidatedGrade(byGrade))

	// lower grade with <3 never overrides a qualifying higher one
	byGrade = map[domain.Grade]int{
		domain.GradeRouge: 3,
		domain.GradeNoir:  2,
	}
	assert.Equal(t, domain.GradeRouge, ValidatedGrade(byGrade))

	// 2 of any single grade: no validated grade
	byGrade = map[domain.Grade]int{
		domain.GradeVert:   2,
		domain.GradeViolet: 2,
		domain.GradeNoir:   2,
	}
	assert.Equal(t, domain.Grade(""), ValidatedGrade(byGrade))

	assert.Equal(t, domain.Grade(""), ValidatedGrade(nil))
}

func TestFlashRate(t *testing.T) {
	assert.Equal(t, 40.0, FlashRate(4, 10))
	assert.Equal(t, 0.0, FlashRate(0, 0))
	assert.Equal(t, 100.0, FlashRate(5, 5))

	// rounded to one decimal: 1/3 = 33.3
	assert.Equal(t, 33.3, FlashRate(1, 3))
}

func TestPaginate(t *testing.T) {
	entries := make([]domain.LeaderboardEntry, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, domain.LeaderboardEntry{UserID: fmt.Sprintf("u%d", i), Rank: i + 1})
	}

	page := Paginate(entries, 1, 5)
	assert.Len(t, page.Entries, 5)
	assert.Equal(t, domain.Pagination{CurrentPage: 1, TotalPages: 3, TotalUsers: 12, HasMore: true}, page.Pagination)

	page = Paginate(entries, 3, 5)
	assert.Len(t, page.Entries, 2)
	assert.False(t, page.Pagination.HasMore)
	assert.Equal(t, "u10", page.Entries[0].UserID)

	// past the end: empty but well-formed
	page = Paginate(entries, 4, 5)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasMore)
}

func TestPaginateEmpty(t *testing.T) {
	page := Paginate(nil, 1, 50)
	assert.Empty(t, page.Entries)
	assert.Equal(t, domain.Pagination{CurrentPage: 1, TotalPages: 0, TotalUsers: 0, HasMore: false}, page.Pagination)

	empty := Empty(2)
	assert.Empty(t, empty.Entries)
	assert.Equal(t, 2, empty.Pagination.CurrentPage)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
}

func TestRankEmptyInput(t *testing.T) {
	engine := NewEngine()
	assert.Empty(t, engine.Rank(nil, nil))
}
