package domain_test

import (
	"testing"
	"time"

	"github.com/metropass/settlement-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() []domain.TicketType {
	return []domain.TicketType{
		{Code: "SINGLE", DisplayName: "Single Journey", Price: 12000, Validity: 24 * time.Hour, Rule: domain.RuleUniversal, Active: true},
		{Code: "DAILY", DisplayName: "Daily Pass", Price: 40000, Validity: 24 * time.Hour, Rule: domain.RuleUniversal, Active: true},
		{Code: "MONTHLY", DisplayName: "Monthly Pass", Price: 300000, Validity: 30 * 24 * time.Hour, Rule: domain.RuleUniversal, Active: true},
		{Code: "STUDENT_MONTHLY", DisplayName: "Student Monthly Pass", Price: 150000, Validity: 30 * 24 * time.Hour, Rule: domain.RuleStudent, Active: true},
		{Code: "FREE", DisplayName: "Concession Pass", Price: 0, Validity: 30 * 24 * time.Hour, Rule: domain.RuleConcession, Active: true},
	}
}

func attrsWithAge(years int) domain.PassengerAttributes {
	return domain.PassengerAttributes{DateOfBirth: now.AddDate(-years, 0, -1)}
}

func TestPassengerAttributes_AgeAt(t *testing.T) {
	t.Run("counts whole years only", func(t *testing.T) {
		attrs := domain.PassengerAttributes{DateOfBirth: time.Date(1966, 8, 2, 0, 0, 0, 0, time.UTC)}
		assert.Equal(t, 59, attrs.AgeAt(now))
	})

	t.Run("birthday already passed this year", func(t *testing.T) {
		attrs := domain.PassengerAttributes{DateOfBirth: time.Date(1966, 7, 31, 0, 0, 0, 0, time.UTC)}
		assert.Equal(t, 60, attrs.AgeAt(now))
	})
}

func TestTicketType_Eligible(t *testing.T) {
	catalog := testCatalog()

	t.Run("student ticket requires student id", func(t *testing.T) {
		student := catalog[3]
		assert.False(t, student.Eligible(attrsWithAge(20), now))

		withID := attrsWithAge(20)
		withID.StudentID = "SV-2026-014"
		assert.True(t, withID.StudentID != "" && student.Eligible(withID, now))
	})

	t.Run("concession ticket by age", func(t *testing.T) {
		free := catalog[4]
		assert.True(t, free.Eligible(attrsWithAge(65), now))
		assert.True(t, free.Eligible(attrsWithAge(5), now))
		assert.False(t, free.Eligible(attrsWithAge(30), now))
	})

	t.Run("concession ticket by disability or revolutionary status", func(t *testing.T) {
		free := catalog[4]

		disabled := attrsWithAge(30)
		disabled.HasDisability = true
		assert.True(t, free.Eligible(disabled, now))

		revolutionary := attrsWithAge(30)
		revolutionary.IsRevolutionary = true
		assert.True(t, free.Eligible(revolutionary, now))
	})

	t.Run("inactive types are never eligible", func(t *testing.T) {
		inactive := catalog[0]
		inactive.Active = false
		assert.False(t, inactive.Eligible(attrsWithAge(30), now))
	})
}

func TestBestTicket(t *testing.T) {
	catalog := testCatalog()

	t.Run("free ticket wins for a 65 year old without student id", func(t *testing.T) {
		best, ok := domain.BestTicket(catalog, attrsWithAge(65), now)

		require.True(t, ok)
		assert.Equal(t, "FREE", best.Code)
	})

	t.Run("free ticket wins even over a better value-density paid ticket", func(t *testing.T) {
		// Absurdly dense paid ticket: a year of validity for 1.
		withDense := append(testCatalog(), domain.TicketType{
			Code: "DENSE", Price: 1, Validity: 365 * 24 * time.Hour, Rule: domain.RuleUniversal, Active: true,
		})

		best, ok := domain.BestTicket(withDense, attrsWithAge(65), now)

		require.True(t, ok)
		assert.Equal(t, "FREE", best.Code)
	})

	t.Run("longest-validity free ticket wins among free tickets", func(t *testing.T) {
		withShortFree := append([]domain.TicketType{
			{Code: "FREE_DAY", Price: 0, Validity: 24 * time.Hour, Rule: domain.RuleConcession, Active: true},
		}, testCatalog()...)

		best, ok := domain.BestTicket(withShortFree, attrsWithAge(65), now)

		require.True(t, ok)
		assert.Equal(t, "FREE", best.Code)
	})

	t.Run("value density decides between paid tickets", func(t *testing.T) {
		// MONTHLY: 30d/300000 = 8.64ms validity per unit, SINGLE: 24h/12000 = 7.2ms,
		// DAILY: 24h/40000 = 2.16ms. MONTHLY is the densest.
		best, ok := domain.BestTicket(catalog, attrsWithAge(30), now)

		require.True(t, ok)
		assert.Equal(t, "MONTHLY", best.Code)
	})

	t.Run("student id unlocks the denser student pass", func(t *testing.T) {
		attrs := attrsWithAge(20)
		attrs.StudentID = "SV-2026-014"

		best, ok := domain.BestTicket(catalog, attrs, now)

		require.True(t, ok)
		assert.Equal(t, "STUDENT_MONTHLY", best.Code)
	})

	t.Run("ties break on catalog order", func(t *testing.T) {
		tied := []domain.TicketType{
			{Code: "A", Price: 10000, Validity: 24 * time.Hour, Rule: domain.RuleUniversal, Active: true},
			{Code: "B", Price: 10000, Validity: 24 * time.Hour, Rule: domain.RuleUniversal, Active: true},
		}

		best, ok := domain.BestTicket(tied, attrsWithAge(30), now)

		require.True(t, ok)
		assert.Equal(t, "A", best.Code)
	})

	t.Run("no eligible tickets", func(t *testing.T) {
		onlyStudent := []domain.TicketType{
			{Code: "STUDENT_MONTHLY", Price: 150000, Validity: 30 * 24 * time.Hour, Rule: domain.RuleStudent, Active: true},
		}

		_, ok := domain.BestTicket(onlyStudent, attrsWithAge(30), now)
		assert.False(t, ok)
	})
}
