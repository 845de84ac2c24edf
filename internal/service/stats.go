package service

import (
	"math"
	"time"

	"deadlock-tracker/internal/domain"
)

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// aggregateMatches derives the player aggregate block from mapped matches.
// lastMatchAt assumes matches are ordered most recent first.
func aggregateMatches(matches []domain.MatchDetail) domain.PlayerAggregates {
	var wins, losses int
	var totalKdaRatio, totalKdaPerMinute, totalSpm float64
	var totalSouls, totalHeroDamage, totalObjectiveDamage, totalHealing int
	heroCounts := make(map[string]int)

	for _, match := range matches {
		if match.Result == domain.OutcomeWin {
			wins++
		} else {
			losses++
		}
		totalKdaRatio += match.Kda.Ratio
		totalKdaPerMinute += match.Kda.PerMinute
		totalSpm += match.Economy.SoulsPerMinute
		totalSouls += match.Economy.TotalSouls
		totalHeroDamage += match.Combat.PlayerDamage
		totalObjectiveDamage += match.Combat.ObjectiveDamage
		totalHealing += match.Combat.Healing
		heroCounts[match.Hero]++
	}

	total := wins + losses
	agg := domain.PlayerAggregates{
		TotalMatches:         total,
		Wins:                 wins,
		Losses:               losses,
		TotalSouls:           totalSouls,
		TotalHeroDamage:      totalHeroDamage,
		TotalObjectiveDamage: totalObjectiveDamage,
		TotalHealing:         totalHealing,
		FavoriteHero:         favoriteHeroFromMatches(matches, heroCounts),
	}
	if total > 0 {
		agg.Winrate = round1(float64(wins) / float64(total) * 100)
		agg.AverageKdaRatio = round2(totalKdaRatio / float64(total))
		agg.AverageKdaPerMinute = round2(totalKdaPerMinute / float64(total))
		agg.AverageSpm = round1(totalSpm / float64(total))
	}
	if len(matches) > 0 {
		last := matches[0].StartedAt
		agg.LastMatchAt = &last
	}
	return agg
}

// favoriteHeroFromMatches picks the mode of hero across matches, preferring
// the earliest-seen hero on ties so the result is deterministic.
func favoriteHeroFromMatches(matches []domain.MatchDetail, counts map[string]int) *string {
	var favorite string
	best := 0
	for _, match := range matches {
		if c := counts[match.Hero]; c > best {
			best = c
			favorite = match.Hero
		}
	}
	if favorite == "" {
		return nil
	}
	return &favorite
}
