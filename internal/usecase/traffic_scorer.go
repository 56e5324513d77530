package usecase

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/matchroute-service/internal/domain"
)

const neutralTrafficScore = 3

type dayPart int

const (
	morningRush dayPart = iota
	midday
	eveningRush
	night
)

type scoreBand int

const (
	bandGood scoreBand = iota
	bandModerate
	bandBad
)

// commentTemplates[dayPart][band]; every template takes the delay in minutes.
var commentTemplates = map[dayPart]map[scoreBand][]string{
	morningRush: {
		bandGood: {
			"Freie Fahrt trotz Berufsverkehr, nur %d Min. Verzögerung.",
			"Der Morgenverkehr hält sich zurück (+%d Min.).",
		},
		bandModerate: {
			"Typischer Berufsverkehr am Morgen, rechne mit %d Min. mehr.",
			"Morgens etwas zäh: etwa %d Min. Verzögerung.",
		},
		bandBad: {
			"Dichter Berufsverkehr, %d Min. Verzögerung. Früher losfahren lohnt sich.",
			"Stau im Morgenverkehr (+%d Min.). Plane mehr Zeit ein.",
		},
	},
	midday: {
		bandGood: {
			"Entspannte Verkehrslage, kaum Verzögerung (+%d Min.).",
			"Gute Fahrt! Die Straßen sind frei (+%d Min.).",
		},
		bandModerate: {
			"Mäßiger Verkehr tagsüber, etwa %d Min. Verzögerung.",
			"Etwas mehr los als üblich (+%d Min.).",
		},
		bandBad: {
			"Ungewöhnlich viel Verkehr, %d Min. Verzögerung.",
			"Staugefahr auf der Strecke (+%d Min.). Öffis könnten schneller sein.",
		},
	},
	eveningRush: {
		bandGood: {
			"Feierabendverkehr bleibt heute aus (+%d Min.).",
			"Trotz Feierabend freie Straßen (+%d Min.).",
		},
		bandModerate: {
			"Feierabendverkehr sorgt für %d Min. Verzögerung.",
			"Abends etwas dichter, rechne mit %d Min. mehr.",
		},
		bandBad: {
			"Starker Feierabendverkehr, %d Min. Verzögerung.",
			"Stau im Feierabendverkehr (+%d Min.). Früh losfahren!",
		},
	},
	night: {
		bandGood: {
			"Nachts freie Fahrt (+%d Min.).",
			"Ruhige Straßen, kaum Verkehr (+%d Min.).",
		},
		bandModerate: {
			"Für die Uhrzeit überraschend viel Verkehr (+%d Min.).",
			"Baustellen oder Veranstaltungsverkehr möglich (+%d Min.).",
		},
		bandBad: {
			"Ungewöhnlicher Stau trotz später Stunde (+%d Min.).",
			"Deutliche Verzögerung um diese Zeit (+%d Min.). Eventuell Sperrungen.",
		},
	},
}

// TrafficScorer - оценка загруженности дороги по отношению длительности в пробках к номинальной.
// Комментарий выбирается псевдослучайно и на оценку не влияет.
type TrafficScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTrafficScorer создает оценщик; seed 0 берёт текущее время
func NewTrafficScorer(seed int64) *TrafficScorer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TrafficScorer{rng: rand.New(rand.NewSource(seed))}
}

// Score rates the drive on 1..5 from the nominal and traffic-aware durations.
func (s *TrafficScorer) Score(nominalSeconds, trafficSeconds int, at time.Time) domain.TrafficRating {
	if nominalSeconds <= 0 {
		return domain.TrafficRating{
			Score:   neutralTrafficScore,
			Comment: "Keine verlässlichen Verkehrsdaten verfügbar.",
		}
	}

	delayPercent := float64(trafficSeconds-nominalSeconds) / float64(nominalSeconds) * 100
	score := ScoreForDelay(delayPercent)

	delayMinutes := (trafficSeconds - nominalSeconds) / 60
	if delayMinutes < 0 {
		delayMinutes = 0
	}

	return domain.TrafficRating{
		Score:   score,
		Comment: s.comment(score, delayMinutes, at),
	}
}

// ScoreForDelay buckets a delay percentage: <=5 -> 5, <=15 -> 4, <=35 -> 3, <=60 -> 2, else 1.
func ScoreForDelay(delayPercent float64) int {
	switch {
	case delayPercent <= 5:
		return 5
	case delayPercent <= 15:
		return 4
	case delayPercent <= 35:
		return 3
	case delayPercent <= 60:
		return 2
	default:
		return 1
	}
}

func (s *TrafficScorer) comment(score, delayMinutes int, at time.Time) string {
	templates := commentTemplates[dayPartOf(at)][bandOf(score)]

	s.mu.Lock()
	idx := s.rng.Intn(len(templates))
	s.mu.Unlock()

	return fmt.Sprintf(templates[idx], delayMinutes)
}

func bandOf(score int) scoreBand {
	switch {
	case score >= 4:
		return bandGood
	case score == 3:
		return bandModerate
	default:
		return bandBad
	}
}

func dayPartOf(at time.Time) dayPart {
	h := at.Hour()
	weekend := at.Weekday() == time.Saturday || at.Weekday() == time.Sunday

	switch {
	case h < 6 || h >= 21:
		return night
	case !weekend && h >= 6 && h < 9:
		return morningRush
	case !weekend && h >= 16 && h < 19:
		return eveningRush
	default:
		return midday
	}
}
