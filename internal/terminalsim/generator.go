package terminalsim

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// TimestampLayout is the zoneless layout the bridge reports punches in.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	attendanceRate = 0.85 // chance a user shows up on a working day
	lunchRate      = 0.5  // chance a present user also punches out and in for lunch
	forgotRate     = 0.05 // chance a present user punches only once
	stalePunches   = 5    // punches older than the retention window, per user
)

var firstNames = []string{
	"Ada", "Bram", "Chiara", "Dmitri", "Esther", "Farid", "Greta", "Hiro",
	"Ines", "Jonas", "Kemal", "Leila", "Mateo", "Noor", "Otto", "Priya",
}

// Generate builds a dataset covering every working day from the start of the
// month before now through now. Each present user gets one, two or four
// punches per day. A few punches from three months back are added so that
// retention has something to drop.
func Generate(cfg Config, now time.Time) Dataset {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	users := make([]User, cfg.Users)
	for i := range users {
		id := strconv.Itoa(i + 1)
		users[i] = User{UserID: id, Name: firstNames[i%len(firstNames)] + " " + id}
	}

	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)
	var punches []Punch
	for day := start; !day.After(now); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		for _, u := range users {
			if rng.Float64() >= attendanceRate {
				continue
			}
			for _, ts := range workday(rng, day) {
				if ts.After(now) {
					break
				}
				punches = append(punches, Punch{UserID: u.UserID, Timestamp: ts.Format(TimestampLayout)})
			}
		}
	}

	stale := time.Date(now.Year(), now.Month()-3, 10, 0, 0, 0, 0, loc)
	for _, u := range users {
		for i := 0; i < stalePunches; i++ {
			ts := stale.Add(time.Duration(8+i) * time.Hour)
			punches = append(punches, Punch{UserID: u.UserID, Timestamp: ts.Format(TimestampLayout)})
		}
	}

	return Dataset{Users: users, Punches: punches}
}

// workday returns the ordered punches of one user on one day.
func workday(rng *rand.Rand, day time.Time) []time.Time {
	at := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, rng.IntN(60), 0, day.Location())
	}
	in := at(7+rng.IntN(3), rng.IntN(60))
	if rng.Float64() < forgotRate {
		return []time.Time{in}
	}
	out := at(16+rng.IntN(3), rng.IntN(60))
	if rng.Float64() >= lunchRate {
		return []time.Time{in, out}
	}
	lunchOut := at(12, rng.IntN(30))
	lunchIn := lunchOut.Add(time.Duration(30+rng.IntN(30)) * time.Minute)
	return []time.Time{in, lunchOut, lunchIn, out}
}
