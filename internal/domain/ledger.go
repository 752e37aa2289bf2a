package domain

// Daily goal bounds, in minute-equivalents of XP.
const (
	DefaultDailyGoal = 60
	MinDailyGoal     = 15
	MaxDailyGoal     = 480
)

// Ledger holds cumulative XP, today's XP and the day streak.
type Ledger struct {
	XP             int   `json:"xp"`
	DailyXP        int   `json:"dailyXp"`
	StreakDays     int   `json:"streakDays"`
	LastActiveDate *Date `json:"lastActiveDate,omitempty"`
	LastStreakDate *Date `json:"lastStreakDate,omitempty"`
	DailyGoal      int   `json:"dailyGoal"`
}

// NewLedger returns an empty ledger with the default goal.
func NewLedger() Ledger {
	return Ledger{DailyGoal: DefaultDailyGoal}
}

// ClampDailyGoal bounds a goal to [MinDailyGoal, MaxDailyGoal].
func ClampDailyGoal(minutes int) int {
	return min(max(minutes, MinDailyGoal), MaxDailyGoal)
}

// Goal returns the effective daily goal.
func (l *Ledger) Goal() int {
	if l.DailyGoal == 0 {
		return DefaultDailyGoal
	}
	return ClampDailyGoal(l.DailyGoal)
}

// RolloverIfNewDay applies the day-boundary rules when the last activity
// happened before today: the daily counter restarts, and the streak is
// dropped unless the last activity was yesterday. Calling it again on the
// same day changes nothing further. It reports whether anything changed.
func (l *Ledger) RolloverIfNewDay(today Date) bool {
	if l.LastActiveDate == nil || *l.LastActiveDate == today {
		return false
	}

	changed := l.DailyXP != 0
	l.DailyXP = 0

	if *l.LastActiveDate != today.AddDays(-1) && (l.StreakDays != 0 || l.LastStreakDate != nil) {
		l.StreakDays = 0
		l.LastStreakDate = nil
		changed = true
	}
	return changed
}

// Award applies amount (possibly negative) for today. Totals never go
// below zero. Reaching the daily goal extends the streak once per day.
func (l *Ledger) Award(today Date, amount int) {
	l.RolloverIfNewDay(today)

	l.XP = max(0, l.XP+amount)
	l.DailyXP = max(0, l.DailyXP+amount)

	if l.DailyXP >= l.Goal() {
		switch {
		case l.StreakDays == 0:
			l.StreakDays = 1
			l.LastStreakDate = &today
		case l.LastStreakDate == nil || *l.LastStreakDate != today:
			l.StreakDays++
			l.LastStreakDate = &today
		}
	}

	l.LastActiveDate = &today
}

// GoalMet reports whether today's XP reached the goal.
func (l *Ledger) GoalMet() bool {
	return l.DailyXP >= l.Goal()
}

// DailyProgress is a read view of the ledger for one day.
type DailyProgress struct {
	Date       Date    `json:"date"`
	XP         int     `json:"xp"`
	DailyXP    int     `json:"dailyXp"`
	DailyGoal  int     `json:"dailyGoal"`
	StreakDays int     `json:"streakDays"`
	GoalMet    bool    `json:"goalMet"`
	Percent    float64 `json:"percent"`
}

// Progress returns the ledger's view for today. Call RolloverIfNewDay first.
func (l *Ledger) Progress(today Date) DailyProgress {
	goal := l.Goal()
	return DailyProgress{
		Date:       today,
		XP:         l.XP,
		DailyXP:    l.DailyXP,
		DailyGoal:  goal,
		StreakDays: l.StreakDays,
		GoalMet:    l.DailyXP >= goal,
		Percent:    min(float64(l.DailyXP)/float64(goal), 1),
	}
}
