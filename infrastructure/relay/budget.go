package relay

import "time"

const (
	ItemBudget    = 5 * time.Second
	ProfileBudget = 2 * time.Second
	ProbeBudget   = 2 * time.Second
	ListBudgetMin = 5 * time.Second
	ListBudgetMax = 30 * time.Second

	// perEventCost is the list budget slope, one second per 200 events.
	perEventCost = time.Second / 200

	// levelCost is the assembler budget slope per child reference.
	levelCost = 200 * time.Millisecond

	// earlyExitLimit is the largest list size that still early-exits.
	earlyExitLimit = 1000
)

// ItemOptions is the fetch shape for single-item lookups. The first relay to
// answer with a match settles the call.
func ItemOptions() FetchOptions {
	return FetchOptions{Budget: ItemBudget, EarlyExit: true, MinResults: 1}
}

// ProfileOptions is the fetch shape for profile lookups, tighter than item
// lookups because a missing profile is routine.
func ProfileOptions() FetchOptions {
	return FetchOptions{Budget: ProfileBudget, EarlyExit: true, MinResults: 1}
}

// ListOptions scales the budget with the requested limit and clamps it.
// Lists up to a thousand events early-exit at half the limit; larger lists
// run to end of stream or budget.
func ListOptions(limit int) FetchOptions {
	opts := FetchOptions{Budget: clampBudget(time.Duration(limit) * perEventCost)}
	if limit <= earlyExitLimit {
		opts.EarlyExit = true
		opts.MinResults = limit / 2
	}
	return opts
}

// LevelOptions scales a hierarchy level's budget with its child reference
// count. The level early-exits once every reference has resolved somewhere.
func LevelOptions(children int) FetchOptions {
	return FetchOptions{
		Budget:     clampBudget(time.Duration(children) * levelCost),
		EarlyExit:  true,
		MinResults: children,
	}
}

func clampBudget(d time.Duration) time.Duration {
	if d < ListBudgetMin {
		return ListBudgetMin
	}
	if d > ListBudgetMax {
		return ListBudgetMax
	}
	return d
}
