package alert

import "btc-dca-dashboard/internal/types"

// Detect returns the thresholds crossed when the price moves from previous to current, in the
// order of the given slice. Landing exactly on a threshold counts as crossing it; starting on one
// does not.
func Detect(previous, current float64, thresholds []types.Threshold) []types.CrossingEvent {
	if previous == current {
		return nil
	}

	var events []types.CrossingEvent
	for _, t := range thresholds {
		var direction types.Direction
		switch {
		case previous < t.Price && t.Price <= current:
			direction = types.Up
		case previous > t.Price && t.Price >= current:
			direction = types.Down
		default:
			continue
		}

		events = append(events, types.CrossingEvent{
			Threshold: t,
			Direction: direction,
			Previous:  previous,
			Current:   current,
		})
	}
	return events
}
