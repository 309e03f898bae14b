// Package admission decides whether a candidate reservation may be booked
// on a space.
//
// Evaluate is a pure function over the candidate, the reservations already
// held on the same space, the space itself and the current time. It never
// touches storage; callers load the inputs, hold the space lock, and persist
// the reservation returned by Admit.
//
// Checks run in a fixed order and stop at the first failure:
//
//  1. the interval must be non-empty (End after Start)
//  2. no overlap with another reservation of the space, using half-open
//     [Start, End) intervals so touching endpoints are allowed
//  3. on create only, Start must not be before now
//  4. Start and End must sit inside the operating window on one calendar day
//
// An accepted candidate is priced at PricePerHour times the whole minutes
// it spans, expressed in hours.
package admission
